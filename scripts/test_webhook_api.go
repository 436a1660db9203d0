package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"disaster-locator-bot/internal/pkg/serverutils"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(body []byte) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		fmt.Println(string(body))
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func step(name string, method, url, token string, body interface{}, wantStatus int) bool {
	color.Cyan("\n▶ %s", name)
	resp, respBody, err := sendRequest(method, url, token, body)
	if err != nil {
		color.Red("  request failed: %v", err)
		return false
	}
	if resp.StatusCode != wantStatus {
		color.Red("  expected %d, got %d", wantStatus, resp.StatusCode)
		prettyPrint(respBody)
		return false
	}
	color.Green("  %d OK", resp.StatusCode)
	prettyPrint(respBody)
	return true
}

// Drives one conversation through the webhook. Replies go out over the
// websocket and NATS transports; watch the server log or a ws client.
func main() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		color.Red("JWT_SECRET must be set to sign test tokens")
		os.Exit(1)
	}

	bridgeToken, _ := serverutils.SignToken(secret, jwt.MapClaims{
		"user_id": "test-bridge",
		"role":    serverutils.RoleBridge,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	userToken, _ := serverutils.SignToken(secret, jwt.MapClaims{
		"user_id": "905551112233",
		"role":    "user",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	sender := "905551112233"
	text := "Başlat"
	option := "option3"

	ok := true
	ok = step("Health", http.MethodGet, "/health", "", nil, http.StatusOK) && ok
	ok = step("Webhook without token", http.MethodPost, "/webhook/messages", "", map[string]interface{}{"sender_id": sender}, http.StatusUnauthorized) && ok
	ok = step("Webhook with user token", http.MethodPost, "/webhook/messages", userToken, map[string]interface{}{"sender_id": sender}, http.StatusForbidden) && ok
	ok = step("Greeting", http.MethodPost, "/webhook/messages", bridgeToken, map[string]interface{}{"sender_id": sender, "text": text}, http.StatusAccepted) && ok
	ok = step("Select blood donation", http.MethodPost, "/webhook/messages", bridgeToken, map[string]interface{}{"sender_id": sender, "selected_option_id": option}, http.StatusAccepted) && ok
	ok = step("Share location", http.MethodPost, "/webhook/messages", bridgeToken, map[string]interface{}{
		"sender_id": sender,
		"location":  map[string]float64{"latitude": 41.0082, "longitude": 28.9784},
	}, http.StatusAccepted) && ok
	ok = step("Invalid latitude", http.MethodPost, "/webhook/messages", bridgeToken, map[string]interface{}{
		"sender_id": sender,
		"location":  map[string]float64{"latitude": 123, "longitude": 28.9784},
	}, http.StatusBadRequest) && ok
	ok = step("Nearest pharmacies", http.MethodGet, "/resources/nearest?collection=eczaneler&lat=36.2&lon=36.16&k=3", bridgeToken, nil, http.StatusOK) && ok

	if !ok {
		color.Red("\n✗ Some checks failed")
		os.Exit(1)
	}
	color.Green("\n✓ All checks passed")
}
