package locator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"disaster-locator-bot/internal/pkg/apperror"
	"disaster-locator-bot/internal/pkg/logger"
	"disaster-locator-bot/pkg/geo"
)

const (
	SessionCookie   = "TURKIYESESSIONID"
	SecondaryCookie = "w3p"

	tokenStart = `data-token="`
	tokenEnd   = `"`

	queryAction  = "getAlanlarForNokta"
	placeholder  = "-"
	maxBodyBytes = 5 << 20
)

type Config struct {
	BaseURL   string
	PagePath  string
	Timeout   time.Duration
	UserAgent string
}

// Session is the harvested state of phase 1. It is used for exactly one
// query and never stored.
type Session struct {
	SessionId string
	W3p       string
	Token     string
}

// Area is one assembly area returned by the coordinate query.
type Area struct {
	Location      geo.Point
	Name          string
	Street        string
	Neighbourhood string
	District      string
	Province      string
}

// Address renders "street, neighbourhood, district/province".
func (a Area) Address() string {
	return fmt.Sprintf("%s, %s, %s/%s", a.Street, a.Neighbourhood, a.District, a.Province)
}

// Gateway is the scrape-then-query integration with the assembly area page.
// The page has no public API; everything markup specific stays in here.
type Gateway interface {
	AcquireSession(ctx context.Context) (*Session, error)
	QueryAreas(ctx context.Context, session *Session, origin geo.Point) ([]Area, error)
	Locate(ctx context.Context, origin geo.Point) ([]Area, error)
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger logger.ILogger
}

func NewClient(cfg Config, log logger.ILogger) *Client {
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: log,
	}
}

func (c *Client) pageURL() string {
	return c.cfg.BaseURL + c.cfg.PagePath + "?harita=goster"
}

// Locate runs both phases. A phase 1 failure never reaches phase 2.
func (c *Client) Locate(ctx context.Context, origin geo.Point) ([]Area, error) {
	session, err := c.AcquireSession(ctx)
	if err != nil {
		return nil, err
	}
	return c.QueryAreas(ctx, session, origin)
}

func (c *Client) AcquireSession(ctx context.Context) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build session request: %v", apperror.ErrExternalServiceUnavailable, err)
	}
	c.setCommonHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("LocatorGateway", "Session page unreachable", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("%w: session page: %v", apperror.ErrExternalServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("LocatorGateway", "Session page returned non-2xx", map[string]interface{}{"status": resp.StatusCode})
		return nil, fmt.Errorf("%w: session page status %d", apperror.ErrExternalServiceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read session page: %v", apperror.ErrExternalServiceUnavailable, err)
	}

	session := &Session{}
	for _, cookie := range resp.Cookies() {
		switch cookie.Name {
		case SessionCookie:
			session.SessionId = cookie.Value
		case SecondaryCookie:
			session.W3p = cookie.Value
		}
	}
	if session.SessionId == "" || session.W3p == "" {
		c.logger.Warn("LocatorGateway", "Session cookies missing", map[string]interface{}{
			"has_session": session.SessionId != "",
			"has_w3p":     session.W3p != "",
		})
		return nil, fmt.Errorf("%w: session cookies missing", apperror.ErrTokenExtractionFailed)
	}

	token, err := ExtractBetween(string(body), tokenStart, tokenEnd)
	if err != nil {
		c.logger.Warn("LocatorGateway", "Anti-forgery token not found", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	session.Token = token

	return session, nil
}

func (c *Client) QueryAreas(ctx context.Context, session *Session, origin geo.Point) ([]Area, error) {
	if session == nil || session.Token == "" {
		return nil, fmt.Errorf("%w: no session", apperror.ErrTokenExtractionFailed)
	}

	form := url.Values{}
	form.Set("pn", c.cfg.PagePath)
	form.Set("ajax", "1")
	form.Set("token", session.Token)
	form.Set("islem", queryAction)
	form.Set("lat", strconv.FormatFloat(origin.Latitude, 'f', -1, 64))
	form.Set("lng", strconv.FormatFloat(origin.Longitude, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.pageURL()+"&submit", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: build query request: %v", apperror.ErrExternalServiceUnavailable, err)
	}
	c.setCommonHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Cookie", fmt.Sprintf("%s=%s; language=tr_TR.UTF-8; %s=%s;", SessionCookie, session.SessionId, SecondaryCookie, session.W3p))

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("LocatorGateway", "Area query failed", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("%w: area query: %v", apperror.ErrExternalServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("LocatorGateway", "Area query returned non-2xx", map[string]interface{}{"status": resp.StatusCode})
		return nil, fmt.Errorf("%w: area query status %d", apperror.ErrExternalServiceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read area response: %v", apperror.ErrExternalServiceUnavailable, err)
	}

	areas, skipped, err := ParseAreas(body)
	if skipped > 0 {
		c.logger.Warn("LocatorGateway", "Skipped malformed areas", map[string]interface{}{"skipped": skipped})
	}
	if err != nil {
		return nil, err
	}

	c.logger.Info("LocatorGateway", "Area query succeeded", map[string]interface{}{"areas": len(areas)})
	return areas, nil
}

func (c *Client) setCommonHeaders(req *http.Request) {
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	req.Header.Set("Accept-Language", "tr-TR,tr;q=0.9")
}

// ExtractBetween returns the text between the first left marker and the next
// right marker. Both markers must be present and the value non-empty.
func ExtractBetween(source, left, right string) (string, error) {
	start := strings.Index(source, left)
	if start < 0 {
		return "", fmt.Errorf("%w: marker %q not found", apperror.ErrTokenExtractionFailed, left)
	}
	rest := source[start+len(left):]

	end := strings.Index(rest, right)
	if end < 0 {
		return "", fmt.Errorf("%w: closing marker %q not found", apperror.ErrTokenExtractionFailed, right)
	}

	value := strings.TrimSpace(rest[:end])
	if value == "" {
		return "", fmt.Errorf("%w: empty value", apperror.ErrTokenExtractionFailed)
	}
	return value, nil
}

type areaResponse struct {
	Features []areaFeature `json:"features"`
}

type areaFeature struct {
	Geometry *struct {
		Coordinates json.RawMessage `json:"coordinates"`
	} `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// ParseAreas decodes the query response. Features without a usable
// coordinate are skipped; an undecodable or empty result is NoResultsFound.
func ParseAreas(body []byte) ([]Area, int, error) {
	var res areaResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, 0, fmt.Errorf("%w: undecodable area response", apperror.ErrNoResultsFound)
	}

	areas := make([]Area, 0, len(res.Features))
	skipped := 0
	for _, f := range res.Features {
		if f.Geometry == nil {
			skipped++
			continue
		}
		point, err := geo.RepresentativePoint(f.Geometry.Coordinates)
		if err != nil {
			skipped++
			continue
		}
		areas = append(areas, Area{
			Location:      point,
			Name:          property(f.Properties, "tesis_adi"),
			Street:        property(f.Properties, "sokak_adi"),
			Neighbourhood: property(f.Properties, "mahalle_adi"),
			District:      property(f.Properties, "ilce_adi"),
			Province:      property(f.Properties, "il_adi"),
		})
	}

	if len(areas) == 0 {
		return nil, skipped, fmt.Errorf("%w: no assembly areas", apperror.ErrNoResultsFound)
	}
	return areas, skipped, nil
}

func property(props map[string]interface{}, key string) string {
	if s, ok := props[key].(string); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	return placeholder
}
