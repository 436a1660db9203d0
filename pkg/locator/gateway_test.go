package locator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"disaster-locator-bot/internal/pkg/apperror"
	"disaster-locator-bot/internal/pkg/logger"
	"disaster-locator-bot/pkg/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pagePath = "/afet-ve-acil-durum-yonetimi-acil-toplanma-alani-sorgulama"

const sessionPage = `<html><body><div id="harita" data-token="tok-123" data-x="1"></div></body></html>`

const areasBody = `{"features":[
	{"geometry":{"coordinates":[[[29.01,41.02],[29.02,41.02]]]},
	 "properties":{"sokak_adi":"Bağdat Cd.","tesis_adi":"Park Alanı","il_adi":"İstanbul","ilce_adi":"Kadıköy","mahalle_adi":"Caddebostan"}},
	{"geometry":{"coordinates":[[[29.05,41.05]]]},
	 "properties":{"sokak_adi":null,"tesis_adi":null,"il_adi":"İstanbul","ilce_adi":"Kadıköy","mahalle_adi":"Göztepe"}},
	{"geometry":{"coordinates":[]},"properties":{"tesis_adi":"broken"}},
	{"properties":{"tesis_adi":"no geometry"}}
]}`

type fakeSite struct {
	pageStatus  int
	pageBody    string
	setCookies  bool
	queryStatus int
	queryBody   string
	queryDelay  time.Duration

	gets  atomic.Int32
	posts atomic.Int32

	lastForm    map[string]string
	lastCookie  string
	lastXhr     string
	lastContent string
}

func (s *fakeSite) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pagePath, r.URL.Path)
		assert.Equal(t, "goster", r.URL.Query().Get("harita"))

		switch r.Method {
		case http.MethodGet:
			s.gets.Add(1)
			if s.setCookies {
				http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "sess-1", Path: "/"})
				http.SetCookie(w, &http.Cookie{Name: SecondaryCookie, Value: "w3p-1", Path: "/"})
			}
			w.WriteHeader(s.pageStatus)
			_, _ = w.Write([]byte(s.pageBody))
		case http.MethodPost:
			s.posts.Add(1)
			_, hasSubmit := r.URL.Query()["submit"]
			assert.True(t, hasSubmit)
			assert.NoError(t, r.ParseForm())
			s.lastForm = map[string]string{}
			for k := range r.PostForm {
				s.lastForm[k] = r.PostForm.Get(k)
			}
			s.lastCookie = r.Header.Get("Cookie")
			s.lastXhr = r.Header.Get("X-Requested-With")
			s.lastContent = r.Header.Get("Content-Type")
			if s.queryDelay > 0 {
				time.Sleep(s.queryDelay)
			}
			w.WriteHeader(s.queryStatus)
			_, _ = w.Write([]byte(s.queryBody))
		}
	}
}

func newHealthySite() *fakeSite {
	return &fakeSite{
		pageStatus:  http.StatusOK,
		pageBody:    sessionPage,
		setCookies:  true,
		queryStatus: http.StatusOK,
		queryBody:   areasBody,
	}
}

func newTestClient(baseURL string, timeout time.Duration) *Client {
	return NewClient(Config{
		BaseURL:  baseURL,
		PagePath: pagePath,
		Timeout:  timeout,
	}, logger.NewNopLogger())
}

func TestLocateHappyPath(t *testing.T) {
	site := newHealthySite()
	srv := httptest.NewServer(site.handler(t))
	defer srv.Close()

	areas, err := newTestClient(srv.URL, 5*time.Second).Locate(context.Background(), geo.Point{Latitude: 41.0, Longitude: 29.0})
	require.NoError(t, err)
	require.Len(t, areas, 2)

	assert.Equal(t, "Park Alanı", areas[0].Name)
	assert.Equal(t, "Bağdat Cd., Caddebostan, Kadıköy/İstanbul", areas[0].Address())
	assert.Equal(t, 41.02, areas[0].Location.Latitude)
	assert.Equal(t, 29.01, areas[0].Location.Longitude)

	assert.Equal(t, "-", areas[1].Name)
	assert.Equal(t, "-, Göztepe, Kadıköy/İstanbul", areas[1].Address())

	assert.Equal(t, int32(1), site.gets.Load())
	assert.Equal(t, int32(1), site.posts.Load())
	assert.Equal(t, map[string]string{
		"pn":    pagePath,
		"ajax":  "1",
		"token": "tok-123",
		"islem": "getAlanlarForNokta",
		"lat":   "41",
		"lng":   "29",
	}, site.lastForm)
	assert.Contains(t, site.lastCookie, "TURKIYESESSIONID=sess-1")
	assert.Contains(t, site.lastCookie, "w3p=w3p-1")
	assert.Equal(t, "XMLHttpRequest", site.lastXhr)
	assert.Contains(t, site.lastContent, "application/x-www-form-urlencoded")
}

func TestLocateMissingTokenSkipsQuery(t *testing.T) {
	site := newHealthySite()
	site.pageBody = `<html><body>maintenance</body></html>`
	srv := httptest.NewServer(site.handler(t))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 5*time.Second).Locate(context.Background(), geo.Point{Latitude: 41, Longitude: 29})
	assert.ErrorIs(t, err, apperror.ErrTokenExtractionFailed)
	assert.Equal(t, int32(0), site.posts.Load())
}

func TestLocateMissingCookiesSkipsQuery(t *testing.T) {
	site := newHealthySite()
	site.setCookies = false
	srv := httptest.NewServer(site.handler(t))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 5*time.Second).Locate(context.Background(), geo.Point{Latitude: 41, Longitude: 29})
	assert.ErrorIs(t, err, apperror.ErrTokenExtractionFailed)
	assert.Equal(t, int32(0), site.posts.Load())
}

func TestLocateSessionPageFailure(t *testing.T) {
	site := newHealthySite()
	site.pageStatus = http.StatusServiceUnavailable
	srv := httptest.NewServer(site.handler(t))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 5*time.Second).Locate(context.Background(), geo.Point{Latitude: 41, Longitude: 29})
	assert.ErrorIs(t, err, apperror.ErrExternalServiceUnavailable)
	assert.Equal(t, int32(0), site.posts.Load())
}

func TestLocateUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url, 2*time.Second).Locate(context.Background(), geo.Point{Latitude: 41, Longitude: 29})
	assert.ErrorIs(t, err, apperror.ErrExternalServiceUnavailable)
}

func TestLocateQueryTimeout(t *testing.T) {
	site := newHealthySite()
	site.queryDelay = 300 * time.Millisecond
	srv := httptest.NewServer(site.handler(t))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 100*time.Millisecond).Locate(context.Background(), geo.Point{Latitude: 41, Longitude: 29})
	assert.ErrorIs(t, err, apperror.ErrExternalServiceUnavailable)
}

func TestLocateQueryErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, want: apperror.ErrExternalServiceUnavailable},
		{name: "empty features", status: http.StatusOK, body: `{"features":[]}`, want: apperror.ErrNoResultsFound},
		{name: "no features key", status: http.StatusOK, body: `{}`, want: apperror.ErrNoResultsFound},
		{name: "html instead of json", status: http.StatusOK, body: `<html></html>`, want: apperror.ErrNoResultsFound},
		{name: "only malformed", status: http.StatusOK, body: `{"features":[{"geometry":{"coordinates":"x"}}]}`, want: apperror.ErrNoResultsFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := newHealthySite()
			site.queryStatus = tt.status
			site.queryBody = tt.body
			srv := httptest.NewServer(site.handler(t))
			defer srv.Close()

			_, err := newTestClient(srv.URL, 5*time.Second).Locate(context.Background(), geo.Point{Latitude: 41, Longitude: 29})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExtractBetween(t *testing.T) {
	v, err := ExtractBetween(`a data-token="xyz" b`, `data-token="`, `"`)
	require.NoError(t, err)
	assert.Equal(t, "xyz", v)

	for _, source := range []string{``, `no token here`, `data-token="unterminated`, `data-token=""`} {
		_, err := ExtractBetween(source, `data-token="`, `"`)
		assert.ErrorIs(t, err, apperror.ErrTokenExtractionFailed, source)
	}
}
