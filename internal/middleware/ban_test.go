package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func runBanned(t *testing.T, b *BanList, remoteAddr, userAgent string) error {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	return b.Middleware()(next)(c)
}

func TestBanListBlocksIP(t *testing.T) {
	b := NewBanList("10.0.0.5, 192.168.1.1", "")

	err := runBanned(t, b, "10.0.0.5:12345", "")
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusForbidden, he.Code)

	require.NoError(t, runBanned(t, b, "10.0.0.6:12345", ""))
}

func TestBanListBlocksUserAgent(t *testing.T) {
	b := NewBanList("", "curl.*, python-requests")

	err := runBanned(t, b, "10.0.0.1:12345", "curl/8.0.1")
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusForbidden, he.Code)

	require.NoError(t, runBanned(t, b, "10.0.0.1:12345", "Mozilla/5.0"))
}

func TestBanListSkipsMalformedEntries(t *testing.T) {
	b := NewBanList("not-an-ip", "([")
	require.NoError(t, runBanned(t, b, "10.0.0.1:12345", "anything"))
}
