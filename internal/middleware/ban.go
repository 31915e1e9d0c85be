package middleware

import (
	"net/http"
	"net/netip"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
)

// BanList rejects requests from banned client IPs and from user agents
// matching any of the configured patterns.
type BanList struct {
	ips      map[netip.Addr]struct{}
	patterns []*regexp.Regexp
}

// NewBanList parses comma-separated IPs and user-agent regexps. Entries
// that fail to parse are skipped.
func NewBanList(ips, userAgents string) *BanList {
	b := &BanList{ips: make(map[netip.Addr]struct{})}

	for _, raw := range strings.Split(ips, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if addr, err := netip.ParseAddr(raw); err == nil {
			b.ips[addr] = struct{}{}
		}
	}

	for _, raw := range strings.Split(userAgents, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if re, err := regexp.Compile(raw); err == nil {
			b.patterns = append(b.patterns, re)
		}
	}

	return b
}

func (b *BanList) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if addr, err := netip.ParseAddr(c.RealIP()); err == nil {
				if _, banned := b.ips[addr]; banned {
					return echo.NewHTTPError(http.StatusForbidden, "You are banned")
				}
			}

			ua := c.Request().UserAgent()
			for _, re := range b.patterns {
				if re.MatchString(ua) {
					return echo.NewHTTPError(http.StatusForbidden, "You are banned")
				}
			}

			return next(c)
		}
	}
}
