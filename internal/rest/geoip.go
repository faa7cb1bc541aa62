package rest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// GeoIPConfig drives the country gate in front of the API.
type GeoIPConfig struct {
	// LookupURL is the base of a JSON geolocation service; the caller IP is
	// appended as the last path segment.
	LookupURL string
	// TrustedIP passes unconditionally, lookup skipped.
	TrustedIP string
	// BlockedCountries are ISO country codes that get redirected.
	BlockedCountries []string
	// BlockedPath is the redirect target for denied callers.
	BlockedPath string
	Timeout     time.Duration
}

// GeoIPGate redirects requests from blocked countries to the configured
// blocked path. Every failure mode fails open: a broken lookup service must
// never take the site down. The middleware runs before routing, so the gate
// covers every surface including health.
func GeoIPGate(cfg GeoIPConfig, log *slog.Logger) echo.MiddlewareFunc {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	blocked := make(map[string]bool, len(cfg.BlockedCountries))
	for _, code := range cfg.BlockedCountries {
		blocked[strings.ToUpper(code)] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" || ip == cfg.TrustedIP {
				return next(c)
			}
			if c.Path() == cfg.BlockedPath || c.Request().URL.Path == cfg.BlockedPath {
				return next(c)
			}

			code, err := lookupCountry(c, client, cfg.LookupURL, ip)
			if err != nil {
				log.Warn("geoip lookup failed, passing request", "ip", ip, "error", err)
				return next(c)
			}

			if blocked[strings.ToUpper(code)] {
				log.Info("geoip blocked request", "ip", ip, "country", code)
				return c.Redirect(http.StatusFound, cfg.BlockedPath)
			}
			return next(c)
		}
	}
}

func lookupCountry(c echo.Context, client *http.Client, baseURL, ip string) (string, error) {
	url := strings.TrimSuffix(baseURL, "/") + "/" + ip

	req, err := http.NewRequestWithContext(c.Request().Context(), http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build lookup request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("geoip lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geoip lookup: status %d", resp.StatusCode)
	}

	var body struct {
		CountryCode string `json:"countryCode"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode geoip response: %w", err)
	}
	if body.CountryCode == "" {
		return "", fmt.Errorf("geoip lookup: empty countryCode")
	}
	return body.CountryCode, nil
}
