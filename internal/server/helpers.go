package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// WaitForHealthy polls the /health endpoint until it returns 200 OK or the
// context is cancelled. baseURL may use an http(s) or ws(s) scheme.
func WaitForHealthy(ctx context.Context, baseURL string) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "ws", "":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	}
	u.Path = strings.TrimSuffix(u.Path, "/ws")
	u.Path = strings.TrimSuffix(u.Path, "/") + "/health"
	u.RawQuery = ""
	healthURL := u.String()

	client := &http.Client{Timeout: 1 * time.Second}
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// WebSocketURL converts a server base URL into its /ws endpoint. Private
// connections skip automatic matchmaking.
func WebSocketURL(baseURL string, private bool) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}

	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws"

	q := u.Query()
	if private {
		q.Set("mode", "private")
	} else {
		q.Del("mode")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
