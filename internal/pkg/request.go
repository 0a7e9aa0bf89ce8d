package pkg

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// RequestScheme - "https" or "http" as seen by the client, honouring reverse proxy headers.
func RequestScheme(req *http.Request) string {
	if proto := firstValue(req.Header.Get("X-Forwarded-Proto")); proto != "" {
		if strings.EqualFold(proto, "https") {
			return "https"
		}

		return "http"
	}

	if visitor := req.Header.Get("Cf-Visitor"); visitor != "" {
		var parsed struct {
			Scheme string `json:"scheme"`
		}

		if err := json.Unmarshal([]byte(visitor), &parsed); err == nil && parsed.Scheme != "" {
			if parsed.Scheme == "https" {
				return "https"
			}

			return "http"
		}
	}

	if req.TLS != nil {
		return "https"
	}

	return "http"
}

// RequestHost - host[:port] as seen by the client, fallback when nothing is known.
func RequestHost(req *http.Request, fallback string) string {
	if host := firstValue(req.Header.Get("X-Forwarded-Host")); host != "" {
		return host
	}

	if req.Host != "" {
		return req.Host
	}

	return fallback
}

// WebsocketScheme - ws or wss matching the request scheme.
func WebsocketScheme(req *http.Request) string {
	if RequestScheme(req) == "https" {
		return "wss"
	}

	return "ws"
}

// Origin - scheme://host[:port] of raw, empty when raw is not an absolute URL.
func Origin(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}

	return strings.ToLower(parsed.Scheme + "://" + parsed.Host)
}

func firstValue(header string) string {
	first, _, _ := strings.Cut(header, ",")

	return strings.TrimSpace(first)
}
