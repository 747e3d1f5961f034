package resend

import (
	"errors"
	"fmt"
	"net/url"
)

// Config holds Resend API settings.
type Config struct {
	APIKey  string
	BaseURL string // Overrides the API endpoint; empty uses the Resend default
}

// ParseURL builds a Config from a connection URL. The API key is read from
// the userinfo or, when absent, the host part:
//
//	resend://re_123abc
//	resend://re_123abc@api.resend.com
//	resend://re_123abc?base_url=http://localhost:8025
func ParseURL(u *url.URL) (Config, error) {
	if u.Scheme != "resend" {
		return Config{}, fmt.Errorf("resend: unsupported scheme %q", u.Scheme)
	}

	cfg := Config{BaseURL: u.Query().Get("base_url")}
	if u.User != nil {
		cfg.APIKey = u.User.Username()
	} else {
		cfg.APIKey = u.Host
	}
	if cfg.APIKey == "" {
		return Config{}, errors.New("resend: missing API key")
	}
	if cfg.BaseURL != "" {
		if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
			return Config{}, fmt.Errorf("resend: invalid base_url: %w", err)
		}
	}
	return cfg, nil
}
