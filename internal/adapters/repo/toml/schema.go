package toml

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version int            `toml:"version"`
	Cookies []cookieSchema `toml:"cookies"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported cookies schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

// cookieSchema is a cookie as received, plus the url that set it. Domain is
// the Domain attribute and stays empty for host-only cookies.
type cookieSchema struct {
	Name     string `toml:"name"`
	Value    string `toml:"value"`
	Origin   string `toml:"origin"`
	Domain   string `toml:"domain,omitempty"`
	Path     string `toml:"path"`
	Secure   bool   `toml:"secure,omitempty"`
	HTTPOnly bool   `toml:"http_only,omitempty"`
	SameSite string `toml:"same_site,omitempty"`
	Expires  string `toml:"expires,omitempty"`
	Created  string `toml:"created"`
}

func (c cookieSchema) key() string {
	return c.scope() + ";" + c.Path + ";" + c.Name
}

func (c cookieSchema) scope() string {
	if c.Domain != "" {
		return c.Domain
	}
	origin, err := url.Parse(c.Origin)
	if err != nil {
		return ""
	}
	return strings.ToLower(origin.Hostname())
}

func (c cookieSchema) originURL() (*url.URL, error) {
	if c.Origin == "" {
		return nil, errors.New("cookie has no origin")
	}
	origin, err := url.Parse(c.Origin)
	if err != nil {
		return nil, fmt.Errorf("parse cookie origin: %w", err)
	}
	return origin, nil
}

// cookie rebuilds the scoping attributes only. Expiry is tracked by the
// file, against the jar's clock.
func (c cookieSchema) cookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HttpOnly: c.HTTPOnly,
		SameSite: parseSameSite(c.SameSite),
	}
}
