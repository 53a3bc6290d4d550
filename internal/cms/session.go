// Package cms checks article titles against the CMS admin content listing
// using a previously captured operator session.
package cms

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"
)

var (
	// ErrNoSessionArtifact indicates the storage state file does not exist.
	ErrNoSessionArtifact = errors.New("no auth state stored")

	// ErrNoCookies indicates a storage state file without any cookies.
	ErrNoCookies = errors.New("session artifact holds no cookies")
)

// Cookie is one browser cookie in the storage state artifact. The field
// layout matches what browser automation tools export, so an artifact
// captured there loads here unchanged.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	SameSite string  `json:"sameSite,omitempty"`
}

// Session holds the authenticated CMS cookies captured from one operator
// login.
type Session struct {
	Cookies []Cookie `json:"cookies"`
}

// LoadSession reads a storage state artifact from disk. A missing file
// returns ErrNoSessionArtifact.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoSessionArtifact, path)
		}

		return nil, fmt.Errorf("failed to read session artifact: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session artifact: %w", err)
	}

	if len(s.Cookies) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoCookies, path)
	}

	return &s, nil
}

// Save writes the session to disk, readable only by the owner.
func (s *Session) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session artifact: %w", err)
	}

	return nil
}

// Client builds an HTTP client whose cookie jar carries the session cookies
// for the given CMS base URL.
func (s *Session) Client(baseURL string, timeout time.Duration) (*http.Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid CMS base URL: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	cookies := make([]*http.Cookie, 0, len(s.Cookies))

	for _, c := range s.Cookies {
		hc := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   strings.TrimPrefix(c.Domain, "."),
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		}

		// Browser exports use -1 for session cookies; leave those without
		// an expiry so the jar keeps them for the process lifetime.
		if c.Expires > 0 {
			hc.Expires = time.Unix(int64(c.Expires), 0)
		}

		cookies = append(cookies, hc)
	}

	jar.SetCookies(u, cookies)

	return &http.Client{
		Jar:     jar,
		Timeout: timeout,
	}, nil
}
