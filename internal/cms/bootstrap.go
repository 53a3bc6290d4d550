package cms

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"mfasync/internal/config"
	"mfasync/internal/logger"
)

var (
	// ErrNoCookieInput indicates the operator finished without pasting any
	// cookies.
	ErrNoCookieInput = errors.New("no cookies entered")

	// ErrBadCookieFormat indicates a pasted pair that is not name=value.
	ErrBadCookieFormat = errors.New("cookie must be name=value")
)

// Bootstrap captures an operator session. The operator logs in to the CMS in
// a regular browser, copies the Cookie header of a logged-in request from the
// developer tools, and pastes it here. The captured session is probed against
// the content listing before it is saved to statePath.
func Bootstrap(in io.Reader, out io.Writer, baseURL, statePath string, network *config.NetworkConfig, log *logger.Logger) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid CMS base URL: %w", err)
	}

	fmt.Fprintf(out, "Log in to the CMS in your browser: %s\n", ContentURL(baseURL))
	fmt.Fprintln(out, "Copy the Cookie header from a logged-in request (developer tools, Network tab),")
	fmt.Fprintln(out, "paste it below, and finish with an empty line:")

	cookies, err := ReadCookieInput(in, u.Hostname())
	if err != nil {
		return err
	}

	session := &Session{Cookies: cookies}

	verifier, err := NewVerifier(session, baseURL, network, log)
	if err != nil {
		return err
	}

	if err := verifier.Probe(); err != nil {
		return fmt.Errorf("session check failed: %w", err)
	}

	if err := session.Save(statePath); err != nil {
		return err
	}

	fmt.Fprintf(out, "Saved auth session -> %s\n", statePath)

	return nil
}

// ReadCookieInput reads pasted cookie lines until a blank line or EOF. Each
// line is either one name=value pair or a full Cookie header value with
// semicolon-separated pairs; a leading "Cookie:" label is tolerated.
func ReadCookieInput(in io.Reader, domain string) ([]Cookie, error) {
	scanner := bufio.NewScanner(in)

	var cookies []Cookie

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}

		parsed, err := ParseCookieLine(line, domain)
		if err != nil {
			return nil, err
		}

		cookies = append(cookies, parsed...)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cookie input: %w", err)
	}

	if len(cookies) == 0 {
		return nil, ErrNoCookieInput
	}

	return cookies, nil
}

// ParseCookieLine parses one pasted line into cookies bound to the given
// domain.
func ParseCookieLine(line, domain string) ([]Cookie, error) {
	if len(line) >= 7 && strings.EqualFold(line[:7], "cookie:") {
		line = line[7:]
	}

	var cookies []Cookie

	for _, part := range strings.Split(line, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, value, ok := strings.Cut(part, "=")
		name = strings.TrimSpace(name)

		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrBadCookieFormat, part)
		}

		cookies = append(cookies, Cookie{
			Name:   name,
			Value:  strings.TrimSpace(value),
			Domain: domain,
			Path:   "/",
		})
	}

	return cookies, nil
}
