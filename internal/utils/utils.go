package utils

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/net/idna"
)

var (
	ErrEmptyURL    = errors.New("empty url")
	ErrMissingHost = errors.New("missing host")
	ErrInvalidPort = errors.New("invalid port")
	ErrInvalidHost = errors.New("invalid host")
)

var (
	// two or more pasted scheme prefixes, e.g. "https://http://example.com"
	repeatedScheme = regexp.MustCompile(`^(?:https?://){2,}`)
	hasScheme      = regexp.MustCompile(`(?i)^[a-z][a-z0-9+.\-]*://`)
)

// hostProfile converts Unicode hostnames to their ASCII lookup form without
// enforcing STD3 rules, so underscores survive the way browsers keep them.
var hostProfile = idna.New(idna.MapForLookup(), idna.StrictDomainName(false))

// forbiddenHostChars may not appear in a hostname once escapes are decoded.
const forbiddenHostChars = " #%/:<>?@[\\]^|"

// Target is a URL prepared for rule evaluation.
type Target struct {
	URL *url.URL

	// Host is the lowercase ASCII hostname without port or brackets.
	Host string

	// Scheme is the lowercase scheme without "://".
	Scheme string

	// Path is the escaped path, "/" when empty.
	Path string

	// Href is the full normalized URL, lowercased, used for pattern matching.
	Href string
}

// NormalizeTarget trims raw input, collapses repeated pasted scheme prefixes
// to a single "https://" and adds "https://" when no scheme is present.
func NormalizeTarget(raw string) string {
	s := strings.TrimSpace(raw)
	s = repeatedScheme.ReplaceAllString(s, "https://")
	if !hasScheme.MatchString(s) {
		s = "https://" + s
	}
	return s
}

// ParseTarget normalizes and parses raw. It fails for input without a usable
// host, with an out-of-range port or with a hostname that has no ASCII form.
func ParseTarget(raw string) (*Target, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &url.Error{Op: "parse", URL: raw, Err: ErrEmptyURL}
	}
	norm := NormalizeTarget(raw)
	u, err := url.Parse(lenient(norm))
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, &url.Error{Op: "parse", URL: norm, Err: ErrMissingHost}
	}
	if port := u.Port(); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n > 65535 {
			return nil, &url.Error{Op: "parse", URL: norm, Err: ErrInvalidPort}
		}
	}
	if net.ParseIP(host) == nil {
		ascii, err := hostProfile.ToASCII(host)
		if err != nil || ascii == "" || strings.ContainsAny(ascii, forbiddenHostChars) {
			return nil, &url.Error{Op: "parse", URL: norm, Err: ErrInvalidHost}
		}
		host = ascii
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if port := u.Port(); port != "" {
		u.Host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		u.Host = "[" + host + "]"
	} else {
		u.Host = host
	}
	if u.Path == "" && u.Opaque == "" {
		u.Path = "/"
	}

	return &Target{
		URL:    u,
		Host:   host,
		Scheme: u.Scheme,
		Path:   u.EscapedPath(),
		Href:   strings.ToLower(u.String()),
	}, nil
}

// HostOf returns the lowercase ASCII hostname of an absolute URL, as used for
// links found in messages.
func HostOf(raw string) (string, error) {
	u, err := url.Parse(lenient(raw))
	if err != nil {
		return "", fmt.Errorf("parse link: %w", err)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", &url.Error{Op: "parse", URL: raw, Err: ErrMissingHost}
	}
	if port := u.Port(); port != "" {
		if n, err := strconv.Atoi(port); err != nil || n > 65535 {
			return "", &url.Error{Op: "parse", URL: raw, Err: ErrInvalidPort}
		}
	}
	if net.ParseIP(host) != nil {
		return host, nil
	}
	ascii, err := hostProfile.ToASCII(host)
	if err != nil || ascii == "" || strings.ContainsAny(ascii, forbiddenHostChars) {
		return "", &url.Error{Op: "parse", URL: raw, Err: ErrInvalidHost}
	}
	return ascii, nil
}

// lenient rewrites the input browsers accept but url.Parse rejects. In http(s)
// URLs a backslash before the query or fragment is a path separator, and a
// '%' that does not start an escape stands for itself.
func lenient(s string) string {
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http:") || strings.HasPrefix(lower, "https:") {
		end := strings.IndexAny(s, "?#")
		if end < 0 {
			end = len(s)
		}
		s = strings.ReplaceAll(s[:end], `\`, "/") + s[end:]
	}
	return escapeStrayPercent(s)
}

func escapeStrayPercent(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && !(i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2])) {
			b.WriteString("%25")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// UTF16Len counts s in UTF-16 code units, the unit input limits are defined in.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
