package validator

import (
	"errors"
	"net"
	"net/url"
	"strings"
)

const maxURLLength = 2048

// ErrInvalidURL is returned for input that is not an absolute http(s) URL.
var ErrInvalidURL = errors.New("invalid url")

// NormalizeURL trims raw, defaults the scheme to https and checks that the
// result is an absolute http(s) URL with a usable host.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}

	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		raw = "https://" + raw
	}
	if len(raw) > maxURLLength {
		return "", ErrInvalidURL
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidURL
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", ErrInvalidURL
	}
	if !validHost(parsed.Hostname()) {
		return "", ErrInvalidURL
	}
	if parsed.Port() != "" && !validPort(parsed.Port()) {
		return "", ErrInvalidURL
	}

	return raw, nil
}

// validHost accepts localhost, IP literals and dotted domain names.
func validHost(host string) bool {
	if host == "" {
		return false
	}
	if strings.EqualFold(host, "localhost") || net.ParseIP(host) != nil {
		return true
	}

	host = strings.TrimSuffix(host, ".")
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if !validLabel(label) {
			return false
		}
	}
	// TLD must not be purely numeric.
	tld := labels[len(labels)-1]
	return strings.Trim(tld, "0123456789") != ""
}

func validLabel(label string) bool {
	if label == "" || len(label) > 63 {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
		case r > 127:
			// internationalized labels are passed through as-is
		default:
			return false
		}
	}
	return true
}

func validPort(port string) bool {
	if len(port) > 5 {
		return false
	}
	n := 0
	for _, r := range port {
		if r < '0' || r > '9' {
			return false
		}
		n = n*10 + int(r-'0')
	}
	return n > 0 && n <= 65535
}
