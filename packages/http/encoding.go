package http

import (
	"errors"
	"fmt"
	neturl "net/url"
	"strings"
)

// ErrMalformedURL is matched by every *MalformedURLError via errors.Is.
var ErrMalformedURL = errors.New("malformed url")

// MalformedURLError reports a URL that could not be parsed into a URI.
type MalformedURLError struct {
	URL string
	Err error
}

func (e *MalformedURLError) Error() string {
	return fmt.Sprintf("malformed url %q: %v", e.URL, e.Err)
}

func (e *MalformedURLError) Unwrap() error {
	return e.Err
}

func (e *MalformedURLError) Is(target error) bool {
	return target == ErrMalformedURL
}

// parseURL is url.Parse plus the RFC 3986 character check url.Parse leaves to
// callers. Bytes above 0x7f are let through as already-encoded text.
func parseURL(rawURL string) (*neturl.URL, error) {
	for i := 0; i < len(rawURL); i++ {
		if c := rawURL[i]; c < 0x80 && !isURIByte(c) {
			return nil, &MalformedURLError{
				URL: rawURL,
				Err: fmt.Errorf("illegal character %q at index %d", c, i),
			}
		}
	}
	u, err := neturl.Parse(rawURL)
	if err != nil {
		var urlErr *neturl.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, &MalformedURLError{URL: rawURL, Err: err}
	}
	return u, nil
}

// isURIByte reports whether c is unreserved, reserved or '%'.
func isURIByte(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-._~:/?#[]@!$&'()*+,;=%", c) >= 0
}

// AppendParamsToURL appends params to the query string of rawURL, keeping their order
// and any query already present. With no params rawURL is returned unchanged once it
// has been checked to parse.
func AppendParamsToURL(rawURL string, params []NameValuePair) (string, error) {
	u, err := parseURL(rawURL)
	if err != nil {
		return "", err
	}
	if len(params) == 0 {
		return rawURL, nil
	}

	encoded := EncodeForm(params)
	if u.RawQuery == "" {
		u.RawQuery = encoded
	} else {
		u.RawQuery = u.RawQuery + "&" + encoded
	}
	u.ForceQuery = false
	return u.String(), nil
}

// EncodeForm serializes params as application/x-www-form-urlencoded: name=value pairs
// joined by '&', reserved characters percent-encoded and spaces as '+'.
func EncodeForm(params []NameValuePair) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(neturl.QueryEscape(p.Name))
		b.WriteByte('=')
		b.WriteString(neturl.QueryEscape(p.Value))
	}
	return b.String()
}

// ParamsToString returns the form-encoded params as text, e.g. "a=b+c" for [("a","b c")].
func ParamsToString(params []NameValuePair) string {
	return string(formEntity(params).Content)
}
