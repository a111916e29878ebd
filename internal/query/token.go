package query

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/biomcp/biomcp/internal/domain"
)

const maxNextPageTokenLen = 2048

var errBadToken = domain.NewInvalidArgument(
	"--next-page token is invalid. Use pagination.next_page_token from the previous result.")

// ValidateNextPageToken sanity-checks an opaque cursor before it is sent
// upstream: bounded length, no whitespace, not a bare number (that's an
// offset, not a cursor), and URL-shaped tokens must actually parse.
func ValidateNextPageToken(raw string) (string, error) {
	token := strings.TrimSpace(raw)
	if token == "" || len(token) > maxNextPageTokenLen {
		return "", errBadToken
	}
	allDigits := true
	for _, c := range token {
		if unicode.IsSpace(c) {
			return "", errBadToken
		}
		if c < '0' || c > '9' {
			allDigits = false
		}
	}
	if allDigits {
		return "", errBadToken
	}
	if strings.HasPrefix(token, "http://") || strings.HasPrefix(token, "https://") {
		if _, err := url.Parse(token); err != nil {
			return "", errBadToken
		}
	}
	return token, nil
}
