package query

import (
	"strings"
	"time"

	"github.com/biomcp/biomcp/internal/domain"
)

// ValidateDate accepts YYYY, YYYY-MM, or YYYY-MM-DD and returns the trimmed
// value unchanged. Anything else is an invalid-argument error naming the flag.
func ValidateDate(flag, raw string) (string, error) {
	v := strings.TrimSpace(raw)
	for _, layout := range []string{"2006", "2006-01", "2006-01-02"} {
		if _, err := time.Parse(layout, v); err == nil {
			return v, nil
		}
	}
	return "", domain.NewInvalidArgument(
		"%s must be YYYY, YYYY-MM, or YYYY-MM-DD (got %q)", flag, raw)
}
