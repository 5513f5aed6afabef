package validators

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/hostelhub/hostelhub-backend/pkg/errors"
	"github.com/hostelhub/hostelhub-backend/pkg/pagination"
)

func queryValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

func queryError(message, key string, extra ...any) error {
	details := map[string]any{"field": key}
	for i := 0; i+1 < len(extra); i += 2 {
		details[extra[i].(string)] = extra[i+1]
	}
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(details)
}

// ParseQueryInt reads an optional integer in [min, max].
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, queryError("query parameter must be numeric", key)
	}
	if value < min || value > max {
		return 0, queryError("query parameter out of range", key, "min", min, "max", max)
	}
	return value, nil
}

// ParseQueryDate reads an optional YYYY-MM-DD query parameter.
func ParseQueryDate(r *http.Request, key string) (*time.Time, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, queryError("query parameter must be a date", key, "format", "YYYY-MM-DD")
	}
	return &parsed, nil
}

// ParseQueryBool reads an optional boolean flag. Absent means false; values
// strconv.ParseBool rejects are a validation error.
func ParseQueryBool(r *http.Request, key string) (bool, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, queryError("query parameter must be a boolean", key)
	}
	return value, nil
}

// CursorPage holds the keyset paging parameters of a list endpoint.
type CursorPage struct {
	Limit  int
	Cursor string
}

// ParseCursorPage reads limit and cursor. The cursor is decoded once here so
// malformed values fail before reaching a service.
func ParseCursorPage(r *http.Request) (CursorPage, error) {
	limit, err := ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return CursorPage{}, err
	}
	cursor := queryValue(r, "cursor")
	if _, err := pagination.ParseCursor(cursor); err != nil {
		return CursorPage{}, queryError("invalid cursor", "cursor")
	}
	return CursorPage{Limit: limit, Cursor: cursor}, nil
}
