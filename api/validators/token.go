package validators

import (
	"net/http"
	"strings"
)

// BearerToken reads the Authorization header. Both "Bearer <token>" and a
// bare token are accepted; any other scheme yields "".
func BearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, rest, found := strings.Cut(raw, " ")
	if !found {
		return raw
	}
	if !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	token := strings.TrimSpace(rest)
	if strings.ContainsAny(token, " \t") {
		return ""
	}
	return token
}
