package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gethuk-security/api-security-lab/internal/auth"
)

// decodeBody unmarshals the request body into dst. JSON and form-urlencoded
// bodies are both accepted. Unknown fields are kept permissive on purpose;
// several handlers depend on accepting anything.
func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()

	ct, _, _ := strings.Cut(r.Header.Get("Content-Type"), ";")
	if strings.TrimSpace(ct) == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return err
		}
		fields := make(map[string]any, len(r.PostForm))
		for k := range r.PostForm {
			fields[k] = r.PostForm.Get(k)
		}
		raw, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dst)
	}

	return json.NewDecoder(r.Body).Decode(dst)
}

// principal returns the request principal, or the zero value when the route
// ran without one.
func principal(r *http.Request) auth.Principal {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok || p == nil {
		return auth.Principal{}
	}
	return *p
}

// principalFromRow builds a token principal from a users row.
func principalFromRow(row map[string]any) auth.Principal {
	return auth.Principal{
		ID:       rowInt64(row["id"]),
		Username: rowString(row["username"]),
		Email:    rowString(row["email"]),
		IsAdmin:  rowInt64(row["is_admin"]) != 0,
	}
}

func rowInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	default:
		return 0
	}
}

func rowString(v any) string {
	s, _ := v.(string)
	return s
}

// queryInt reads an integer query parameter, falling back to def when absent
// or unparsable.
func queryInt(r *http.Request, name string, def int64) int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return n
}
