package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// respondError writes an {"error": msg} body with the given status.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// parseMonthYear extracts the required month and year query parameters.
func parseMonthYear(r *http.Request) (month, year int, err error) {
	month, err = requiredInt(r, "month")
	if err != nil {
		return 0, 0, err
	}
	year, err = requiredInt(r, "year")
	if err != nil {
		return 0, 0, err
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid value for parameter: month")
	}
	return month, year, nil
}

func requiredInt(r *http.Request, param string) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(param))
	if v == "" {
		return 0, fmt.Errorf("missing parameter: %s", param)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid value for parameter: %s", param)
	}
	return n, nil
}

// queryList reads repeated query values under both "key[]" and "key".
func queryList(r *http.Request, key string) []string {
	q := r.URL.Query()
	values := append(q[key+"[]"], q[key]...)
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// queryIDList parses repeated owner-style id parameters.
func queryIDList(r *http.Request, key string) ([]int64, error) {
	var ids []int64
	for _, v := range queryList(r, key) {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for parameter: %s", key)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id")
	}
	return id, nil
}

// decodeBody decodes a JSON request body into v, rejecting unknown noise.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %v", err)
	}
	return nil
}

// capitalize uppercases the first rune, for display names in search results.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
