package utils

import (
	"encoding/json"
	"net/http"
	"strconv"
)

func ToUint(id string) (uint, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	return uint(n), err
}

func FormatUint(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}

func StrPtr(s string) *string {
	return &s
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func WriteJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
