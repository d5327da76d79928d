package respond

import (
	"encoding/json"
	"errors"
	"net/http"
)

var ErrEmptyBody = errors.New("empty request body")

func JSON(w http.ResponseWriter, r *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func Error(w http.ResponseWriter, r *http.Request, code int, message string) {
	JSON(w, r, code, map[string]string{"error": message})
}

// Decode читает JSON-тело запроса в dst
func Decode(r *http.Request, dst interface{}) error {
	if r.ContentLength == 0 {
		return ErrEmptyBody
	}
	return json.NewDecoder(r.Body).Decode(dst)
}
