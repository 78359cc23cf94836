package utils

import (
	"encoding/json"
	"net/http"

	"github.com/imjustneko/Travel-web/apperr"

	log "github.com/sirupsen/logrus"
)

type M map[string]any

// Sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("failed to encode response")
	}
}

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, M{"success": false, "message": msg})
}

// RespondWithAppError writes err at a handler boundary. Internal failures
// are logged and carry the underlying detail in "error".
func RespondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.From(err)
	body := M{"success": false, "message": e.Message}
	if e.Kind == apperr.Internal {
		log.WithError(e.Err).WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error(e.Message)
		if e.Err != nil {
			body["error"] = e.Err.Error()
		}
	}
	RespondWithJSON(w, e.HTTPStatus(), body)
}

// DecodeJSON reads the request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return apperr.NewValidation("Invalid input")
	}
	return nil
}
