// internal/server/handlers/response.go

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"creatorpulse/internal/adapter/events"
)

// UserIDHeader carries the caller's identity, set by the fronting auth layer
const UserIDHeader = "X-User-ID"

// Upper bound for request bodies
const maxBodyBytes = 10 << 20

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, logger *logrus.Entry, code int, message string, err error) {
	response := map[string]interface{}{
		"success": false,
		"error":   message,
	}

	if err != nil && code >= 500 {
		logger.WithError(err).WithField("code", code).Error(message)
	}

	respondWithJSON(w, code, response)
}

var (
	errMissingUserID = errors.New("missing user ID")
	errInvalidUserID = errors.New("invalid user ID")
)

// userIDFromRequest reads the caller's identity from the header, falling
// back to the user_id query parameter. IDs that cannot stand as a single
// event subject token are rejected.
func userIDFromRequest(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if id == "" {
		id = strings.TrimSpace(r.URL.Query().Get("user_id"))
	}

	switch {
	case id == "":
		return "", errMissingUserID
	case !events.ValidSubjectToken(id):
		return "", errInvalidUserID
	}
	return id, nil
}

// requireUserID resolves the caller's identity or writes the error response
func requireUserID(w http.ResponseWriter, r *http.Request, logger *logrus.Entry) (string, bool) {
	id, err := userIDFromRequest(r)
	if err != nil {
		code, message := userIDError(err)
		respondWithError(w, logger, code, message, nil)
		return "", false
	}
	return id, true
}

func userIDError(err error) (int, string) {
	if errors.Is(err, errInvalidUserID) {
		return http.StatusBadRequest, "Invalid user ID"
	}
	return http.StatusUnauthorized, "Missing user ID"
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// validateRequest checks a decoded request body against its validate tags and
// returns a client-facing message describing the first failure
func validateRequest(v interface{}) error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonFieldName)
	})

	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if fe.Param() != "" {
			return fmt.Errorf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Errorf("%s failed %s", fe.Field(), fe.Tag())
	}
	return err
}

// Reports fields by their JSON names
func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}
