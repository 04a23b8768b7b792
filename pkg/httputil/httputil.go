// Package httputil centralizes JSON response writing so every endpoint emits
// the same envelopes.
package httputil

import (
	"encoding/json"
	"net/http"

	"hubgate/pkg/apierrors"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the error envelope: {error, message} plus field errors for
// validation failures.
type errorBody struct {
	Error   string              `json:"error"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// WriteError translates a coded error into its HTTP response. Unknown errors
// become opaque 500s; internal messages are never leaked to callers.
func WriteError(w http.ResponseWriter, err error) {
	apiErr := apierrors.From(err)
	if apiErr == nil {
		WriteJSON(w, http.StatusInternalServerError, errorBody{
			Error:   string(apierrors.CodeInternal),
			Message: "internal server error",
		})
		return
	}

	status := apierrors.ToHTTPStatus(apiErr.Code)
	body := errorBody{Error: string(apiErr.Code), Message: apiErr.Message}
	if apiErr.Code == apierrors.CodeInternal {
		body.Message = "internal server error"
	}
	if len(apiErr.Fields) > 0 {
		body.Errors = apiErr.Fields
	}
	WriteJSON(w, status, body)
}
