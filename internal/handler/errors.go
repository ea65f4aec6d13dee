// SPDX-License-Identifier: EPL-2.0

package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ik5/moodmix/audio"
	"github.com/ik5/moodmix/formats"
	"github.com/ik5/moodmix/internal/fetch"
	"github.com/ik5/moodmix/internal/imagegen"
	"github.com/ik5/moodmix/internal/mixer"
	"github.com/ik5/moodmix/internal/model"
	"github.com/ik5/moodmix/internal/store"
)

// statusFor maps a service error to an HTTP status. Order matters: a decode
// failure can wrap audio.ErrInvalidInput and must stay 415.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, model.ErrInvalidDocument):
		return http.StatusBadRequest
	case errors.Is(err, formats.ErrUnknownFormat), errors.Is(err, formats.ErrUndecodable):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, audio.ErrFormatMismatch), errors.Is(err, audio.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, fetch.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, fetch.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, fetch.ErrUpstream), errors.Is(err, imagegen.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, imagegen.ErrEmptyPrompt):
		return http.StatusBadRequest
	case errors.Is(err, imagegen.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, mixer.ErrRateLimited):
		return http.StatusTooManyRequests
	}

	return http.StatusInternalServerError
}

// writeError answers with a JSON error body. Server errors are logged and
// their detail is not sent to the client.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway && status != http.StatusServiceUnavailable {
		h.Logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("requestID", requestID(r)),
			zap.Error(err))
		msg = http.StatusText(status)
	}

	writeJSON(w, status, map[string]any{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
