// SPDX-License-Identifier: EPL-2.0

package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ik5/moodmix/internal/model"
)

func writeWAV(w http.ResponseWriter, data []byte, attachment string) {
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if attachment != "" {
		w.Header().Set("Content-Disposition", "attachment; filename="+attachment)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// MixWAV handles GET /media/{id}/mix.wav.
func (h *Handlers) MixWAV(w http.ResponseWriter, r *http.Request) {
	out, err := h.Mixer.MixMedia(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeWAV(w, out, "")
}

// MixAudio handles POST /mix-audio with form fields audioUrl and mood.
func (h *Handlers) MixAudio(w http.ResponseWriter, r *http.Request) {
	audioURL := strings.TrimSpace(r.FormValue("audioUrl"))
	rawMood := r.FormValue("mood")
	if audioURL == "" || strings.TrimSpace(rawMood) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Audio URL and mood are required"})
		return
	}

	mood, err := model.ParseMood(rawMood)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out, err := h.Mixer.MixURL(r.Context(), audioURL, mood)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeWAV(w, out, "mixed_audio.wav")
}

// Generate handles POST /generate. The prompt comes from the form field or a
// JSON body, both named text.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	text := r.FormValue("text")
	if text == "" && strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
			return
		}
		text = body.Text
	}

	imageURL, err := h.Images.Generate(r.Context(), text)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"imageUrl": imageURL})
}
