// SPDX-License-Identifier: EPL-2.0

package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/ik5/moodmix/formats"
	"github.com/ik5/moodmix/internal/auth"
	"github.com/ik5/moodmix/internal/metrics"
	"github.com/ik5/moodmix/internal/model"
	"github.com/ik5/moodmix/internal/qr"
	"github.com/ik5/moodmix/internal/store"
)

// Upload kinds, used as metric labels.
const (
	kindMedia     = "media"
	kindRecording = "recording"
	kindLocal     = "local"
	kindQR        = "qr"
)

var errMissingFile = fmt.Errorf("%w: missing file", model.ErrInvalidDocument)

type uploadedFile struct {
	name        string
	contentType string
	data        []byte
}

// readUpload parses the multipart form and reads one file field fully.
func (h *Handlers) readUpload(w http.ResponseWriter, r *http.Request, field string) (*uploadedFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, fmt.Errorf("%w: upload exceeds %d bytes", model.ErrInvalidDocument, tooBig.Limit)
		}
		return nil, fmt.Errorf("%w: %w", model.ErrInvalidDocument, err)
	}

	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, errMissingFile
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrInvalidDocument, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	return &uploadedFile{
		name:        path.Base(strings.ReplaceAll(hdr.Filename, "\\", "/")),
		contentType: contentType(hdr, data),
		data:        data,
	}, nil
}

// contentType trusts the part header, then the audio sniffer, then net/http.
func contentType(hdr *multipart.FileHeader, data []byte) string {
	if ct := hdr.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if f := formats.Detect(data); f != "" {
		return formats.ContentType(f)
	}
	return http.DetectContentType(data)
}

// formUsername prefers the session user over the form field.
func formUsername(r *http.Request) string {
	if u, ok := auth.UserFrom(r.Context()); ok {
		return u.Username
	}
	return strings.TrimSpace(r.FormValue("username"))
}

func (h *Handlers) put(r *http.Request, kind, name, contentType string, data []byte) error {
	if err := h.Bucket.Put(r.Context(), name, contentType, data); err != nil {
		return err
	}
	metrics.UploadsTotal.WithLabelValues(kind).Inc()
	metrics.UploadBytesTotal.WithLabelValues(kind).Add(float64(len(data)))

	return nil
}

type uploadResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	FileURL   string `json:"fileUrl"`
	QRCodeURL string `json:"qrCodeUrl,omitempty"`
	MediaID   string `json:"mediaId,omitempty"`
}

// Upload handles POST /upload: stores the file and a QR code linking to its
// media page.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	file, err := h.readUpload(w, r, "file")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	mood, err := model.ParseMood(r.FormValue("mood"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	id := store.NewID()
	m := &model.Media{
		ID:         id,
		Filename:   file.name,
		FileObject: "media/" + id,
		QRObject:   "qrs/" + id + ".png",
		MimeType:   file.contentType,
		UploadedBy: strings.TrimSpace(r.FormValue("uploadedBy")),
		Message:    strings.TrimSpace(r.FormValue("message")),
		Username:   formUsername(r),
		Mood:       mood,
	}
	if err := m.Validate(); err != nil {
		h.writeError(w, r, err)
		return
	}

	png, err := qr.Encode(h.PublicURL+"/media/"+id, qr.DefaultSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.put(r, kindMedia, m.FileObject, m.MimeType, file.data); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.put(r, kindQR, m.QRObject, "image/png", png); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Store.CreateMedia(r.Context(), m); err != nil {
		h.writeError(w, r, err)
		return
	}

	view := h.mediaView(r, m)
	h.Logger.Info("media uploaded",
		zap.String("mediaID", id),
		zap.String("username", m.Username),
		zap.String("mood", string(mood)),
		zap.Int("bytes", len(file.data)))

	writeJSON(w, http.StatusOK, uploadResponse{
		Success:   true,
		Message:   "File uploaded successfully!",
		FileURL:   view.FileURL,
		QRCodeURL: view.QRURL,
		MediaID:   id,
	})
}

// SaveAudio handles POST /save-audio: a recording from the record page.
func (h *Handlers) SaveAudio(w http.ResponseWriter, r *http.Request) {
	file, err := h.readUpload(w, r, "audio")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	name := strings.TrimSpace(r.FormValue("audioname"))
	if name == "" {
		name = file.name
	}

	id := store.NewID()
	rec := &model.Recording{
		ID:       id,
		Username: formUsername(r),
		Name:     name,
		Object:   "record/" + id + ".wav",
	}
	if err := rec.Validate(); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.put(r, kindRecording, rec.Object, file.contentType, file.data); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Store.CreateRecording(r.Context(), rec); err != nil {
		h.writeError(w, r, err)
		return
	}

	url, err := h.Bucket.URL(r.Context(), rec.Object)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{Success: true, Message: "File uploaded successfully!", FileURL: url})
}

// UploadLocal handles POST /upload-local: stores the file under its own name
// and returns a signed link without creating a document.
func (h *Handlers) UploadLocal(w http.ResponseWriter, r *http.Request) {
	file, err := h.readUpload(w, r, "audio")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if file.name == "" || file.name == "." || file.name == "/" {
		h.writeError(w, r, fmt.Errorf("%w: file name", model.ErrInvalidDocument))
		return
	}

	object := "local/" + file.name
	if err := h.put(r, kindLocal, object, file.contentType, file.data); err != nil {
		h.writeError(w, r, err)
		return
	}

	url, err := h.Bucket.URL(r.Context(), object)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{Success: true, Message: "File uploaded successfully!", FileURL: url})
}

type recordedFile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// FetchRecordedFiles handles GET /fetch-recorded-files?username=.
func (h *Handlers) FetchRecordedFiles(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Username is required."})
		return
	}

	recs, err := h.Store.RecordingsByUsername(r.Context(), username)
	if err != nil {
		h.Logger.Error("list recordings", zap.String("username", username), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "Server error while fetching files."})
		return
	}
	if len(recs) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": "No files found for this user."})
		return
	}

	files := make([]recordedFile, 0, len(recs))
	for _, rec := range recs {
		url, err := h.Bucket.URL(r.Context(), rec.Object)
		if err != nil {
			h.Logger.Warn("sign recording", zap.String("object", rec.Object), zap.Error(err))
		}
		files = append(files, recordedFile{Name: rec.Name, URL: url})
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "files": files})
}
