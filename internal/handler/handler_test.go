// SPDX-License-Identifier: EPL-2.0

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ik5/moodmix/audio"
	"github.com/ik5/moodmix/formats"
	"github.com/ik5/moodmix/formats/wav"
	"github.com/ik5/moodmix/internal/auth"
	"github.com/ik5/moodmix/internal/blob"
	"github.com/ik5/moodmix/internal/fetch"
	"github.com/ik5/moodmix/internal/imagegen"
	"github.com/ik5/moodmix/internal/mixer"
	"github.com/ik5/moodmix/internal/model"
	"github.com/ik5/moodmix/internal/store"
)

const voiceURL = "https://voices.example/hello.wav"

func encodeMono(t *testing.T, samples ...float32) []byte {
	t.Helper()

	b, err := audio.NewBuffer(8000, 1, samples)
	require.NoError(t, err)
	data, err := wav.Encode(b)
	require.NoError(t, err)

	return data
}

type stubFetcher map[string][]byte

func (f stubFetcher) Get(_ context.Context, rawURL string) ([]byte, error) {
	if strings.HasPrefix(rawURL, "ftp:") {
		return nil, fetch.ErrInvalidURL
	}
	data, ok := f[rawURL]
	if !ok {
		return nil, fetch.ErrUpstream
	}
	return data, nil
}

type stubImages struct{}

func (stubImages) Generate(_ context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", imagegen.ErrEmptyPrompt
	}
	return "https://images.example/" + url.PathEscape(text) + ".jpg", nil
}

type app struct {
	h      *Handlers
	srv    *httptest.Server
	store  *store.Memory
	bucket *blob.Memory
	client *http.Client
}

func newApp(t *testing.T) *app {
	t.Helper()

	ctx := context.Background()
	logger := zap.NewNop()
	st := store.NewMemory()

	srv := httptest.NewUnstartedServer(nil)
	baseURL := "http://" + srv.Listener.Addr().String()

	bucket := blob.NewMemory(baseURL + "/files")
	require.NoError(t, bucket.Put(ctx, model.MoodB.TrackObject(), "audio/wav", encodeMono(t, 1, 1)))

	fetcher := stubFetcher{
		voiceURL:                       encodeMono(t, 0.5, 0.5, 0.5, 0.5),
		"https://voices.example/x.txt": []byte("not audio at all"),
	}
	mix, err := mixer.NewService(st, bucket, fetcher, mixer.Config{MoodGain: 0.2, Rate: 1000, Burst: 1000}, logger)
	require.NoError(t, err)

	h, err := NewHandlers(Deps{
		Store:          st,
		Bucket:         bucket,
		Mixer:          mix,
		Images:         stubImages{},
		Sessions:       auth.NewSessions([]byte("0123456789abcdef0123456789abcdef"), false, st, logger),
		Logger:         logger,
		PublicURL:      baseURL,
		MaxUploadBytes: 1 << 20,
	})
	require.NoError(t, err)

	srv.Config.Handler = h.Router(RouterOptions{CORSOrigins: []string{"*"}, Files: bucket})
	srv.Start()
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &app{
		h:      h,
		srv:    srv,
		store:  st,
		bucket: bucket,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (r response) json(t *testing.T) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(r.body, &out), "body: %s", r.body)

	return out
}

func (a *app) do(t *testing.T, req *http.Request) response {
	t.Helper()

	resp, err := a.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return response{status: resp.StatusCode, header: resp.Header, body: body}
}

func (a *app) get(t *testing.T, path string) response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, a.srv.URL+path, nil)
	require.NoError(t, err)

	return a.do(t, req)
}

func (a *app) postForm(t *testing.T, path string, form url.Values) response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, a.srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return a.do(t, req)
}

type filePart struct {
	field, name, contentType string
	data                     []byte
}

func (a *app) postMultipart(t *testing.T, path string, fields map[string]string, file *filePart) response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		hdr := make(map[string][]string)
		hdr["Content-Disposition"] = []string{`form-data; name="` + file.field + `"; filename="` + file.name + `"`}
		if file.contentType != "" {
			hdr["Content-Type"] = []string{file.contentType}
		}
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, a.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return a.do(t, req)
}

func (a *app) registerAndLogin(t *testing.T, username, email string) {
	t.Helper()

	resp := a.postForm(t, "/register", url.Values{"username": {username}, "email": {email}, "password": {"pw"}})
	require.Equal(t, http.StatusFound, resp.status)
	require.Equal(t, "/login", resp.header.Get("Location"))

	resp = a.postForm(t, "/login", url.Values{"email": {email}, "password": {"pw"}})
	require.Equal(t, http.StatusFound, resp.status)
	require.Equal(t, "/", resp.header.Get("Location"))
}

func decodeSamples(t *testing.T, data []byte) []float32 {
	t.Helper()

	b, err := formats.DecodeBuffer(data, "")
	require.NoError(t, err)

	return b.Samples()
}

func assertAllNear(t *testing.T, want float32, got []float32) {
	t.Helper()

	require.NotEmpty(t, got)
	for i, v := range got {
		assert.LessOrEqual(t, math.Abs(float64(v-want)), 2.0/32767, "sample %d = %v", i, v)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	a := newApp(t)
	resp := a.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.status)
	assert.JSONEq(t, `{"status":"ok"}`, string(resp.body))
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	a := newApp(t)
	a.get(t, "/healthz")

	resp := a.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, string(resp.body), "moodmix_http_requests_total")
}

func TestAccountFlow(t *testing.T) {
	t.Parallel()

	a := newApp(t)

	resp := a.get(t, "/")
	assert.Equal(t, http.StatusFound, resp.status)
	assert.Equal(t, "/login", resp.header.Get("Location"))

	a.registerAndLogin(t, "ana", "ana@example.com")

	resp = a.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, string(resp.body), "Hello ana")

	resp = a.get(t, "/login")
	assert.Equal(t, http.StatusFound, resp.status, "logged-in users skip the login page")

	resp = a.postForm(t, "/logout", nil)
	assert.Equal(t, http.StatusFound, resp.status)

	resp = a.get(t, "/")
	assert.Equal(t, http.StatusFound, resp.status)
	assert.Equal(t, "/login", resp.header.Get("Location"))
}

func TestLogoutWithDelete(t *testing.T) {
	t.Parallel()

	a := newApp(t)
	a.registerAndLogin(t, "ana", "ana@example.com")

	req, err := http.NewRequest(http.MethodDelete, a.srv.URL+"/logout", nil)
	require.NoError(t, err)
	resp := a.do(t, req)
	assert.Equal(t, http.StatusFound, resp.status)

	assert.Equal(t, http.StatusFound, a.get(t, "/").status)
}

func TestRegisterDuplicateFlashes(t *testing.T) {
	t.Parallel()

	a := newApp(t)
	resp := a.postForm(t, "/register", url.Values{"username": {"ana"}, "email": {"ana@example.com"}, "password": {"pw"}})
	require.Equal(t, http.StatusFound, resp.status)

	resp = a.postForm(t, "/register", url.Values{"username": {"ana"}, "email": {"ana@example.com"}, "password": {"pw"}})
	require.Equal(t, http.StatusFound, resp.status)
	assert.Equal(t, "/register", resp.header.Get("Location"))

	page := a.get(t, "/register")
	assert.Contains(t, string(page.body), "Email is already in use.")
	assert.Contains(t, string(page.body), "Username is already in use.")
}

func TestLoginFailureFlashes(t *testing.T) {
	t.Parallel()

	a := newApp(t)
	a.postForm(t, "/register", url.Values{"username": {"ana"}, "email": {"ana@example.com"}, "password": {"pw"}})

	tests := []struct {
		email    string
		password string
		want     string
	}{
		{email: "ana@example.com", password: "nope", want: "Password incorrect."},
		{email: "bob@example.com", password: "pw", want: "No user with that email."},
	}

	for _, tt := range tests {
		resp := a.postForm(t, "/login", url.Values{"email": {tt.email}, "password": {tt.password}})
		require.Equal(t, http.StatusFound, resp.status)
		assert.Equal(t, "/login", resp.header.Get("Location"))

		page := a.get(t, "/login")
		assert.Contains(t, string(page.body), tt.want)
	}
}

func TestUploadAndMix(t *testing.T) {
	t.Parallel()

	a := newApp(t)
	a.registerAndLogin(t, "ana", "ana@example.com")

	resp := a.postMultipart(t, "/upload",
		map[string]string{"uploadedBy": "Ana", "message": "happy birthday", "mood": "b"},
		&filePart{field: "file", name: "voice.wav", data: encodeMono(t, 0.5, 0.5, 0.5, 0.5)})
	require.Equal(t, http.StatusOK, resp.status, "body: %s", resp.body)

	body := resp.json(t)
	id, _ := body["mediaId"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "File uploaded successfully!", body["message"])
	assert.Equal(t, a.srv.URL+"/files/media/"+id, body["fileUrl"])
	assert.Equal(t, a.srv.URL+"/files/qrs/"+id+".png", body["qrCodeUrl"])

	m, err := a.store.MediaByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "ana", m.Username, "session user owns the upload")
	assert.Equal(t, model.MoodB, m.Mood)
	assert.Equal(t, "audio/wav", m.MimeType)

	qrResp := a.get(t, "/files/qrs/"+id+".png")
	require.Equal(t, http.StatusOK, qrResp.status)
	_, err = png.Decode(bytes.NewReader(qrResp.body))
	require.NoError(t, err)

	page := a.get(t, "/media/"+id)
	assert.Equal(t, http.StatusOK, page.status)
	assert.Contains(t, string(page.body), `src="/media/`+id+`/mix.wav"`)
	assert.Contains(t, string(page.body), "happy birthday")

	mix := a.get(t, "/media/"+id+"/mix.wav")
	require.Equal(t, http.StatusOK, mix.status)
	assert.Equal(t, "audio/wav", mix.header.Get("Content-Type"))
	assertAllNear(t, 0.7, decodeSamples(t, mix.body))

	notes := a.get(t, "/uploadnote")
	assert.Equal(t, http.StatusOK, notes.status)
	assert.Contains(t, string(notes.body), "/media/"+id)
}

func TestUploadErrors(t *testing.T) {
	t.Parallel()

	a := newApp(t)
	voice := encodeMono(t, 0.1)

	tests := []struct {
		name   string
		fields map[string]string
		file   *filePart
	}{
		{
			name:   "bad mood",
			fields: map[string]string{"uploadedBy": "Ana", "message": "hi", "mood": "Z", "username": "ana"},
			file:   &filePart{field: "file", name: "v.wav", data: voice},
		},
		{
			name:   "missing file",
			fields: map[string]string{"uploadedBy": "Ana", "message": "hi", "mood": "A", "username": "ana"},
		},
		{
			name:   "missing message",
			fields: map[string]string{"uploadedBy": "Ana", "mood": "A", "username": "ana"},
			file:   &filePart{field: "file", name: "v.wav", data: voice},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := a.postMultipart(t, "/upload", tt.fields, tt.file)
			assert.Equal(t, http.StatusBadRequest, resp.status, "body: %s", resp.body)
			assert.NotEmpty(t, resp.json(t)["error"])
		})
	}
}

func TestUploadTooLarge(t *testing.T) {
	t.Parallel()

	a := newApp(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("mood", "A"))
	part, err := mw.CreateFormFile("file", "big.wav")
	require.NoError(t, err)
	_, err = part.Write(make([]byte, 2<<20))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	a.h.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "upload exceeds")
}

func TestUploadDuplicateFilename(t *testing.T) {
	t.Parallel()

	a := newApp(t)
	fields := map[string]string{"uploadedBy": "Ana", "message": "hi", "mood": "A", "username": "ana"}
	file := &filePart{field: "file", name: "same.wav", data: encodeMono(t, 0.1)}

	require.Equal(t, http.StatusOK, a.postMultipart(t, "/upload", fields, file).status)
	assert.Equal(t, http.StatusConflict, a.postMultipart(t, "/upload", fields, file).status)
}

func TestMediaNotFound(t *testing.T) {
	t.Parallel()

	a := newApp(t)

	page := a.get(t, "/media/missing")
	assert.Equal(t, http.StatusNotFound, page.status)
	assert.Contains(t, string(page.body), "Media not found")

	mix := a.get(t, "/media/missing/mix.wav")
	assert.Equal(t, http.StatusNotFound, mix.status)
	assert.NotEmpty(t, mix.json(t)["error"])
}

func TestRecordings(t *testing.T) {
	t.Parallel()

	a := newApp(t)

	resp := a.get(t, "/fetch-recorded-files")
	assert.Equal(t, http.StatusBadRequest, resp.status)
	assert.Equal(t, false, resp.json(t)["success"])

	resp = a.get(t, "/fetch-recorded-files?username=ana")
	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.Equal(t, "No files found for this user.", resp.json(t)["error"])

	for _, name := range []string{"take 1", "take 2"} {
		resp = a.postMultipart(t, "/save-audio",
			map[string]string{"audioname": name, "username": "ana"},
			&filePart{field: "audio", name: "recording.wav", contentType: "audio/webm", data: []byte("webm bytes")})
		require.Equal(t, http.StatusOK, resp.status, "body: %s", resp.body)
		assert.Equal(t, true, resp.json(t)["success"])
	}

	resp = a.get(t, "/fetch-recorded-files?username=ana")
	require.Equal(t, http.StatusOK, resp.status)

	var out struct {
		Success bool           `json:"success"`
		Files   []recordedFile `json:"files"`
	}
	require.NoError(t, json.Unmarshal(resp.body, &out))
	assert.True(t, out.Success)
	require.Len(t, out.Files, 2)
	assert.Equal(t, "take 1", out.Files[0].Name)
	assert.True(t, strings.HasPrefix(out.Files[0].URL, a.srv.URL+"/files/record/"))
	assert.True(t, strings.HasSuffix(out.Files[0].URL, ".wav"))

	file := a.get(t, strings.TrimPrefix(out.Files[1].URL, a.srv.URL))
	assert.Equal(t, "webm bytes", string(file.body))
	assert.Equal(t, "audio/webm", file.header.Get("Content-Type"))

	resp = a.postMultipart(t, "/save-audio", map[string]string{"audioname": "x"},
		&filePart{field: "audio", name: "r.wav", data: []byte("x")})
	assert.Equal(t, http.StatusBadRequest, resp.status, "a recording needs a username")
}

func TestUploadLocal(t *testing.T) {
	t.Parallel()

	a := newApp(t)

	resp := a.postMultipart(t, "/upload-local", nil,
		&filePart{field: "audio", name: "../../evil.wav", data: encodeMono(t, 0.1)})
	require.Equal(t, http.StatusOK, resp.status, "body: %s", resp.body)
	assert.Equal(t, a.srv.URL+"/files/local/evil.wav", resp.json(t)["fileUrl"])

	data, err := a.bucket.Get(context.Background(), "local/evil.wav")
	require.NoError(t, err)
	assert.Equal(t, "audio/wav", formats.ContentType(formats.Detect(data)))
}

func TestMixAudio(t *testing.T) {
	t.Parallel()

	a := newApp(t)

	resp := a.postForm(t, "/mix-audio", url.Values{"audioUrl": {voiceURL}, "mood": {"B"}})
	require.Equal(t, http.StatusOK, resp.status, "body: %s", resp.body)
	assert.Equal(t, "audio/wav", resp.header.Get("Content-Type"))
	assert.Equal(t, "attachment; filename=mixed_audio.wav", resp.header.Get("Content-Disposition"))
	assertAllNear(t, 0.7, decodeSamples(t, resp.body))
}

func TestMixAudioErrors(t *testing.T) {
	t.Parallel()

	a := newApp(t)

	tests := []struct {
		name string
		form url.Values
		want int
	}{
		{name: "missing url", form: url.Values{"mood": {"B"}}, want: http.StatusBadRequest},
		{name: "missing mood", form: url.Values{"audioUrl": {voiceURL}}, want: http.StatusBadRequest},
		{name: "bad mood", form: url.Values{"audioUrl": {voiceURL}, "mood": {"Q"}}, want: http.StatusBadRequest},
		{name: "rejected url", form: url.Values{"audioUrl": {"ftp://voices.example/a.wav"}, "mood": {"B"}}, want: http.StatusBadRequest},
		{name: "upstream failure", form: url.Values{"audioUrl": {"https://voices.example/gone.wav"}, "mood": {"B"}}, want: http.StatusBadGateway},
		{name: "not audio", form: url.Values{"audioUrl": {"https://voices.example/x.txt"}, "mood": {"B"}}, want: http.StatusUnsupportedMediaType},
		{name: "missing mood track", form: url.Values{"audioUrl": {voiceURL}, "mood": {"C"}}, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := a.postForm(t, "/mix-audio", tt.form)
			assert.Equal(t, tt.want, resp.status, "body: %s", resp.body)
			assert.NotEmpty(t, resp.json(t)["error"])
		})
	}
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	a := newApp(t)

	resp := a.postForm(t, "/generate", url.Values{"text": {"sunset"}})
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "https://images.example/sunset.jpg", resp.json(t)["imageUrl"])

	req, err := http.NewRequest(http.MethodPost, a.srv.URL+"/generate", strings.NewReader(`{"text":"sea"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp = a.do(t, req)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "https://images.example/sea.jpg", resp.json(t)["imageUrl"])

	resp = a.postForm(t, "/generate", url.Values{"text": {""}})
	assert.Equal(t, http.StatusBadRequest, resp.status)
}

func TestPagesRender(t *testing.T) {
	t.Parallel()

	a := newApp(t)

	for _, path := range []string{"/login", "/register", "/upload", "/record", "/uploadnote", "/imagepage"} {
		resp := a.get(t, path)
		assert.Equal(t, http.StatusOK, resp.status, path)
		assert.Equal(t, "text/html; charset=utf-8", resp.header.Get("Content-Type"), path)
		assert.Contains(t, string(resp.body), "Guest", path)
	}
}
