package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"shortreel/processor"
	"shortreel/video"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRenderer struct {
	err error
	in  processor.RenderInput
}

func (f *fakeRenderer) Render(ctx context.Context, in processor.RenderInput) (*processor.RenderResult, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &processor.RenderResult{SessionID: "abc", Filename: "abc.mp4", Duration: 6, RemoteURL: "https://s3/abc.mp4"}, nil
}

type fakeRemote struct {
	exists bool
}

func (f *fakeRemote) Exists(ctx context.Context, name string) (bool, error) {
	return f.exists, nil
}

func (f *fakeRemote) PresignVideo(ctx context.Context, name string, lifetime time.Duration) (string, error) {
	return "https://bucket.example/" + name + "?sig=1", nil
}

func multipartBody(t *testing.T, fields map[string][]string, files map[string][]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			if err := w.WriteField(k, v); err != nil {
				t.Fatalf("field: %v", err)
			}
		}
	}
	for k, names := range files {
		for _, name := range names {
			fw, err := w.CreateFormFile(k, name)
			if err != nil {
				t.Fatalf("file: %v", err)
			}
			fw.Write([]byte("data:" + name))
		}
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func newTestRouter(r Renderer, outDir string, remote RemoteVideos) *gin.Engine {
	return NewRouter(&VideoController{
		Renderer:  r,
		OutputDir: outDir,
		BaseURL:   "http://localhost:5000",
		Remote:    remote,
	})
}

func TestGenerateVideo(t *testing.T) {
	r := &fakeRenderer{}
	router := newTestRouter(r, t.TempDir(), nil)

	body, ct := multipartBody(t, map[string][]string{
		"durations[]":    {"2.0", "4.0"},
		"animations[]":   {"none", "stop"},
		"scripts[]":      {"A", "B"},
		"ttsEnabled[]":   {"false", "true"},
		"topicText":      {" 여행 "},
		"titleFontSize":  {"abc"},
		"scriptFontSize": {"42"},
		"selectedFont":   {"NanumBrush"},
	}, map[string][]string{
		"images": {"one.jpg", "two.png"},
		"bgm":    {"song.mp3"},
	})

	req := httptest.NewRequest(http.MethodPost, "/generate-video", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["video_url"] != "http://localhost:5000/get-video?filename=abc.mp4" {
		t.Fatalf("video_url = %v", resp["video_url"])
	}
	if resp["s3_url"] != "https://s3/abc.mp4" || resp["session_id"] != "abc" || resp["duration"] != 6.0 {
		t.Fatalf("resp = %v", resp)
	}

	in := r.in
	if len(in.Images) != 2 || in.Images[0].Name != "one.jpg" {
		t.Fatalf("images = %+v", in.Images)
	}
	rc, err := in.Images[1].Open()
	if err != nil {
		t.Fatalf("open upload: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "data:two.png" {
		t.Fatalf("upload = %q", data)
	}
	if in.Title != "여행" || in.TitleFontSize != 80 || in.CaptionFontSize != 42 || in.Font != "NanumBrush" {
		t.Fatalf("settings = %+v", in)
	}
	if fmt.Sprint(in.Durations, in.Animations, in.Captions, in.NarrationFlags) != "[2.0 4.0] [none stop] [A B] [false true]" {
		t.Fatalf("lists = %q %q %q %q", in.Durations, in.Animations, in.Captions, in.NarrationFlags)
	}
	if in.Music == nil || in.Music.Name != "song.mp3" {
		t.Fatalf("music = %+v", in.Music)
	}
}

func TestGenerateVideoErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"input shape", fmt.Errorf("wrapped: %w", video.ErrInputShape), http.StatusBadRequest},
		{"input error type", &video.InputError{Msg: "no images provided"}, http.StatusBadRequest},
		{"internal", errors.New("ffmpeg encode error"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			router := newTestRouter(&fakeRenderer{err: c.err}, t.TempDir(), nil)
			body, ct := multipartBody(t, map[string][]string{"durations[]": {"1"}}, nil)

			req := httptest.NewRequest(http.MethodPost, "/generate-video", body)
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != c.want {
				t.Fatalf("status = %d; want %d", rec.Code, c.want)
			}
			var resp map[string]string
			json.Unmarshal(rec.Body.Bytes(), &resp)
			if resp["error"] != c.err.Error() {
				t.Fatalf("error = %q; want %q", resp["error"], c.err.Error())
			}
		})
	}
}

func TestGenerateVideoRejectsNonMultipart(t *testing.T) {
	router := newTestRouter(&fakeRenderer{}, t.TempDir(), nil)
	req := httptest.NewRequest(http.MethodPost, "/generate-video", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", rec.Code)
	}
}

func TestGetVideo(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "abc.mp4"), []byte("mp4-bytes"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	router := newTestRouter(&fakeRenderer{}, dir, nil)

	cases := []struct {
		query string
		code  int
	}{
		{"abc.mp4", http.StatusOK},
		{"../abc.mp4", http.StatusOK},
		{"missing.mp4", http.StatusNotFound},
		{"", http.StatusNotFound},
		{"..", http.StatusNotFound},
	}

	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/get-video?filename="+c.query, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != c.code {
			t.Fatalf("filename=%q status = %d; want %d", c.query, rec.Code, c.code)
		}
		if c.code == http.StatusOK {
			if ct := rec.Header().Get("Content-Type"); ct != "video/mp4" {
				t.Fatalf("content type = %q", ct)
			}
			if rec.Body.String() != "mp4-bytes" {
				t.Fatalf("body = %q", rec.Body.String())
			}
		} else if rec.Body.String() != `{"error":"File not found"}` {
			t.Fatalf("body = %s", rec.Body.String())
		}
	}
}

func TestGetVideoRemoteFallback(t *testing.T) {
	router := newTestRouter(&fakeRenderer{}, t.TempDir(), &fakeRemote{exists: true})

	req := httptest.NewRequest(http.MethodGet, "/get-video?filename=old.mp4", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d; want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://bucket.example/old.mp4?sig=1" {
		t.Fatalf("location = %q", loc)
	}

	router = newTestRouter(&fakeRenderer{}, t.TempDir(), &fakeRemote{exists: false})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/get-video?filename=old.mp4", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", rec.Code)
	}
}

func TestCORSAndHealth(t *testing.T) {
	router := newTestRouter(&fakeRenderer{}, t.TempDir(), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/generate-video", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d; want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != `{"status":"ok"}` {
		t.Fatalf("health = %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header on GET")
	}
}
