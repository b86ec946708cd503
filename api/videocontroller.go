package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"shortreel/config"
	"shortreel/processor"
	"shortreel/storage"
	"shortreel/video"
)

// Renderer runs one render request.
type Renderer interface {
	Render(ctx context.Context, in processor.RenderInput) (*processor.RenderResult, error)
}

// RemoteVideos is the remote copy of finished renders, used when the local file is gone.
type RemoteVideos interface {
	Exists(ctx context.Context, name string) (bool, error)
	PresignVideo(ctx context.Context, name string, lifetime time.Duration) (string, error)
}

// VideoController serves render submission and retrieval.
type VideoController struct {
	Renderer  Renderer
	OutputDir string
	BaseURL   string

	// Remote is optional.
	Remote RemoteVideos
}

// RegisterVideoRoutes registers render endpoints.
func RegisterVideoRoutes(r *gin.Engine, vc *VideoController) {
	r.POST("/generate-video", vc.handleGenerateVideo)
	r.GET("/get-video", vc.handleGetVideo)
}

// handleGenerateVideo renders synchronously and answers with a link to the result.
func (vc *VideoController) handleGenerateVideo(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid multipart form: %v", err)})
		return
	}

	in := renderInputFromForm(form)
	logRequest(in)

	res, err := vc.Renderer.Render(c.Request.Context(), in)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, video.ErrInputShape) {
			status = http.StatusBadRequest
		}
		log.Printf("❌ Render failed (%d): %v", status, err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{
		"video_url":  vc.BaseURL + "/get-video?filename=" + url.QueryEscape(res.Filename),
		"session_id": res.SessionID,
		"duration":   res.Duration,
	}
	if res.RemoteURL != "" {
		resp["s3_url"] = res.RemoteURL
	}
	if res.YouTubeID != "" {
		resp["youtube_id"] = res.YouTubeID
	}
	c.JSON(http.StatusOK, resp)
}

// handleGetVideo streams a finished render, falling back to a presigned remote link.
func (vc *VideoController) handleGetVideo(c *gin.Context) {
	path, err := storage.OutputPath(vc.OutputDir, c.Query("filename"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		c.Header("Content-Type", "video/mp4")
		c.File(path)
		return
	}

	if vc.Remote != nil {
		name := filepath.Base(path)
		if ok, err := vc.Remote.Exists(c.Request.Context(), name); err == nil && ok {
			link, err := vc.Remote.PresignVideo(c.Request.Context(), name, storage.DefaultURLLifetime)
			if err == nil {
				c.Redirect(http.StatusFound, link)
				return
			}
			log.Printf("⚠️ Failed to presign %s: %v", name, err)
		} else if err != nil {
			log.Printf("⚠️ Remote lookup for %s failed: %v", name, err)
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
}

func renderInputFromForm(form *multipart.Form) processor.RenderInput {
	in := processor.RenderInput{
		Durations:       formList(form, "durations"),
		Animations:      formList(form, "animations"),
		Captions:        formList(form, "scripts"),
		NarrationFlags:  formList(form, "ttsEnabled"),
		Title:           formValue(form, "topicText"),
		TitleFontSize:   formInt(form, "titleFontSize", config.DefaultTitleFontSize),
		CaptionFontSize: formInt(form, "scriptFontSize", config.DefaultCaptionFontSize),
		Font:            formValue(form, "selectedFont"),
	}

	for _, fh := range formFiles(form, "images") {
		in.Images = append(in.Images, fileAsset(fh))
	}

	if files := formFiles(form, "bgm"); len(files) > 0 && files[0].Size > 0 {
		music := fileAsset(files[0])
		in.Music = &music
	}

	return in
}

func fileAsset(fh *multipart.FileHeader) processor.Asset {
	return processor.Asset{
		Name: fh.Filename,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

// formList accepts both "name[]" and "name" keys.
func formList(form *multipart.Form, name string) []string {
	if v, ok := form.Value[name+"[]"]; ok {
		return v
	}
	return form.Value[name]
}

func formFiles(form *multipart.Form, name string) []*multipart.FileHeader {
	if f, ok := form.File[name+"[]"]; ok {
		return f
	}
	return form.File[name]
}

func formValue(form *multipart.Form, name string) string {
	if v := form.Value[name]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

func formInt(form *multipart.Form, name string, def int) int {
	n, err := strconv.Atoi(formValue(form, name))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func logRequest(in processor.RenderInput) {
	log.Printf("📥 Render request: images=%d durations=%q animations=%q", len(in.Images), in.Durations, in.Animations)
	log.Printf("📥 title=%q titleFontSize=%d scriptFontSize=%d font=%q music=%t",
		in.Title, in.TitleFontSize, in.CaptionFontSize, in.Font, in.Music != nil)
	log.Printf("📥 scripts=%q ttsEnabled=%q", in.Captions, in.NarrationFlags)
}
