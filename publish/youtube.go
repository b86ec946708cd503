package publish

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	maxTitleRunes   = 100
	defaultCategory = "22"
	defaultPrivacy  = "private"
)

// Metadata describes an uploaded Short.
type Metadata struct {
	Title       string
	Description string
	Tags        []string
	CategoryID  string
	Privacy     string
}

// YouTubeUploader posts finished renders to YouTube as Shorts.
type YouTubeUploader struct {
	service *youtube.Service
}

// NewYouTubeUploader authenticates with a service account key file.
func NewYouTubeUploader(ctx context.Context, serviceAccountFile string) (*YouTubeUploader, error) {
	data, err := os.ReadFile(serviceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account file: %w", err)
	}

	cfg, err := google.JWTConfigFromJSON(data, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account: %w", err)
	}

	service, err := youtube.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create YouTube service: %w", err)
	}

	return &YouTubeUploader{service: service}, nil
}

// Upload sends the video at path and returns its YouTube ID.
func (u *YouTubeUploader) Upload(ctx context.Context, path string, meta Metadata) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open video file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat video file: %w", err)
	}

	log.Printf("📤 Uploading: %s (%.2f MB)", path, float64(info.Size())/(1024*1024))

	call := u.service.Videos.Insert([]string{"snippet", "status"}, BuildVideo(meta)).
		Media(file).
		Context(ctx)

	response, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload video: %w", err)
	}

	log.Printf("✅ Uploaded! https://youtube.com/shorts/%s", response.Id)
	return response.Id, nil
}

// BuildVideo turns metadata into an insert payload, applying YouTube's limits and defaults.
func BuildVideo(meta Metadata) *youtube.Video {
	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = "Slideshow"
	}
	if utf8.RuneCountInString(title) > maxTitleRunes {
		title = string([]rune(title)[:maxTitleRunes-3]) + "..."
	}

	description := meta.Description
	if !strings.Contains(strings.ToLower(description), "#shorts") {
		description = strings.TrimSpace(description + "\n\n#shorts")
	}

	category := meta.CategoryID
	if category == "" {
		category = defaultCategory
	}

	privacy := meta.Privacy
	switch privacy {
	case "public", "unlisted", "private":
	default:
		privacy = defaultPrivacy
	}

	return &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       title,
			Description: description,
			Tags:        meta.Tags,
			CategoryId:  category,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           privacy,
			SelfDeclaredMadeForKids: false,
		},
	}
}

// ParseTags splits a comma-separated tag list, dropping blanks.
func ParseTags(raw string) []string {
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		if clean := strings.TrimSpace(tag); clean != "" {
			tags = append(tags, clean)
		}
	}
	return tags
}
