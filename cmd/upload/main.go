package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"shortreel/config"
	"shortreel/publish"
)

// Uploads an already rendered slideshow to YouTube as a Short.
func main() {
	videoPath := flag.String("video", "", "Path to the MP4 file to upload")
	title := flag.String("title", "", "Title for the YouTube video (defaults to filename)")
	description := flag.String("description", "", "Description to use (optional)")
	tagsFlag := flag.String("tags", "slideshow,shorts", "Comma-separated list of tags")
	categoryID := flag.String("category-id", "22", "YouTube category ID (default: 22 - People & Blogs)")
	privacy := flag.String("privacy", "private", "public, unlisted or private")

	flag.Parse()

	if *videoPath == "" {
		flag.Usage()
		log.Fatal("--video is required")
	}

	if err := ensureFileExists(*videoPath); err != nil {
		log.Fatalf("invalid video path: %v", err)
	}

	cfg := config.Load()
	if cfg.YouTubeServiceAccountFile == "" {
		log.Fatal("YOUTUBE_SERVICE_ACCOUNT_FILE is required")
	}

	titleVal := strings.TrimSpace(*title)
	if titleVal == "" {
		filename := filepath.Base(*videoPath)
		titleVal = strings.TrimSuffix(filename, filepath.Ext(filename))
	}

	ctx := context.Background()
	uploader, err := publish.NewYouTubeUploader(ctx, cfg.YouTubeServiceAccountFile)
	if err != nil {
		log.Fatalf("failed to initialize uploader: %v", err)
	}

	videoID, err := uploader.Upload(ctx, *videoPath, publish.Metadata{
		Title:       titleVal,
		Description: strings.TrimSpace(*description),
		Tags:        publish.ParseTags(*tagsFlag),
		CategoryID:  *categoryID,
		Privacy:     *privacy,
	})
	if err != nil {
		log.Fatalf("upload failed: %v", err)
	}

	log.Printf("Uploaded successfully! https://youtube.com/shorts/%s", videoID)
}

func ensureFileExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, expected file: %s", path)
	}
	return nil
}
