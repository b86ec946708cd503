package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PartialOutputName is the in-progress render inside a session directory.
const PartialOutputName = "render.partial.mp4"

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var audioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".aac":  true,
	".ogg":  true,
	".flac": true,
}

// Session is one render's private directory. Every upload, narration clip and the
// in-progress output live inside it, so concurrent renders never share a path.
type Session struct {
	ID  string
	Dir string
}

// NewSession creates a fresh session directory under root.
func NewSession(root string) (*Session, error) {
	id := uuid.New().String()
	dir := filepath.Join(root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &Session{ID: id, Dir: dir}, nil
}

// SaveImage stores the image for slide index. The upload's extension is kept when it is
// a known image type; decoding sniffs the content either way.
func (s *Session) SaveImage(index int, name string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if !imageExts[ext] {
		ext = ".png"
	}
	return s.save(fmt.Sprintf("image_%03d%s", index, ext), r)
}

// SaveMusic stores the background music upload.
func (s *Session) SaveMusic(name string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if !audioExts[ext] {
		ext = ".mp3"
	}
	return s.save("bgm"+ext, r)
}

// NarrationPath is where slide index's narration clip is written.
func (s *Session) NarrationPath(index int) string {
	return filepath.Join(s.Dir, fmt.Sprintf("narration_%03d.mp3", index))
}

// WorkOutputPath is where the encoder writes before the render is published.
func (s *Session) WorkOutputPath() string {
	return filepath.Join(s.Dir, PartialOutputName)
}

// OutputName is the servable filename of this session's video.
func (s *Session) OutputName() string {
	return s.ID + ".mp4"
}

// Publish moves the finished render into outputDir and returns its final path. The file
// appears there complete or not at all.
func (s *Session) Publish(outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	src := s.WorkOutputPath()
	dst := filepath.Join(outputDir, s.OutputName())

	if err := os.Rename(src, dst); err == nil {
		return dst, nil
	}

	// Different filesystems: copy beside the destination, then rename into place.
	tmp := dst + ".tmp"
	if err := copyFile(src, tmp); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to publish render: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to publish render: %w", err)
	}
	os.Remove(src)
	return dst, nil
}

// Close removes the session directory and everything in it.
func (s *Session) Close() error {
	return os.RemoveAll(s.Dir)
}

func (s *Session) save(name string, r io.Reader) (string, error) {
	path := filepath.Join(s.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to save %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", name, err)
	}
	return path, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ErrInvalidName is returned for output names that do not reduce to a plain file name.
var ErrInvalidName = errors.New("invalid file name")

// OutputPath resolves a requested file name inside outputDir. Any directory components
// are dropped so the result can never leave outputDir.
func OutputPath(outputDir, name string) (string, error) {
	base := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(name, "\\", "/")))
	if base == "/" || base == "." || base == ".." || base == "" {
		return "", ErrInvalidName
	}
	return filepath.Join(outputDir, base), nil
}
