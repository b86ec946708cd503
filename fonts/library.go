package fonts

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// Library resolves selectable font names to faces, caching parsed font files.
type Library struct {
	dir   string
	files map[string]string

	mu       sync.Mutex
	parsed   map[string]*sfnt.Font
	failed   map[string]error
	fallback *sfnt.Font
}

// NewLibrary serves the fonts in files (name -> file name) from dir.
func NewLibrary(dir string, files map[string]string) *Library {
	return &Library{
		dir:    dir,
		files:  files,
		parsed: make(map[string]*sfnt.Font),
		failed: make(map[string]error),
	}
}

// Names lists the selectable font names.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.files))
	for name := range l.files {
		names = append(names, name)
	}
	return names
}

// Face returns name at size pixels. Unknown or unreadable fonts fall back to Go Regular,
// so the result is never nil.
func (l *Library) Face(name string, size float64) font.Face {
	f, err := l.font(name)
	if err != nil {
		f = l.fallbackFont()
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Printf("⚠️ Failed to build face %q at %.0fpx, using fallback: %v", name, size, err)
		face, _ = opentype.NewFace(l.fallbackFont(), &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	}
	return face
}

// font returns the parsed font for name. A failure is remembered and logged once, so a
// missing or corrupt file is read at most once per Library.
func (l *Library) font(name string) (*sfnt.Font, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if f, ok := l.parsed[name]; ok {
		return f, nil
	}
	if err, ok := l.failed[name]; ok {
		return nil, err
	}

	f, err := l.load(name)
	if err != nil {
		l.failed[name] = err
		log.Printf("⚠️ Font fallback: %v", err)
		return nil, err
	}

	l.parsed[name] = f
	return f, nil
}

func (l *Library) load(name string) (*sfnt.Font, error) {
	file, ok := l.files[name]
	if !ok {
		return nil, fmt.Errorf("unknown font %q", name)
	}

	data, err := os.ReadFile(filepath.Join(l.dir, file))
	if err != nil {
		return nil, fmt.Errorf("failed to read font %q: %w", name, err)
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %q: %w", name, err)
	}
	return f, nil
}

func (l *Library) fallbackFont() *sfnt.Font {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fallback == nil {
		// goregular.TTF is embedded and known to parse.
		l.fallback, _ = opentype.Parse(goregular.TTF)
	}
	return l.fallback
}
