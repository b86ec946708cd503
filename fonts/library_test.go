package fonts

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

func TestFaceFallsBackForUnknownFont(t *testing.T) {
	lib := NewLibrary(t.TempDir(), map[string]string{"NanumGothic": "NanumGothic.ttf"})

	for _, name := range []string{"", "NoSuchFont", "NanumGothic"} {
		face := lib.Face(name, 50)
		if face == nil {
			t.Fatalf("Face(%q) returned nil", name)
		}
		if _, adv := font.BoundString(face, "Hello"); adv <= 0 {
			t.Fatalf("Face(%q) cannot measure text", name)
		}
	}
}

func TestFaceFallsBackForCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.ttf"), []byte("not a font"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	lib := NewLibrary(dir, map[string]string{"Broken": "broken.ttf"})

	if face := lib.Face("Broken", 40); face == nil {
		t.Fatalf("expected fallback face")
	}
	if lib.failed["Broken"] == nil {
		t.Fatalf("failure not recorded")
	}
}

func TestFaceLoadsConfiguredFont(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Mono.ttf"), gomono.TTF, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	lib := NewLibrary(dir, map[string]string{"Mono": "Mono.ttf"})

	mono := lib.Face("Mono", 60)
	regular := lib.Face("Unknown", 60)

	_, monoAdv := font.BoundString(mono, "iiii")
	_, regularAdv := font.BoundString(regular, "iiii")
	if monoAdv == regularAdv {
		t.Fatalf("configured font not used: advances equal (%v)", monoAdv)
	}

	if _, ok := lib.parsed["Mono"]; !ok {
		t.Fatalf("parsed font not cached")
	}
	if lib.failed["Mono"] != nil {
		t.Fatalf("loaded font marked as failed")
	}
}

func TestNames(t *testing.T) {
	lib := NewLibrary("", map[string]string{"A": "a.ttf", "B": "b.ttf"})
	if got := len(lib.Names()); got != 2 {
		t.Fatalf("Names() = %d entries; want 2", got)
	}
}

func TestFaceDoesNotRereadFailedFont(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Mono.ttf")
	if err := os.WriteFile(path, []byte("not a font"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	lib := NewLibrary(dir, map[string]string{"Mono": "Mono.ttf"})

	first := lib.Face("Mono", 60)

	// A valid file appearing later is not picked up: the failure is cached.
	if err := os.WriteFile(path, gomono.TTF, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	second := lib.Face("Mono", 60)

	_, firstAdv := font.BoundString(first, "iiii")
	_, secondAdv := font.BoundString(second, "iiii")
	if firstAdv != secondAdv {
		t.Fatalf("font file re-read after failure: advances %v then %v", firstAdv, secondAdv)
	}
	if _, ok := lib.parsed["Mono"]; ok {
		t.Fatalf("failed font ended up parsed")
	}
}
