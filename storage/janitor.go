package storage

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// VideoDeleter removes a published copy of a video.
type VideoDeleter interface {
	DeleteVideo(ctx context.Context, name string) error
}

// Janitor periodically purges finished videos older than the retention window and
// session directories abandoned by crashed renders.
type Janitor struct {
	OutputDir   string
	SessionsDir string
	Retention   time.Duration

	// Remote, when set, also loses its copy of each purged video.
	Remote VideoDeleter

	now func() time.Time

	mu     sync.Mutex
	cron   *cron.Cron
	cronID cron.EntryID
}

// NewJanitor creates a janitor for the given directories.
func NewJanitor(outputDir, sessionsDir string, retention time.Duration) *Janitor {
	return &Janitor{
		OutputDir:   outputDir,
		SessionsDir: sessionsDir,
		Retention:   retention,
		now:         time.Now,
	}
}

// Start runs Sweep on schedule (standard cron spec or @every).
func (j *Janitor) Start(schedule string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.cron != nil {
		return fmt.Errorf("janitor already started")
	}

	c := cron.New()
	id, err := c.AddFunc(schedule, func() {
		removed, err := j.Sweep(context.Background())
		if err != nil {
			log.Printf("❌ Janitor sweep failed: %v", err)
			return
		}
		if removed > 0 {
			log.Printf("🧹 Janitor removed %d expired entries", removed)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add janitor job: %w", err)
	}

	j.cron = c
	j.cronID = id
	c.Start()
	log.Printf("🧹 Janitor started with schedule: %s (retention %s)", schedule, j.Retention)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	j.mu.Lock()
	c := j.cron
	j.cron = nil
	j.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// Sweep removes expired videos and stale sessions once, returning how many entries went.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	if j.Retention <= 0 {
		return 0, nil
	}
	cutoff := j.now().Add(-j.Retention)
	removed := 0

	videos, err := expired(j.OutputDir, cutoff, func(e os.DirEntry) bool {
		return !e.IsDir() && strings.HasSuffix(e.Name(), ".mp4")
	})
	if err != nil {
		return 0, err
	}
	for _, name := range videos {
		if err := os.Remove(filepath.Join(j.OutputDir, name)); err != nil {
			log.Printf("⚠️ Failed to remove %s: %v", name, err)
			continue
		}
		removed++
		if j.Remote != nil {
			if err := j.Remote.DeleteVideo(ctx, name); err != nil {
				log.Printf("⚠️ Failed to remove remote copy of %s: %v", name, err)
			}
		}
	}

	sessions, err := expired(j.SessionsDir, cutoff, func(e os.DirEntry) bool {
		return e.IsDir()
	})
	if err != nil {
		return removed, err
	}
	for _, name := range sessions {
		if err := os.RemoveAll(filepath.Join(j.SessionsDir, name)); err != nil {
			log.Printf("⚠️ Failed to remove session %s: %v", name, err)
			continue
		}
		removed++
	}

	return removed, nil
}

func expired(dir string, cutoff time.Time, match func(os.DirEntry) bool) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !match(e) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
