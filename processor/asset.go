package processor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Asset is an uploaded or referenced file that can be opened once for copying into a session.
type Asset struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileAsset reads a local file.
func FileAsset(p string) Asset {
	return Asset{
		Name: filepath.Base(p),
		Open: func() (io.ReadCloser, error) { return os.Open(p) },
	}
}

var downloadClient = &http.Client{Timeout: 2 * time.Minute}

// URLAsset downloads from an http(s) URL when opened.
func URLAsset(ctx context.Context, rawURL string) Asset {
	name := path.Base(strings.SplitN(rawURL, "?", 2)[0])
	return Asset{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
			if err != nil {
				return nil, err
			}
			resp, err := downloadClient.Do(req)
			if err != nil {
				return nil, err
			}
			if resp.StatusCode != http.StatusOK {
				resp.Body.Close()
				return nil, fmt.Errorf("failed to download: status %d", resp.StatusCode)
			}
			return resp.Body, nil
		},
	}
}

// ResolveAsset picks URLAsset for http(s) references and FileAsset otherwise. Relative
// file paths are resolved against baseDir.
func ResolveAsset(ctx context.Context, ref, baseDir string) Asset {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return URLAsset(ctx, ref)
	}
	if !filepath.IsAbs(ref) && baseDir != "" {
		ref = filepath.Join(baseDir, ref)
	}
	return FileAsset(ref)
}
