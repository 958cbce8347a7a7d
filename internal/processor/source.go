package processor

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"github.com/woozymasta/geoconv/internal/config"
)

// MaxSourceSize caps how much of a source is read into memory.
const MaxSourceSize = 64 << 20

// loadSource returns the raw document of a job: the inline text, a
// downloaded body or a local file.
func loadSource(ctx context.Context, client *http.Client, j config.Job) ([]byte, error) {
	if j.Inline != "" {
		return []byte(j.Inline), nil
	}

	if strings.HasPrefix(j.Source, "http://") || strings.HasPrefix(j.Source, "https://") {
		return download(ctx, client, j.Source)
	}

	f, err := os.Open(j.Source)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", j.Source)
	}
	defer func() { _ = f.Close() }()

	return readLimited(f, j.Source)
}

func download(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	log.Debug().Str("url", url).Msg("Downloading source")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "build request %s", url)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "download %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("download %s: status %d", url, resp.StatusCode)
	}

	return readLimited(resp.Body, url)
}

func readLimited(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSourceSize+1))
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", name)
	}
	if len(data) > MaxSourceSize {
		return nil, eris.Errorf("%s is larger than %d bytes", name, MaxSourceSize)
	}
	return data, nil
}

// saveOutput writes data to path, creating parent directories.
func saveOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return eris.Wrapf(err, "create %s", dir)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	if _, err := f.Write(data); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	return nil
}
