// Package datafetch populates the reference-data directory on first run,
// either by downloading and unpacking the published archive or by running
// a user-supplied command.
package datafetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/shlex"

	"webbpsf/internal/config"
	"webbpsf/internal/logging"
)

// Fetcher fills an empty directory with the reference data.
type Fetcher interface {
	Populate(ctx context.Context, dir string) error
}

// HTTP downloads a .tar.gz archive and unpacks it into the target dir.
type HTTP struct {
	URL    string
	Digest Digest
	Client *http.Client
	// StripComponents drops leading path elements from archive entries;
	// the published archive wraps everything in webbpsf-data/.
	StripComponents int
	MinFreeBytes    uint64
	Logger          *slog.Logger
}

func (h *HTTP) Populate(ctx context.Context, dir string) error {
	if h.URL == "" {
		return errors.New("data url is empty")
	}
	log := h.Logger
	if log == nil {
		log = logging.Discard()
	}
	if err := CheckFreeSpace(dir, h.MinFreeBytes); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dir), ".webbpsf-data-*.tar.gz")
	if err != nil {
		return err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	log.Info("datafetch.download.start", "url", h.URL)
	n, err := h.download(ctx, tmp)
	if err != nil {
		return err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return err
	}
	files, err := extractTarGz(tmp, dir, h.StripComponents)
	if err != nil {
		return err
	}
	log.Info("datafetch.download.done", "url", h.URL, "bytes", n, "files", files)
	return nil
}

func (h *HTTP) download(ctx context.Context, out io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return 0, err
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("data download failed: %s", resp.Status)
	}

	w := out
	var verify func() error
	if !h.Digest.IsZero() {
		hsh, err := h.Digest.newHash()
		if err != nil {
			return 0, err
		}
		w = io.MultiWriter(out, hsh)
		verify = func() error { return h.Digest.verify(hsh) }
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, err
	}
	if verify != nil {
		if err := verify(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Command runs an external program to populate the directory. The line
// is split shell-style; the program runs inside the target directory with
// WEBBPSF_DATA_DIR set to it.
type Command struct {
	Line   string
	Logger *slog.Logger
}

func (c *Command) Populate(ctx context.Context, dir string) error {
	parts, err := shlex.Split(c.Line)
	if err != nil {
		return err
	}
	if len(parts) == 0 {
		return errors.New("empty data command")
	}
	log := c.Logger
	if log == nil {
		log = logging.Discard()
	}

	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "WEBBPSF_DATA_DIR="+dir)
	log.Info("datafetch.command.start", "cmd", parts[0])
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("data command %s: %w: %s", parts[0], err, out)
	}
	return nil
}

// FromConfig builds the fetcher described by cfg: the command if one is
// set, otherwise the archive download.
func FromConfig(cfg config.DataConfig, log *slog.Logger) (Fetcher, error) {
	if cfg.Command != "" {
		return &Command{Line: cfg.Command, Logger: log}, nil
	}
	digest, err := ParseDigest(cfg.Digest)
	if err != nil {
		return nil, err
	}
	client := &http.Client{}
	if cfg.TimeoutSeconds > 0 {
		client.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &HTTP{
		URL:             cfg.URL,
		Digest:          digest,
		Client:          client,
		StripComponents: 1,
		MinFreeBytes:    uint64(cfg.MinFreeMB) << 20,
		Logger:          log,
	}, nil
}
