package datafetch

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"

	"webbpsf/internal/config"
)

type entry struct {
	name string
	body string
	dir  bool
}

func buildArchive(t *testing.T, entries []entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0o644, Size: int64(len(e.body)), Typeflag: tar.TypeReg}
		if e.dir {
			hdr = &tar.Header{Name: e.name, Mode: 0o755, Typeflag: tar.TypeDir}
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if !e.dir {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

var sampleEntries = []entry{
	{name: "webbpsf-data/", dir: true},
	{name: "webbpsf-data/version.txt", body: "1.2.1\n"},
	{name: "webbpsf-data/NIRCam/", dir: true},
	{name: "webbpsf-data/NIRCam/filters.tsv", body: "filter\tfile\nF200W\tF200W_throughput.fits\n"},
}

func serve(t *testing.T, payload []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/webbpsf-data.tar.gz" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(payload)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPPopulate(t *testing.T) {
	payload := buildArchive(t, sampleEntries)
	srv := serve(t, payload)
	sum := sha256.Sum256(payload)

	dest := filepath.Join(t.TempDir(), "staging")
	require.NoError(t, os.Mkdir(dest, 0o755))
	f := &HTTP{
		URL:             srv.URL + "/webbpsf-data.tar.gz",
		Digest:          Digest{Algorithm: "sha256", Sum: sum[:]},
		StripComponents: 1,
	}
	require.NoError(t, f.Populate(context.Background(), dest))

	data, err := os.ReadFile(filepath.Join(dest, "version.txt"))
	require.NoError(t, err)
	assert.Equal(t, "1.2.1\n", string(data))
	assert.FileExists(t, filepath.Join(dest, "NIRCam", "filters.tsv"))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(dest), "*.tar.gz"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestHTTPPopulateBlake2b(t *testing.T) {
	payload := buildArchive(t, sampleEntries)
	srv := serve(t, payload)
	sum := blake2b.Sum256(payload)

	d, err := ParseDigest("blake2b:" + hex.EncodeToString(sum[:]))
	require.NoError(t, err)

	dest := t.TempDir()
	f := &HTTP{URL: srv.URL + "/webbpsf-data.tar.gz", Digest: d, StripComponents: 1}
	require.NoError(t, f.Populate(context.Background(), dest))
	assert.FileExists(t, filepath.Join(dest, "version.txt"))
}

func TestHTTPPopulateDigestMismatch(t *testing.T) {
	srv := serve(t, buildArchive(t, sampleEntries))
	dest := t.TempDir()
	f := &HTTP{
		URL:    srv.URL + "/webbpsf-data.tar.gz",
		Digest: Digest{Algorithm: "sha256", Sum: make([]byte, sha256.Size)},
	}
	err := f.Populate(context.Background(), dest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDigestMismatch))

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is unpacked before the digest matches")
}

func TestHTTPPopulateErrors(t *testing.T) {
	srv := serve(t, buildArchive(t, sampleEntries))

	err := (&HTTP{}).Populate(context.Background(), t.TempDir())
	assert.EqualError(t, err, "data url is empty")

	err = (&HTTP{URL: srv.URL + "/missing.tar.gz"}).Populate(context.Background(), t.TempDir())
	assert.ErrorContains(t, err, "404")

	evil := serve(t, buildArchive(t, []entry{{name: "../evil.txt", body: "x"}}))
	dest := filepath.Join(t.TempDir(), "dest")
	require.NoError(t, os.Mkdir(dest, 0o755))
	err = (&HTTP{URL: evil.URL + "/webbpsf-data.tar.gz"}).Populate(context.Background(), dest)
	assert.ErrorContains(t, err, "escapes destination")
	assert.NoFileExists(t, filepath.Join(filepath.Dir(dest), "evil.txt"))

	notGzip := serve(t, []byte("not an archive"))
	err = (&HTTP{URL: notGzip.URL + "/webbpsf-data.tar.gz"}).Populate(context.Background(), t.TempDir())
	assert.ErrorContains(t, err, "open gzip")
}

func TestHTTPPopulateInsufficientSpace(t *testing.T) {
	f := &HTTP{URL: "http://127.0.0.1:1/webbpsf-data.tar.gz", MinFreeBytes: 1 << 62}
	err := f.Populate(context.Background(), t.TempDir())
	assert.True(t, errors.Is(err, ErrInsufficientSpace))
}

func TestStripComponents(t *testing.T) {
	tests := []struct {
		name  string
		strip int
		want  string
		ok    bool
	}{
		{"webbpsf-data/version.txt", 1, "version.txt", true},
		{"./webbpsf-data/NIRCam/x.fits", 1, "NIRCam/x.fits", true},
		{"webbpsf-data/", 1, "", false},
		{"version.txt", 0, "version.txt", true},
		{"./", 0, "", false},
	}
	for _, tc := range tests {
		got, ok := stripComponents(tc.name, tc.strip)
		assert.Equal(t, tc.ok, ok, tc.name)
		assert.Equal(t, tc.want, got, tc.name)
	}
}

func TestParseDigest(t *testing.T) {
	d, err := ParseDigest("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())
	assert.Equal(t, "", d.String())

	sum := sha256.Sum256([]byte("x"))
	s := "SHA256:" + hex.EncodeToString(sum[:])
	d, err = ParseDigest(s)
	require.NoError(t, err)
	assert.Equal(t, "sha256", d.Algorithm)
	assert.Equal(t, "sha256:"+hex.EncodeToString(sum[:]), d.String())

	for _, bad := range []string{"deadbeef", "sha256:zz", "sha256:00ff", "md5:00ff", "blake2b:00ff"} {
		_, err := ParseDigest(bad)
		assert.Error(t, err, bad)
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, CheckFreeSpace(dir, 0))
	assert.NoError(t, CheckFreeSpace(filepath.Join(dir, "not", "yet"), 1))
	assert.True(t, errors.Is(CheckFreeSpace(dir, 1<<62), ErrInsufficientSpace))
}

func TestCommandPopulate(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	dest := t.TempDir()
	c := &Command{Line: `sh -c 'echo ok > "$WEBBPSF_DATA_DIR/readme.txt" && echo here > local.txt'`}
	require.NoError(t, c.Populate(context.Background(), dest))
	assert.FileExists(t, filepath.Join(dest, "readme.txt"))
	assert.FileExists(t, filepath.Join(dest, "local.txt"))

	err := (&Command{Line: `sh -c 'echo boom >&2; exit 3'`}).Populate(context.Background(), dest)
	require.Error(t, err)
	assert.ErrorContains(t, err, "boom")
}

func TestCommandPopulateErrors(t *testing.T) {
	assert.EqualError(t, (&Command{Line: "   "}).Populate(context.Background(), t.TempDir()), "empty data command")
	assert.Error(t, (&Command{Line: `unterminated "quote`}).Populate(context.Background(), t.TempDir()))
}

func TestFromConfig(t *testing.T) {
	cfg := config.DefaultConfig().Data
	cfg.MinFreeMB = 2
	cfg.TimeoutSeconds = 30

	f, err := FromConfig(cfg, nil)
	require.NoError(t, err)
	h, ok := f.(*HTTP)
	require.True(t, ok)
	assert.Equal(t, config.DefaultDataURL, h.URL)
	assert.Equal(t, uint64(2<<20), h.MinFreeBytes)
	assert.Equal(t, 1, h.StripComponents)
	assert.Equal(t, "30s", h.Client.Timeout.String())

	cfg.Command = "rsync -a /mnt/share/webbpsf-data/ ."
	f, err = FromConfig(cfg, nil)
	require.NoError(t, err)
	_, ok = f.(*Command)
	assert.True(t, ok)

	cfg.Command = ""
	cfg.Digest = "md5:00"
	_, err = FromConfig(cfg, nil)
	assert.Error(t, err)
}
