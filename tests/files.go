package tests

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"
)

// A dataset is a directory of external test files, fetched on first use and
// kept next to this file afterwards.
type dataset struct {
	dir   string
	fetch func(tb testing.TB, dest string) error

	mu sync.Mutex
}

func (ds *dataset) path(tb testing.TB) string {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	dir := filepath.Join(testsDir(), ds.dir)
	if _, err := os.Stat(dir); !errors.Is(err, fs.ErrNotExist) {
		return dir
	}

	tb.Logf("%s not found, downloading...", ds.dir)

	// Fetch into a temporary directory and rename, an interrupted download
	// must not leave a half-populated dataset behind.
	tmp, err := os.MkdirTemp(testsDir(), ds.dir+".*.tmp")
	if err != nil {
		tb.Fatal(err)
	}
	if err := ds.fetch(tb, tmp); err != nil {
		os.RemoveAll(tmp)
		tb.Fatalf("%s: %s", ds.dir, err)
	}
	if err := os.Rename(tmp, dir); err != nil {
		os.RemoveAll(tmp)
		tb.Fatal(err)
	}
	tb.Logf("%s downloaded", dir)
	return dir
}

func testsDir() string {
	_, b, _, _ := runtime.Caller(0)
	return filepath.Dir(b)
}

var testRoms = dataset{
	dir: "nes-test-roms",
	fetch: func(tb testing.TB, dest string) error {
		const url = `https://github.com/christopherpow/nes-test-roms/archive/refs/heads/master.zip`

		tmpf, err := os.CreateTemp("", "nes-test-roms-*.zip")
		if err != nil {
			return err
		}
		defer os.Remove(tmpf.Name())
		defer tmpf.Close()

		if err := download(context.Background(), url, tmpf); err != nil {
			return err
		}
		n, err := unzip(tmpf.Name(), dest, "nes-test-roms-master/")
		if err != nil {
			return err
		}
		tb.Log("extracted", n, "files")
		return nil
	},
}

// RomsPath returns the path of the nes-test-roms directory.
func RomsPath(tb testing.TB) string {
	return testRoms.path(tb)
}

var harteTests = dataset{
	dir: "tomharte.processor.tests",
	fetch: func(tb testing.TB, dest string) error {
		const urlfmt = `https://raw.githubusercontent.com/SingleStepTests/65x02/main/nes6502/v1/%02x.json`

		g, ctx := errgroup.WithContext(context.Background())
		g.SetLimit(runtime.NumCPU())

		for opcode := range 256 {
			g.Go(func() error {
				f, err := os.Create(filepath.Join(dest, fmt.Sprintf("%02x.json", opcode)))
				if err != nil {
					return err
				}
				defer f.Close()
				return download(ctx, fmt.Sprintf(urlfmt, opcode), f)
			})
		}
		return g.Wait()
	},
}

// TomHarteProcTestsPath returns the path of the directory holding one single
// step test file per opcode.
func TomHarteProcTestsPath(tb testing.TB) string {
	return harteTests.path(tb)
}

func download(ctx context.Context, url string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %s", url, resp.Status)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

// unzip extracts the files of the archive under dest, after removing prefix
// from their names. It returns the number of extracted files.
func unzip(archive, dest, prefix string) (int, error) {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	root := filepath.Clean(dest) + string(os.PathSeparator)
	n := 0
	for _, f := range r.File {
		name := strings.TrimPrefix(f.Name, prefix)
		if name == "" || f.FileInfo().IsDir() {
			continue
		}
		fpath := filepath.Join(dest, name)
		if !strings.HasPrefix(fpath, root) {
			return n, fmt.Errorf("%s: illegal file path", f.Name)
		}
		if err := extract(f, fpath); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func extract(f *zip.File, fpath string) error {
	if err := os.MkdirAll(filepath.Dir(fpath), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(fpath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
