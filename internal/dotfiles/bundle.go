package dotfiles

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip" // .7z bundles
	"github.com/xi2/xz"          // .tar.xz bundles

	"macops/internal/logger"
)

// ErrUnsafePath is returned for an archive entry that would land outside the
// destination directory.
var ErrUnsafePath = errors.New("archive entry escapes destination")

// ErrUnsupportedArchive is returned for a bundle whose extension is not recognised.
var ErrUnsupportedArchive = errors.New("unsupported archive format")

// Unpacker extracts a dotfiles bundle into a directory.
type Unpacker struct {
	Log *logger.Logger
}

// Unpack routes src to the extractor for its extension and returns the number
// of regular files written below dest.
func (u *Unpacker) Unpack(src, dest string) (int, error) {
	u.Log.Info("Unpacking bundle %s into %s", src, dest)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return 0, fmt.Errorf("create %s: %w", dest, err)
	}

	var (
		n   int
		err error
	)
	switch name := strings.ToLower(src); {
	case strings.HasSuffix(name, ".zip"):
		u.Log.Debug("bundle format is zip")
		n, err = u.unzip(src, dest)
	case strings.HasSuffix(name, ".7z"):
		u.Log.Debug("bundle format is 7z")
		n, err = u.un7z(src, dest)
	case strings.HasSuffix(name, ".tar"), strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"),
		strings.HasSuffix(name, ".tar.bz2"), strings.HasSuffix(name, ".tar.xz"):
		u.Log.Debug("bundle format is tar")
		n, err = u.untar(src, dest)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedArchive, src)
	}
	if err != nil {
		return n, fmt.Errorf("unpack %s: %w", src, err)
	}

	u.Log.Info("Unpacked %d file(s).", n)
	return n, nil
}

func (u *Unpacker) untar(src, dest string) (int, error) {
	f, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var r io.Reader = f
	switch name := strings.ToLower(src); {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		gr, err := gzip.NewReader(f)
		if err != nil {
			return 0, err
		}
		defer gr.Close()
		r = gr
	case strings.HasSuffix(name, ".tar.bz2"):
		r = bzip2.NewReader(f)
	case strings.HasSuffix(name, ".tar.xz"):
		xr, err := xz.NewReader(f, 0)
		if err != nil {
			return 0, err
		}
		r = xr
	}

	tr := tar.NewReader(r)
	n := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}

		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return n, err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return n, err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, fs.FileMode(hdr.Mode).Perm()); err != nil {
				return n, err
			}
			n++
		default:
			u.Log.Debug("skipping %s (tar type %c)", hdr.Name, hdr.Typeflag)
		}
	}
}

func (u *Unpacker) unzip(src, dest string) (int, error) {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return 0, err
	}
	defer zr.Close()

	n := 0
	for _, f := range zr.File {
		target, err := safeJoin(dest, f.Name)
		if err != nil {
			return n, err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return n, err
			}
			continue
		}
		if !f.Mode().IsRegular() {
			u.Log.Debug("skipping %s (mode %s)", f.Name, f.Mode())
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return n, err
		}
		err = writeFile(target, rc, f.Mode().Perm())
		rc.Close()
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (u *Unpacker) un7z(src, dest string) (int, error) {
	sr, err := sevenzip.OpenReader(src)
	if err != nil {
		return 0, fmt.Errorf("open 7z archive: %w", err)
	}
	defer sr.Close()

	n := 0
	for _, f := range sr.File {
		target, err := safeJoin(dest, f.Name)
		if err != nil {
			return n, err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return n, err
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return n, err
		}
		err = writeFile(target, rc, f.Mode().Perm())
		rc.Close()
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// safeJoin joins an archive entry name onto dest, rejecting absolute names
// and names that climb out of dest.
func safeJoin(dest, name string) (string, error) {
	name = filepath.FromSlash(name)
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	target := filepath.Join(dest, name)
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}

func writeFile(path string, r io.Reader, perm fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if perm == 0 {
		perm = 0o644
	}
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
