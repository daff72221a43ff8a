package archive

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gerritholl/fcitools/core/logger"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// extract - unpacks into dest, returns slash separated paths of the regular files relative
// to dest
func extract(path string, k kind, dest string, log logger.ILogger) ([]string, error) {
	if k == kindZip {
		return unzip(path, dest, log)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	switch k {
	case kindTarGz:
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	case kindTarZst:
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	}

	return untar(r, dest, log)
}

// target - where an archive entry goes, "" for the archive root itself. Entries escaping dest
// are rejected, see http://bit.ly/2MsjAWE (ZipSlip)
func target(dest string, name string) (string, string, error) {
	root := filepath.Clean(dest)
	fpath := filepath.Join(root, filepath.FromSlash(name))
	if fpath == root {
		return "", "", nil
	}
	if !strings.HasPrefix(fpath, root+string(os.PathSeparator)) {
		return "", "", errors.Wrap(ErrIllegalPath, name)
	}
	return fpath, filepath.ToSlash(fpath[len(root)+1:]), nil
}

func untar(r io.Reader, dest string, log logger.ILogger) ([]string, error) {
	files := []string{}
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return files, nil
		}
		if err != nil {
			return files, err
		}

		fpath, rel, err := target(dest, hdr.Name)
		if err != nil {
			return files, err
		}
		if len(fpath) == 0 {
			continue
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(fpath, os.ModePerm); err != nil {
				return files, err
			}
		case tar.TypeReg:
			if err := writeFile(fpath, tr, hdr.FileInfo().Mode()); err != nil {
				return files, err
			}
			files = append(files, rel)
		default:
			log.Debugf("Skipping %v, not a regular file", hdr.Name)
		}
	}
}

func unzip(path string, dest string, log logger.ILogger) ([]string, error) {
	files := []string{}
	r, err := zip.OpenReader(path)
	if err != nil {
		return files, err
	}
	defer r.Close()

	for _, f := range r.File {
		// If the zip path starts with __MACOSX, ignore it, it's garbage that a mac laptop has included...
		if strings.HasPrefix(f.Name, "__MACOSX") {
			continue
		}

		fpath, rel, err := target(dest, f.Name)
		if err != nil {
			return files, err
		}
		if len(fpath) == 0 {
			continue
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(fpath, os.ModePerm); err != nil {
				return files, err
			}
			continue
		}
		if !f.Mode().IsRegular() {
			log.Debugf("Skipping %v, not a regular file", f.Name)
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return files, err
		}
		err = writeFile(fpath, rc, f.Mode())

		// Close without defer to close before next iteration of loop
		rc.Close()

		if err != nil {
			return files, err
		}
		files = append(files, rel)
	}
	return files, nil
}

func writeFile(fpath string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(fpath), os.ModePerm); err != nil {
		return err
	}

	outFile, err := os.OpenFile(fpath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm()|0o600)
	if err != nil {
		return err
	}

	_, err = io.Copy(outFile, r)
	closeErr := outFile.Close()
	if err != nil {
		return err
	}
	return closeErr
}
