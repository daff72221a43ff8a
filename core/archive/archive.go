// Package archive unpacks test data archives into a cache directory, so the same archive is
// only ever extracted once.
package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/gerritholl/fcitools/core/fileaccess"
	"github.com/gerritholl/fcitools/core/logger"
	"github.com/gerritholl/fcitools/core/metrics"
	"github.com/pkg/errors"
)

var (
	ErrUnsupportedArchive = errors.New("unsupported archive type")
	ErrIllegalPath        = errors.New("illegal file path in archive")
)

type kind int

const (
	kindTar kind = iota
	kindTarGz
	kindTarZst
	kindZip
)

var suffixes = []struct {
	suffix string
	kind   kind
}{
	{".tar.gz", kindTarGz},
	{".tgz", kindTarGz},
	{".tar.zst", kindTarZst},
	{".tzst", kindTarZst},
	{".tar", kindTar},
	{".zip", kindZip},
}

func kindOf(path string) (kind, error) {
	lower := strings.ToLower(path)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s.suffix) {
			return s.kind, nil
		}
	}
	return 0, errors.Wrap(ErrUnsupportedArchive, filepath.Base(path))
}

// TrueStem - file name up to the first dot, so /data/W_XX-EUMETSAT.tar.gz gives W_XX-EUMETSAT
func TrueStem(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "."); i >= 0 {
		return base[:i]
	}
	return base
}

// manifest - stored next to each cache entry, lists what was extracted
type manifest struct {
	Source string   `json:"source"`
	SHA256 string   `json:"sha256"`
	Files  []string `json:"files"`
}

// Unpacker - extracts archives under CacheDir/<sha256 of the archive>. S3 is only needed for
// s3:// sources
type Unpacker struct {
	CacheDir string
	S3       s3iface.S3API
	Log      logger.ILogger

	fs fileaccess.FSAccess
}

func NewUnpacker(cacheDir string, s3Api s3iface.S3API, log logger.ILogger) *Unpacker {
	if log == nil {
		log = &logger.NullLogger{}
	}
	return &Unpacker{CacheDir: cacheDir, S3: s3Api, Log: log}
}

// Unpack - extracts the archive at src (local path or s3:// URL) unless an earlier run already
// did, and returns the sorted paths of the regular files in it
func (u *Unpacker) Unpack(src string) ([]string, error) {
	k, err := kindOf(src)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(u.CacheDir, 0o777); err != nil {
		return nil, errors.Wrapf(err, "Failed to create cache dir %v", u.CacheDir)
	}

	local, cleanup, err := u.fetch(src)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	sum, err := hashFile(local)
	if err != nil {
		return nil, err
	}

	dest := filepath.Join(u.CacheDir, sum)
	manifestName := sum + ".json"

	if files, ok := u.cached(dest, manifestName); ok {
		metrics.ArchiveCache.WithLabelValues("hit").Inc()
		u.Log.Debugf("Archive %v already unpacked in %v", src, dest)
		return files, nil
	}
	metrics.ArchiveCache.WithLabelValues("miss").Inc()

	tmp, err := os.MkdirTemp(u.CacheDir, sum+".tmp-")
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create extraction dir")
	}
	defer os.RemoveAll(tmp)

	rel, err := extract(local, k, tmp, u.Log)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to unpack %v", src)
	}

	// Anything left from a run that crashed before writing its manifest
	if err := os.RemoveAll(dest); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp, dest); err != nil {
		return nil, errors.Wrapf(err, "Failed to move unpacked files to %v", dest)
	}

	sort.Strings(rel)
	m := manifest{Source: src, SHA256: sum, Files: rel}
	if err := u.fs.WriteJSON(u.CacheDir, manifestName, &m); err != nil {
		return nil, err
	}

	u.Log.Infof("Unpacked %v files from %v into %v", len(rel), src, dest)
	return absPaths(dest, rel), nil
}

// cached - file list of an earlier extraction, if its manifest is there and every file
// still exists
func (u *Unpacker) cached(dest string, manifestName string) ([]string, bool) {
	m := manifest{}
	if err := u.fs.ReadJSON(u.CacheDir, manifestName, &m, false); err != nil {
		return nil, false
	}

	files := absPaths(dest, m.Files)
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			u.Log.Infof("Cached %v is missing, unpacking again", f)
			return nil, false
		}
	}
	return files, true
}

// fetch - local path of the archive, downloading it into the cache dir first if it's in S3
func (u *Unpacker) fetch(src string) (string, func(), error) {
	noop := func() {}
	if !fileaccess.IsS3Url(src) {
		return src, noop, nil
	}

	loc, err := fileaccess.Resolve(src, u.S3)
	if err != nil {
		return "", noop, err
	}

	data, err := loc.FS.ReadObject(loc.Bucket, loc.Path)
	if err != nil {
		return "", noop, errors.Wrapf(err, "Failed to download %v", src)
	}

	f, err := os.CreateTemp(u.CacheDir, "download-*-"+filepath.Base(loc.Path))
	if err != nil {
		return "", noop, err
	}
	_, err = f.Write(data)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(f.Name())
		return "", noop, errors.Wrapf(err, "Failed to save download of %v", src)
	}

	u.Log.Debugf("Downloaded %v (%v bytes)", src, len(data))
	return f.Name(), func() { os.Remove(f.Name()) }, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "Failed to open archive %v", path)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrapf(err, "Failed to read archive %v", path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func absPaths(dir string, rel []string) []string {
	result := make([]string, 0, len(rel))
	for _, r := range rel {
		result = append(result, filepath.Join(dir, filepath.FromSlash(r)))
	}
	return result
}
