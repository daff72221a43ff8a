package archive

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gerritholl/fcitools/core/awsutil"
	"github.com/gerritholl/fcitools/core/metrics"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type entry struct {
	name string
	body string
}

var testEntries = []entry{
	{"file1.dat", "abcd"},
	{"file2.dat", "efgh"},
	{"sub/file3.dat", "ijkl"},
}

func tarBytes(t testing.TB, entries []entry) []byte {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	if err := tw.WriteHeader(&tar.Header{Name: "./", Typeflag: tar.TypeDir, Mode: 0o755}); err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if err := tw.WriteHeader(&tar.Header{Name: e.name, Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(e.body))}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(e.body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func writeArchive(t testing.TB, dir string, name string, entries []entry) string {
	var data []byte
	raw := tarBytes(t, entries)

	switch {
	case strings.HasSuffix(name, ".tar.gz"):
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		gz.Write(raw)
		gz.Close()
		data = buf.Bytes()
	case strings.HasSuffix(name, ".tar.zst"):
		var buf bytes.Buffer
		zw, err := zstd.NewWriter(&buf)
		if err != nil {
			t.Fatal(err)
		}
		zw.Write(raw)
		zw.Close()
		data = buf.Bytes()
	case strings.HasSuffix(name, ".zip"):
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		for _, e := range entries {
			w, err := zw.Create(e.name)
			if err != nil {
				t.Fatal(err)
			}
			w.Write([]byte(e.body))
		}
		w, _ := zw.Create("__MACOSX/._file1.dat")
		w.Write([]byte("junk"))
		zw.Close()
		data = buf.Bytes()
	default:
		data = raw
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func checkFiles(t *testing.T, files []string, cacheDir string) {
	if len(files) != len(testEntries) {
		t.Fatalf("Expected %v files, got %v", len(testEntries), files)
	}
	for i, e := range testEntries {
		if !strings.HasPrefix(files[i], cacheDir) || filepath.ToSlash(files[i])[len(files[i])-len(e.name):] != e.name {
			t.Errorf("Unexpected path %v for %v", files[i], e.name)
			continue
		}
		data, err := os.ReadFile(files[i])
		if err != nil {
			t.Errorf("Failed to read %v: %v", files[i], err)
		} else if string(data) != e.body {
			t.Errorf("%v contains %q, expected %q", files[i], data, e.body)
		}
	}
}

func Test_UnpackFormats(t *testing.T) {
	for _, name := range []string{"file.tar", "file.tar.gz", "file.tar.zst", "file.zip"} {
		t.Run(name, func(t *testing.T) {
			srcDir := t.TempDir()
			cacheDir := filepath.Join(t.TempDir(), "cache")
			path := writeArchive(t, srcDir, name, testEntries)

			u := NewUnpacker(cacheDir, nil, nil)
			files, err := u.Unpack(path)
			if err != nil {
				t.Fatal(err)
			}
			checkFiles(t, files, cacheDir)

			// Nothing but the entry and its manifest left in the cache
			entries, _ := os.ReadDir(cacheDir)
			if len(entries) != 2 {
				t.Errorf("Expected 2 cache entries, got %v", len(entries))
			}
		})
	}
}

func Test_UnpackUsesCache(t *testing.T) {
	srcDir := t.TempDir()
	cacheDir := t.TempDir()
	path := writeArchive(t, srcDir, "file.tar.gz", testEntries)
	u := NewUnpacker(cacheDir, nil, nil)

	hits := testutil.ToFloat64(metrics.ArchiveCache.WithLabelValues("hit"))
	misses := testutil.ToFloat64(metrics.ArchiveCache.WithLabelValues("miss"))

	first, err := u.Unpack(path)
	if err != nil {
		t.Fatal(err)
	}

	// Same content under another name is the same cache entry
	copyPath := filepath.Join(srcDir, "copy.tgz")
	data, _ := os.ReadFile(path)
	os.WriteFile(copyPath, data, 0o644)

	second, err := u.Unpack(copyPath)
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(first) != fmt.Sprint(second) {
		t.Errorf("Cached result differs: %v vs %v", first, second)
	}

	if got := testutil.ToFloat64(metrics.ArchiveCache.WithLabelValues("hit")) - hits; got != 1 {
		t.Errorf("Expected 1 cache hit, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.ArchiveCache.WithLabelValues("miss")) - misses; got != 1 {
		t.Errorf("Expected 1 cache miss, got %v", got)
	}

	// A deleted file means extracting again
	os.Remove(first[0])
	third, err := u.Unpack(path)
	if err != nil {
		t.Fatal(err)
	}
	checkFiles(t, third, cacheDir)
}

func Test_UnpackErrors(t *testing.T) {
	srcDir := t.TempDir()
	u := NewUnpacker(t.TempDir(), nil, nil)

	_, err := u.Unpack(filepath.Join(srcDir, "data.rar"))
	if !errors.Is(err, ErrUnsupportedArchive) {
		t.Errorf("Expected unsupported archive, got %v", err)
	}

	evil := writeArchive(t, srcDir, "evil.tar", []entry{{"ok.dat", "fine"}, {"../../evil.dat", "boo"}})
	_, err = u.Unpack(evil)
	if !errors.Is(err, ErrIllegalPath) {
		t.Errorf("Expected illegal path, got %v", err)
	}
	entries, _ := os.ReadDir(u.CacheDir)
	if len(entries) != 0 {
		t.Errorf("Failed unpack left %v entries in the cache", len(entries))
	}

	_, err = u.Unpack(filepath.Join(srcDir, "missing.tar.gz"))
	if err == nil {
		t.Errorf("Expected error for missing archive")
	}

	_, err = u.Unpack("s3://mtg-test-data/file.tar")
	if err == nil || err.Error() != "No S3 client available to access: s3://mtg-test-data/file.tar" {
		t.Errorf("Unexpected error without S3 client: %v", err)
	}
}

func Test_UnpackFromS3(t *testing.T) {
	var mockS3 awsutil.MockS3Client
	defer mockS3.FinishTest()

	mockS3.ExpGetObjectInput = []s3.GetObjectInput{
		{Bucket: aws.String("mtg-test-data"), Key: aws.String("archives/file.tar")},
	}
	mockS3.QueuedGetObjectOutput = []*s3.GetObjectOutput{
		{Body: io.NopCloser(bytes.NewReader(tarBytes(t, testEntries)))},
	}

	cacheDir := t.TempDir()
	u := NewUnpacker(cacheDir, &mockS3, nil)
	files, err := u.Unpack("s3://mtg-test-data/archives/file.tar")
	if err != nil {
		t.Fatal(err)
	}
	checkFiles(t, files, cacheDir)

	// Download removed again
	entries, _ := os.ReadDir(cacheDir)
	if len(entries) != 2 {
		t.Errorf("Expected 2 cache entries, got %v", len(entries))
	}
}

func Example_trueStem() {
	fmt.Println(TrueStem("/data/W_XX-EUMETSAT-Darmstadt_FCI-1C.tar.gz"))
	fmt.Println(TrueStem("file.tar"))
	fmt.Println(TrueStem("noext"))

	// Output:
	// W_XX-EUMETSAT-Darmstadt_FCI-1C
	// file
	// noext
}
