package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func Test_WriteTextfile(t *testing.T) {
	before := testutil.ToFloat64(ArchiveCache.WithLabelValues("hit"))
	ArchiveCache.WithLabelValues("hit").Inc()
	ImagesWritten.WithLabelValues("dataset").Add(2)
	ObserveRun("test", time.Now())

	if got := testutil.ToFloat64(ArchiveCache.WithLabelValues("hit")); got != before+1 {
		t.Errorf("Expected cache hits %v, got %v", before+1, got)
	}

	path := filepath.Join(t.TempDir(), "fcitools.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		`fcitools_archive_cache_total{result="hit"}`,
		`fcitools_images_written_total{kind="dataset"}`,
		`fcitools_run_duration_seconds_count{tool="test"} 1`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Expected %v in textfile:\n%v", want, string(data))
		}
	}
}
