// Package services builds the shared objects the command line tools run with, from a
// loaded ToolConfig.
package services

import (
	"os"
	"time"

	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/getsentry/sentry-go"
	"github.com/gerritholl/fcitools/core/archive"
	"github.com/gerritholl/fcitools/core/area"
	"github.com/gerritholl/fcitools/core/awsutil"
	"github.com/gerritholl/fcitools/core/coastline"
	"github.com/gerritholl/fcitools/core/config"
	"github.com/gerritholl/fcitools/core/fileaccess"
	"github.com/gerritholl/fcitools/core/geolocation"
	"github.com/gerritholl/fcitools/core/logger"
	"github.com/gerritholl/fcitools/core/metrics"
	"github.com/gerritholl/fcitools/core/vis"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Version - set at build time with -ldflags
var Version string

// ToolServices - everything a tool run needs, built once on startup
type ToolServices struct {
	// Configuration read in on startup
	Config config.ToolConfig

	// Default logger
	Log logger.ILogger

	// Anything talking to S3 should use this, nil if no session could be created
	S3 s3iface.S3API

	// Local file access, S3 locations go through fileaccess.Resolve
	FS fileaccess.FileAccess

	Areas      *area.Registry
	Unpacker   *archive.Unpacker
	Visualizer *vis.Visualizer
	Comparison *geolocation.Comparison

	tool    string
	started time.Time
	sentry  *logger.SentryLogger
}

// LoadDotEnv - reads .env from the working dir into the environment if there is one, so
// FCITOOLS_* and AWS_* settings can live there
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "Failed to load .env")
	}
	return nil
}

// InitToolServices - sets up logging, Sentry, S3 and the processing components for the named tool
func InitToolServices(tool string, cfg config.ToolConfig) (*ToolServices, error) {
	started := time.Now()

	stdLog := &logger.StdOutLogger{}
	stdLog.SetLogLevel(cfg.Level())

	var ourLogger logger.ILogger = stdLog
	var sentryLogger *logger.SentryLogger

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.EnvironmentName,
		Release:     Version,
	}); err != nil {
		ourLogger.Errorf("Sentry initialization failed: %v", err)
	} else if len(cfg.SentryDSN) > 0 {
		sentryLogger = logger.NewSentryLogger(stdLog)
		sentryLogger.Hub.Scope().SetTag("tool", tool)
		ourLogger = sentryLogger
	}

	// S3 is optional, local runs don't need credentials and only fail when an s3:// path is used
	var s3svc s3iface.S3API
	sess, err := awsutil.GetSessionWithRegion(cfg.AWSRegion)
	if err != nil {
		ourLogger.Infof("No AWS session, s3:// paths unavailable: %v", err)
	} else if s3svc, err = awsutil.GetS3(sess); err != nil {
		ourLogger.Infof("No S3 client, s3:// paths unavailable: %v", err)
		s3svc = nil
	}

	areas, err := area.LoadRegistry(&fileaccess.FSAccess{}, "", cfg.AreaFiles, ourLogger)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to load area definitions")
	}

	model, err := cfg.Model()
	if err != nil {
		return nil, err
	}
	comparison, err := geolocation.NewComparison(model, ourLogger)
	if err != nil {
		return nil, err
	}
	comparison.Scale = cfg.DistanceScale
	comparison.ChunkSize = cfg.ChunkSize
	comparison.Comparator.Workers = cfg.Workers

	fs := &fileaccess.FSAccess{}
	overlay := coastline.NewRenderer(fs, ourLogger)

	ourLogger.Debugf("%v: cache %v, reader %v, %v areas", tool, cfg.CacheDir, cfg.Reader, len(areas.Names()))

	return &ToolServices{
		Config:     cfg,
		Log:        ourLogger,
		S3:         s3svc,
		FS:         fs,
		Areas:      areas,
		Unpacker:   archive.NewUnpacker(cfg.CacheDir, s3svc, ourLogger),
		Visualizer: vis.NewVisualizer(cfg.Reader, overlay, s3svc, ourLogger),
		Comparison: comparison,
		tool:       tool,
		started:    started,
		sentry:     sentryLogger,
	}, nil
}

// Resolve - where a user supplied path or s3:// URL lives
func (svcs *ToolServices) Resolve(path string) (fileaccess.Location, error) {
	return fileaccess.Resolve(path, svcs.S3)
}

// Close - records the run duration, writes metrics if configured and flushes Sentry
func (svcs *ToolServices) Close() error {
	metrics.ObserveRun(svcs.tool, svcs.started)

	var result error
	if len(svcs.Config.MetricsFile) > 0 {
		if err := metrics.WriteTextfile(svcs.Config.MetricsFile); err != nil {
			result = errors.Wrapf(err, "Failed to write metrics to %v", svcs.Config.MetricsFile)
			svcs.Log.Errorf("%v", result)
		}
	}

	if svcs.sentry != nil {
		svcs.sentry.Flush(2 * time.Second)
	}
	return result
}
