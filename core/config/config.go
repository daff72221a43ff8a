// Package config holds the settings shared by the command line tools. Values come from
// defaults, an optional JSON/YAML config file, FCITOOLS_* environment variables and command
// line flags, later ones overriding earlier ones.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gerritholl/fcitools/core/geolocation"
	"github.com/gerritholl/fcitools/core/logger"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// GeolocationModelConfig - parameters of the geostationary geolocation model. GridParams is
// keyed by resolution in metres
type GeolocationModelConfig struct {
	EquatorialRadius float64
	Flattening       float64
	SatelliteHeight  float64
	SubSatelliteLon  float64
	GridParams       map[string]geolocation.GridParams
}

type ToolConfig struct {
	// Where unpacked archives are kept between runs
	CacheDir string

	// pyresample style area definition files, later ones override areas of earlier ones
	AreaFiles []string

	// Scene reader name
	Reader string

	FilenamePattern string

	// Block size and parallelism for grid processing, Workers <= 0 means one per CPU
	ChunkSize int
	Workers   int

	// Brightness per metre of geolocation difference, saturating at 1
	DistanceScale float64

	LogLevel string

	SentryDSN       string
	EnvironmentName string

	// If set, metrics are written here in node exporter textfile format at the end of a run
	MetricsFile string

	AWSRegion string

	GeolocationModel GeolocationModelConfig
}

// EnvPrefix - FCITOOLS_CACHEDIR sets CacheDir and so on
const EnvPrefix = "FCITOOLS"

// Flags bound to config keys, if the tool defines them
var flagKeys = map[string]string{
	"cache-dir":        "cachedir",
	"area-file":        "areafiles",
	"reader":           "reader",
	"filename-pattern": "filenamepattern",
	"chunk-size":       "chunksize",
	"workers":          "workers",
	"scale":            "distancescale",
	"log-level":        "loglevel",
	"metrics-file":     "metricsfile",
	"region":           "awsregion",
}

// FCI full disk grids: 22272, 11136 and 5568 pixels across for 500 m, 1 km and 2 km, scan
// angles proportional to distance from the disk centre at the sub-satellite point
const (
	fciHeight     = 35786400.0
	fciDiskExtent = 5567999.994203017
)

func defaultGridParams() map[string]interface{} {
	result := map[string]interface{}{}
	for _, n := range []int{22272, 11136, 5568} {
		pixelSize := 2 * fciDiskExtent / float64(n)
		res := int(pixelSize + 0.5)
		result[strconv.Itoa(res)] = map[string]interface{}{
			"azimuth_grid_sampling":   pixelSize / fciHeight,
			"elevation_grid_sampling": -pixelSize / fciHeight,
			"lambda":                  float64(n)/2 + 0.5,
			"phi":                     float64(n)/2 + 0.5,
		}
	}
	return result
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "fcitools")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("cachedir", defaultCacheDir())
	v.SetDefault("areafiles", []string{})
	v.SetDefault("reader", "fci_l1c_fdhsi")
	v.SetDefault("filenamepattern", "{area:s}_{dataset:s}.tiff")
	v.SetDefault("chunksize", 128)
	v.SetDefault("workers", 0)
	v.SetDefault("distancescale", geolocation.DefaultScale)
	v.SetDefault("loglevel", "INFO")
	v.SetDefault("sentrydsn", "")
	v.SetDefault("environmentname", "local")
	v.SetDefault("metricsfile", "")
	v.SetDefault("awsregion", "")
	v.SetDefault("geolocationmodel.equatorialradius", 6378137.0)
	v.SetDefault("geolocationmodel.flattening", 1/298.257223563)
	v.SetDefault("geolocationmodel.satelliteheight", fciHeight)
	v.SetDefault("geolocationmodel.subsatellitelon", 0.0)
	v.SetDefault("geolocationmodel.gridparams", defaultGridParams())
}

// AddFlags - defines the flags every tool shares, bound to config keys by Load
func AddFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Config file (JSON or YAML), default fcitools.yaml in the working or user config dir")
	flags.String("cache-dir", "", "Directory for unpacked archives")
	flags.StringSlice("area-file", nil, "Area definition YAML file, can be repeated")
	flags.String("reader", "", "Scene reader name")
	flags.Int("chunk-size", 0, "Block size for grid processing")
	flags.Int("workers", 0, "Parallel blocks, 0 for one per CPU")
	flags.String("log-level", "", "DEBUG, INFO or ERROR")
	flags.String("metrics-file", "", "Write metrics here in node exporter textfile format")
	flags.String("region", "", "AWS region for s3:// paths")
}

// NewConfigFromFile - config from the given file (JSON or YAML by extension) plus environment
func NewConfigFromFile(configFilePath string) (ToolConfig, error) {
	return load(configFilePath, nil)
}

// Load - config for a tool. The file comes from the --config flag if the tool has one and it's
// set, otherwise fcitools.yaml/.json in the working dir or the user config dir is used if present
func Load(flags *pflag.FlagSet) (ToolConfig, error) {
	configFile := ""
	if flags != nil {
		if f := flags.Lookup("config"); f != nil {
			configFile = f.Value.String()
		}
	}
	return load(configFile, flags)
}

func load(configFile string, flags *pflag.FlagSet) (ToolConfig, error) {
	var cfg ToolConfig

	v := viper.New()
	setDefaults(v)

	if len(configFile) > 0 {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return cfg, errors.Wrapf(err, "could not read config file at %v", configFile)
		}
	} else {
		v.SetConfigName("fcitools")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "fcitools"))
		}
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return cfg, errors.Wrap(err, "failed to parse config")
			}
		}
	}

	// FCITOOLS_GEOLOCATIONMODEL_SATELLITEHEIGHT -> geolocationmodel.satelliteheight
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for flagName, key := range flagKeys {
			if f := flags.Lookup(flagName); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return cfg, err
				}
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, errors.Wrap(err, "failed to parse config")
	}

	return cfg, cfg.Validate()
}

// Validate - checks values that would otherwise fail deep inside a run
func (c ToolConfig) Validate() error {
	problems := []string{}

	if len(c.CacheDir) == 0 {
		problems = append(problems, "CacheDir is required")
	}
	if c.ChunkSize <= 0 {
		problems = append(problems, fmt.Sprintf("ChunkSize must be positive, got %v", c.ChunkSize))
	}
	if !(c.DistanceScale > 0) {
		problems = append(problems, fmt.Sprintf("DistanceScale must be positive, got %v", c.DistanceScale))
	}
	if _, err := logger.LogLevelFromString(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := c.Model(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// Level - the configured log level
func (c ToolConfig) Level() logger.LogLevel {
	lvl, _ := logger.LogLevelFromString(c.LogLevel)
	return lvl
}

// Model - the configured geolocation model
func (c ToolConfig) Model() (*geolocation.GeosModel, error) {
	m := c.GeolocationModel
	grids := map[int]geolocation.GridParams{}
	for key, p := range m.GridParams {
		res, err := strconv.Atoi(key)
		if err != nil || res <= 0 {
			return nil, errors.Errorf("Invalid grid parameter resolution: %v", key)
		}
		grids[res] = p
	}

	return &geolocation.GeosModel{
		EquatorialRadius: m.EquatorialRadius,
		Flattening:       m.Flattening,
		SatelliteHeight:  m.SatelliteHeight,
		SubSatelliteLon:  m.SubSatelliteLon,
		Grids:            grids,
	}, nil
}

// Resolutions - configured grid resolutions, ascending
func (c ToolConfig) Resolutions() []int {
	result := []int{}
	for key := range c.GeolocationModel.GridParams {
		if res, err := strconv.Atoi(key); err == nil {
			result = append(result, res)
		}
	}
	sort.Ints(result)
	return result
}
