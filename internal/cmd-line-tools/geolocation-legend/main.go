// Writes the colour legend for geolocation comparison images:
//
//	geolocation-legend [flags] <output image>
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gerritholl/fcitools/core/fileaccess"
	"github.com/gerritholl/fcitools/core/geolocation"
	"github.com/gerritholl/fcitools/core/logger"
	"github.com/gerritholl/fcitools/core/services"
	"github.com/spf13/pflag"
)

func main() {
	fmt.Printf("Started: %v\n", time.Now().String())

	def := geolocation.DefaultLegendSpec()

	flags := pflag.NewFlagSet("geolocation-legend", pflag.ExitOnError)
	n := flags.Int("n", def.N, "Steps along each axis")
	angles := flags.Float64Slice("angles", []float64{def.Angles.Min, def.Angles.Max}, "Angle range in degrees: min,max")
	distances := flags.Float64Slice("distances", []float64{def.Distances.Min, def.Distances.Max}, "Distance range in metres: min,max")
	width := flags.Int("width", 640, "Image width")
	height := flags.Int("height", 480, "Image height")
	region := flags.String("region", "", "AWS region for s3:// output")

	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatalf("%v", err)
	}
	if flags.NArg() != 1 {
		log.Fatalf("Expected arguments: <output image>, got %v", flags.Args())
	}
	if len(*angles) != 2 || len(*distances) != 2 {
		log.Fatalf("Parameters: angles and distances need exactly 2 values")
	}

	if err := services.LoadDotEnv(); err != nil {
		log.Fatalf("%v", err)
	}

	iLog := &logger.StdOutLogger{}
	iLog.SetLogLevel(logger.LogInfo)

	spec := geolocation.LegendSpec{
		N:         *n,
		Angles:    geolocation.Range{Min: (*angles)[0], Max: (*angles)[1]},
		Distances: geolocation.Range{Min: (*distances)[0], Max: (*distances)[1]},
	}

	legend, err := geolocation.BuildLegend(spec)
	if err != nil {
		log.Fatalf("%v", err)
	}
	fig, err := legend.Plot()
	if err != nil {
		log.Fatalf("%v", err)
	}

	outPath := flags.Arg(0)
	var fs fileaccess.FileAccess = &fileaccess.FSAccess{}
	bucket, path := "", outPath
	if fileaccess.IsS3Url(outPath) {
		out, err := resolveS3(outPath, *region)
		if err != nil {
			log.Fatalf("%v", err)
		}
		fs, bucket, path = out.FS, out.Bucket, out.Path
	}

	if err := fig.Save(fs, bucket, path, *width, *height); err != nil {
		log.Fatalf("%v", err)
	}

	iLog.Infof("Legend for %+v written to %v", spec, outPath)
}
