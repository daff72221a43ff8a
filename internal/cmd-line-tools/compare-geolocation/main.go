// Compares the geolocation of a dataset in an archive of FCI test data with the geostationary
// geolocation model, writing an image where hue is the direction and brightness the size of the
// difference at each pixel:
//
//	compare-geolocation [flags] <archive> <dataset> <output image>
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gerritholl/fcitools/core/config"
	"github.com/gerritholl/fcitools/core/geolocation"
	"github.com/gerritholl/fcitools/core/scene"
	"github.com/gerritholl/fcitools/core/services"
	"github.com/spf13/pflag"
)

var t0 = time.Now().UnixMilli()

const (
	legendWidth  = 640
	legendHeight = 480
)

func main() {
	fmt.Printf("Started: %v\n", time.Now().String())

	flags := pflag.NewFlagSet("compare-geolocation", pflag.ExitOnError)
	config.AddFlags(flags)
	flags.Float64("scale", 0, "Brightness per metre of difference, saturating at 1")
	var bounds geolocation.PixelBounds
	flags.IntVar(&bounds.XStart, "x-start", 0, "First column, 1-based (0 for all)")
	flags.IntVar(&bounds.XEnd, "x-end", 0, "Column after the last (0 for all)")
	flags.IntVar(&bounds.YStart, "y-start", 0, "First row, 1-based (0 for all)")
	flags.IntVar(&bounds.YEnd, "y-end", 0, "Row after the last (0 for all)")
	legendPath := flags.String("legend", "", "Also write the colour legend to this path")

	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatalf("%v", err)
	}
	if flags.NArg() != 3 {
		log.Fatalf("Expected arguments: <archive> <dataset> <output image>, got %v", flags.Args())
	}
	archivePath, dataset, outPath := flags.Arg(0), flags.Arg(1), flags.Arg(2)

	if err := services.LoadDotEnv(); err != nil {
		log.Fatalf("%v", err)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		log.Fatalf("%v", err)
	}

	svcs, err := services.InitToolServices("compare-geolocation", cfg)
	if err != nil {
		log.Fatalf("Failed to initialise: %v", err)
	}

	files, err := svcs.Unpacker.Unpack(archivePath)
	if err != nil {
		fatalError(svcs, err)
	}

	sc, err := scene.Open(cfg.Reader, files, svcs.Log)
	if err != nil {
		fatalError(svcs, err)
	}
	if err := sc.Load([]string{dataset}); err != nil {
		fatalError(svcs, err)
	}

	field, err := svcs.Comparison.Compare(sc, dataset, bounds)
	if err != nil {
		fatalError(svcs, err)
	}

	out, err := svcs.Resolve(outPath)
	if err != nil {
		fatalError(svcs, err)
	}
	if err := geolocation.SaveRGB(out.FS, out.Bucket, out.Path, field); err != nil {
		fatalError(svcs, err)
	}
	fmt.Printf("Comparison written: %v\n", outPath)

	if len(*legendPath) > 0 {
		if err := writeLegend(svcs, *legendPath); err != nil {
			fatalError(svcs, err)
		}
		fmt.Printf("Legend written: %v\n", *legendPath)
	}

	svcs.Close()
	printFinishStats()
}

func writeLegend(svcs *services.ToolServices, path string) error {
	legend, err := geolocation.BuildLegend(geolocation.DefaultLegendSpec())
	if err != nil {
		return err
	}
	fig, err := legend.Plot()
	if err != nil {
		return err
	}

	out, err := svcs.Resolve(path)
	if err != nil {
		return err
	}
	return fig.Save(out.FS, out.Bucket, out.Path, legendWidth, legendHeight)
}

func fatalError(svcs *services.ToolServices, err error) {
	svcs.Log.Errorf("%v", err)
	svcs.Close()
	printFinishStats()
	log.Fatal(err)
}

func printFinishStats() {
	t1 := time.Now().UnixMilli()
	sec := (t1 - t0) / 1000
	fmt.Printf("Runtime %v seconds\n", sec)
}
