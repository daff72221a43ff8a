// Unpacks an archive of FCI test data and writes images of the requested channels and
// composites for each requested area:
//
//	show-testdata [flags] <archive> <outdir>
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gerritholl/fcitools/core/area"
	"github.com/gerritholl/fcitools/core/config"
	"github.com/gerritholl/fcitools/core/services"
	"github.com/gerritholl/fcitools/core/vis"
	"github.com/spf13/pflag"
)

var t0 = time.Now().UnixMilli()

func main() {
	fmt.Printf("Started: %v\n", time.Now().String())

	flags := pflag.NewFlagSet("show-testdata", pflag.ExitOnError)
	config.AddFlags(flags)
	composites := flags.StringSlice("composites", nil, "Composites to generate")
	channels := flags.StringSlice("channels", nil, "Channels to generate")
	areas := flags.StringSliceP("areas", "a", []string{area.Native}, "Areas to write, \"native\" for the data's own grid")
	flags.String("filename-pattern", "", "Output filename pattern with {area}, {dataset} and {label} fields")
	coastlineDir := flags.String("coastline-dir", "", "Directory of GeoJSON coastline files to draw over each image")
	onlyCoastlines := flags.Bool("only-coastlines", false, "Also write black, white and transparent images to show coastlines on")

	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatalf("%v", err)
	}
	if flags.NArg() != 2 {
		log.Fatalf("Expected arguments: <archive> <outdir>, got %v", flags.Args())
	}
	if len(*composites) == 0 && len(*channels) == 0 && !*onlyCoastlines {
		log.Fatalf("Parameter: composites or channels must be given")
	}

	if err := services.LoadDotEnv(); err != nil {
		log.Fatalf("%v", err)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		log.Fatalf("%v", err)
	}

	svcs, err := services.InitToolServices("show-testdata", cfg)
	if err != nil {
		log.Fatalf("Failed to initialise: %v", err)
	}

	written, err := svcs.Visualizer.UnpackAndShowTestdata(vis.UnpackRequest{
		Archive:         flags.Arg(0),
		Composites:      *composites,
		Channels:        *channels,
		Regions:         *areas,
		OutDir:          flags.Arg(1),
		FilenamePattern: cfg.FilenamePattern,
		CoastlineDir:    *coastlineDir,
		OnlyCoastlines:  *onlyCoastlines,
	}, svcs.Unpacker, svcs.Areas)

	if err != nil {
		svcs.Log.Errorf("Failed to show %v: %v", flags.Arg(0), err)
		fatalError(svcs, err)
	}

	fmt.Println("Files written:")
	for _, f := range written {
		fmt.Println(f)
	}

	svcs.Close()
	printFinishStats()
}

func fatalError(svcs *services.ToolServices, err error) {
	svcs.Close()
	printFinishStats()
	log.Fatal(err)
}

func printFinishStats() {
	t1 := time.Now().UnixMilli()
	sec := (t1 - t0) / 1000
	fmt.Printf("Runtime %v seconds\n", sec)
}
