// Lists the areas of the configured area files that cover a point:
//
//	find-areas --area-file areas.yaml --lon 9.5 --lat 47.2
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gerritholl/fcitools/core/area"
	"github.com/gerritholl/fcitools/core/config"
	"github.com/gerritholl/fcitools/core/services"
	"github.com/spf13/pflag"
)

func main() {
	flags := pflag.NewFlagSet("find-areas", pflag.ExitOnError)
	config.AddFlags(flags)
	lon := flags.Float64("lon", 0, "Longitude in degrees")
	lat := flags.Float64("lat", 0, "Latitude in degrees")
	showPixel := flags.Bool("pixel", false, "Also print the pixel containing the point")

	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatalf("%v", err)
	}
	if !flags.Changed("lon") || !flags.Changed("lat") {
		log.Fatalf("Parameters: lon and lat must be given")
	}

	if err := services.LoadDotEnv(); err != nil {
		log.Fatalf("%v", err)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if len(cfg.AreaFiles) == 0 {
		log.Fatalf("No area files configured, use --area-file or FCITOOLS_AREAFILES")
	}

	svcs, err := services.InitToolServices("find-areas", cfg)
	if err != nil {
		log.Fatalf("Failed to initialise: %v", err)
	}
	defer svcs.Close()

	idx, err := area.NewIndex(svcs.Areas)
	if err != nil {
		log.Fatalf("%v", err)
	}
	svcs.Log.Debugf("Indexed %v of %v areas", idx.Size(), len(svcs.Areas.Names()))

	for _, name := range idx.Covering(*lon, *lat) {
		if !*showPixel {
			fmt.Println(name)
			continue
		}

		a, err := svcs.Areas.Get(name)
		if err != nil {
			log.Fatalf("%v", err)
		}
		col, row, _ := a.PixelFor(*lon, *lat)
		fmt.Printf("%v\tcol=%v row=%v\n", name, col, row)
	}
}
