package imageedit

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/gerritholl/fcitools/core/grid"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

func Example_floatToByte() {
	for _, v := range []float64{0, 0.5, 0.999, 1, 1.5, -0.2, math.NaN()} {
		fmt.Printf("%v ", FloatToByte(v))
	}
	fmt.Println()

	// Output:
	// 0 127 254 255 255 0 0
}

func Example_formatFromPath() {
	for _, p := range []string{"a.png", "b.JPG", "c.jpeg", "d.tif", "e.tiff", "f.bmp", "g.gif", "noext"} {
		f, err := FormatFromPath(p)
		fmt.Printf("%v|%v\n", f, err)
	}

	// Output:
	// png|<nil>
	// jpeg|<nil>
	// jpeg|<nil>
	// tiff|<nil>
	// tiff|<nil>
	// bmp|<nil>
	// |unknown image file extension: ".gif" in g.gif
	// |unknown image file extension: "" in noext
}

func Example_rgbFloatToImage() {
	img, err := RGBFloatToImage(1, 2, []float64{1, 0, 0.5, 0, 1, 0.25})
	fmt.Println(err, img.Bounds(), img.RGBAAt(0, 0), img.RGBAAt(1, 0))

	_, err = RGBFloatToImage(2, 2, []float64{1})
	fmt.Println(err)

	// Output:
	// <nil> (0,0)-(2,1) {255 0 127 255} {0 255 63 255}
	// RGB data has 1 values, expected 12 for 2x2
}

func Example_greyFromGrid() {
	g, _ := grid.FromRows([][]float64{{0, 5, 10}, {math.NaN(), -3, 20}})
	img := GreyFromGrid(g, 0, 10)
	fmt.Println(img.Pix)

	flat := GreyFromGrid(g, 3, 3)
	fmt.Println(flat.Pix)

	alpha := GreyAlphaFromGrid(g, 0, 10)
	fmt.Println(alpha.NRGBAAt(1, 0), alpha.NRGBAAt(0, 1))

	// Output:
	// [0 127 255 0 0 255]
	// [0 255 255 0 0 255]
	// {127 127 127 255} {0 0 0 0}
}

func Example_encodeRoundTrip() {
	img, _ := RGBFloatToImage(2, 2, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1, 1, 1, 1})

	b, err := GetImageBytesForPath(img, "out.png")
	fmt.Println(err)
	decoded, err := png.Decode(bytes.NewReader(b))
	fmt.Println(err, decoded.Bounds(), color.RGBAModel.Convert(decoded.At(1, 0)))

	b, err = GetImageBytes(img, "tiff")
	fmt.Println(err)
	decoded, err = tiff.Decode(bytes.NewReader(b))
	fmt.Println(err, decoded.Bounds(), color.RGBAModel.Convert(decoded.At(0, 1)))

	_, err = GetImageBytes(img, "gif")
	fmt.Println(err)

	// Output:
	// <nil>
	// <nil> (0,0)-(2,2) {0 255 0 255}
	// <nil>
	// <nil> (0,0)-(2,2) {0 0 255 255}
	// unexpected image format: gif
}

func Example_markPixels() {
	g, _ := grid.FromRows([][]float64{{0, 0}, {0, 0}})
	base := GreyFromGrid(g, 0, 1)

	mask := image.NewAlpha(image.Rect(0, 0, 2, 2))
	mask.SetAlpha(1, 0, color.Alpha{A: 255})

	out := MarkPixels(base, mask, color.RGBA{R: 255, G: 255, A: 255})
	fmt.Println(color.RGBAModel.Convert(out.At(0, 0)), color.RGBAModel.Convert(out.At(1, 0)))

	// Output:
	// {0 0 0 255} {255 255 0 255}
}

func Example_scaleImageTo() {
	img, _ := RGBFloatToImage(1, 2, []float64{1, 0, 0, 0, 0, 1})
	scaled := ScaleImageTo(img, 4, 2, draw.NearestNeighbor)
	fmt.Println(scaled.Bounds(), scaled.RGBAAt(0, 1), scaled.RGBAAt(3, 0))

	// Output:
	// (0,0)-(4,2) {255 0 0 255} {0 0 255 255}
}
