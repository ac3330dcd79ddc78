package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ndimray/ndimray/camera"
	"github.com/ndimray/ndimray/geom"
	"github.com/ndimray/ndimray/kdtree"
	"github.com/ndimray/ndimray/linalg"
	"github.com/ndimray/ndimray/pixel"
	"github.com/ndimray/ndimray/render"
	"github.com/ndimray/ndimray/scene"
)

var (
	dimension       int
	width           int
	height          int
	fov             float64
	maxReflectDepth int
	threads         int
	outPath         string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a demo scene and write it as a PNG",
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().IntVar(&dimension, "dim", 3, "Scene dimension (>= 3)")
	renderCmd.Flags().IntVar(&width, "width", 640, "Output image width")
	renderCmd.Flags().IntVar(&height, "height", 480, "Output image height")
	renderCmd.Flags().Float64Var(&fov, "fov", 0.8, "Field of view, radians")
	renderCmd.Flags().IntVar(&maxReflectDepth, "max-reflect-depth", 4, "Maximum reflection recursion depth")
	renderCmd.Flags().IntVar(&threads, "threads", 0, "Worker threads (<=0 selects GOMAXPROCS)")
	renderCmd.Flags().StringVar(&outPath, "out", "out.png", "Output PNG path")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	if dimension < linalg.MinDimension {
		return fmt.Errorf("ndimray render: --dim=%d must be >= %d", dimension, linalg.MinDimension)
	}

	sc, err := demoScene(dimension, fov, maxReflectDepth, logger)
	if err != nil {
		return fmt.Errorf("ndimray render: building scene: %w", err)
	}

	format := pixel.ImageFormat{
		Channels: []pixel.Channel{
			{BitSize: 8, RCoeff: 1},
			{BitSize: 8, GCoeff: 1},
			{BitSize: 8, BCoeff: 1},
		},
		Width:  width,
		Height: height,
	}
	dest := make([]byte, format.RowPitch()*format.Height)

	instr := &render.SlogInstrumentation{Logger: logger}
	r := render.NewBlockingRenderer(threads, instr)

	start := time.Now()
	logger.Info("render starting", "dimension", dimension, "width", width, "height", height)
	completed, err := r.Render(dest, format, sc)
	if err != nil {
		return fmt.Errorf("ndimray render: %w", err)
	}
	logger.Info("render finished", "completed", completed, "elapsed", time.Since(start))

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	pitch := format.RowPitch()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := y*pitch + x*3
			img.SetNRGBA(x, y, color.NRGBA{R: dest[off], G: dest[off+1], B: dest[off+2], A: 255})
		}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("ndimray render: creating %s: %w", outPath, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("ndimray render: encoding PNG: %w", err)
	}

	fmt.Printf("wrote %s (%dx%d, dimension=%d)\n", outPath, width, height, dimension)
	return nil
}

// demoScene builds a fixed scene in dimension d: a reflective hypersphere
// at the origin, a diffuse hypercube offset along the "up" axis, one point
// light and one global light, viewed from -3 along the forward axis.
func demoScene(d int, fov float64, maxReflectDepth int, logger *slog.Logger) (*scene.Scene, error) {
	neg10 := make([]linalg.Real, d)
	pos10 := make([]linalg.Real, d)
	for i := range neg10 {
		neg10[i] = -10
		pos10[i] = 10
	}
	boundsMin, err := linalg.VectorFromValues(neg10)
	if err != nil {
		return nil, err
	}
	boundsMax, err := linalg.VectorFromValues(pos10)
	if err != nil {
		return nil, err
	}

	sphereMat := geom.Material{
		Color:             linalg.Color{R: 0.8, G: 0.1, B: 0.1},
		Specular:          linalg.Color{R: 1, G: 1, B: 1},
		Opacity:           1,
		Reflectivity:      0.4,
		SpecularIntensity: 1,
		SpecularExp:       32,
	}
	sphere, err := geom.NewSolid(geom.Sphere, linalg.Identity(d), linalg.NewVector(d), sphereMat)
	if err != nil {
		return nil, err
	}

	cubeMat := geom.Material{
		Color:             linalg.Color{R: 0.1, G: 0.3, B: 0.8},
		Specular:          linalg.Color{R: 1, G: 1, B: 1},
		Opacity:           1,
		SpecularIntensity: 0.5,
		SpecularExp:       8,
	}
	cubePos, err := linalg.Axis(d, 1, 3)
	if err != nil {
		return nil, err
	}
	cube, err := geom.NewSolid(geom.Cube, linalg.Identity(d), cubePos, cubeMat)
	if err != nil {
		return nil, err
	}

	solids := []geom.SolidPrototype{geom.NewSolidPrototype(sphere), geom.NewSolidPrototype(cube)}
	tree, err := kdtree.Build(solids, nil, kdtree.BuildOptions{Logger: logger})
	if err != nil {
		return nil, err
	}

	sc, err := scene.New(boundsMin, boundsMax, tree)
	if err != nil {
		return nil, err
	}

	camOrigin, err := linalg.Axis(d, 2, -3)
	if err != nil {
		return nil, err
	}
	cam, err := camera.New(d)
	if err != nil {
		return nil, err
	}
	cam.Origin = camOrigin
	sc.Camera = cam

	sc.FOV = linalg.Real(fov)
	sc.MaxReflectDepth = maxReflectDepth
	sc.Shadows = true
	sc.CameraLight = false
	sc.Ambient = linalg.Color{R: 0.05, G: 0.05, B: 0.05}
	sc.BG1 = linalg.Color{R: 0.4, G: 0.6, B: 0.9}
	sc.BG2 = linalg.Color{R: 0.1, G: 0.1, B: 0.2}
	sc.BG3 = linalg.Color{R: 0.02, G: 0.02, B: 0.05}
	sc.BGAxis = 2

	lightPos, err := linalg.Axis(d, 2, -5)
	if err != nil {
		return nil, err
	}
	sc.PointLights = append(sc.PointLights, scene.PointLight{
		Position: lightPos,
		Color:    linalg.Color{R: 1, G: 1, B: 1},
	})
	globalDir, err := linalg.Axis(d, 1, -1)
	if err != nil {
		return nil, err
	}
	sc.GlobalLights = append(sc.GlobalLights, scene.GlobalLight{
		Direction: globalDir,
		Color:     linalg.Color{R: 0.3, G: 0.3, B: 0.3},
	})

	return sc, nil
}
