// Package render rasterizes a grid to a PNG image, one pixel per cell,
// scaled up nearest-neighbor so cell edges stay crisp.
package render

import (
	"fmt"
	"image"
	"io"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"

	"github.com/talgya/wavemap/internal/grid"
	"github.com/talgya/wavemap/internal/terrain"
)

// Image paints each resolved cell with its catalog color. Unresolved
// cells stay black, which makes partial (contradicted) grids obvious.
func Image(g *grid.Grid, catalog *terrain.Catalog, scale int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width(), g.Height()))

	for j := 0; j < g.Height(); j++ {
		for i := 0; i < g.Width(); i++ {
			cell := g.Cell(i, j)
			if !cell.Resolved {
				continue
			}
			img.SetRGBA(i, j, catalog.Color(cell.Category))
		}
	}

	if scale <= 1 {
		return img
	}
	return transform.Resize(img, g.Width()*scale, g.Height()*scale, transform.NearestNeighbor)
}

// WritePNG renders the grid and saves it to path.
func WritePNG(path string, g *grid.Grid, catalog *terrain.Catalog, scale int) error {
	if err := imgio.Save(path, Image(g, catalog, scale), imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("render: save %s: %w", path, err)
	}
	return nil
}

// EncodePNG renders the grid and writes PNG bytes to w. Used by the
// HTTP preview endpoint.
func EncodePNG(w io.Writer, g *grid.Grid, catalog *terrain.Catalog, scale int) error {
	enc := imgio.PNGEncoder()
	if err := enc(w, Image(g, catalog, scale)); err != nil {
		return fmt.Errorf("render: encode: %w", err)
	}
	return nil
}
