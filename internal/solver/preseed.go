package solver

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/wavemap/internal/grid"
	"github.com/talgya/wavemap/internal/terrain"
)

// PreseedConfig narrows initial cell domains from a multi-octave
// simplex elevation field, so the solve grows continents instead of
// salt-and-pepper terrain. Bands overlap by one category, which keeps
// neighboring cells in adjacent bands mutually satisfiable under the
// default catalog. Hostile catalogs can still dead-end; that surfaces
// through the normal contradiction path.
type PreseedConfig struct {
	SeaLevel    float64 // elevation below this narrows toward sea
	MountainLvl float64 // elevation above this narrows toward mountains
	Octaves     int
	Frequency   float64
	Persistence float64
}

// DefaultPreseed returns elevation bands tuned for the default catalog.
func DefaultPreseed() *PreseedConfig {
	return &PreseedConfig{
		SeaLevel:    0.35,
		MountainLvl: 0.70,
		Octaves:     4,
		Frequency:   0.04,
		Persistence: 0.5,
	}
}

// applyPreseed intersects each cell's full domain with its elevation
// band. Narrowing is skipped for any cell where the band would empty
// the domain (the catalog may not contain the band's categories).
func applyPreseed(g *grid.Grid, catalog *terrain.Catalog, cfg *PreseedConfig, seed int64) {
	noise := opensimplex.NewNormalized(seed)

	low := terrain.NewSet(terrain.Sea, terrain.Beach)
	mid := terrain.NewSet(terrain.Beach, terrain.Meadow, terrain.Forest)
	high := terrain.NewSet(terrain.Meadow, terrain.Forest, terrain.Mountains)

	for j := 0; j < g.Height(); j++ {
		for i := 0; i < g.Width(); i++ {
			elev := octaveNoise(noise, float64(i), float64(j), cfg.Octaves, cfg.Frequency, cfg.Persistence)

			band := mid
			switch {
			case elev < cfg.SeaLevel:
				band = low
			case elev > cfg.MountainLvl:
				band = high
			}

			cell := g.Cell(i, j)
			narrowed := cell.Domain.Intersect(band)
			if !narrowed.Empty() {
				cell.Domain = narrowed
			}
		}
	}
}

// octaveNoise layers multiple noise frequencies into fractal elevation.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
