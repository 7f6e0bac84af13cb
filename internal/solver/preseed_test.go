package solver

import (
	"testing"

	"github.com/talgya/wavemap/internal/terrain"
)

func TestPreseedNarrowsWithoutEmptying(t *testing.T) {
	cat := terrain.Default()
	e := newEngine(t, Config{
		Width:   20,
		Height:  20,
		Catalog: cat,
		Seed:    42,
		Preseed: DefaultPreseed(),
	})

	g := e.Grid()
	for j := 0; j < g.Height(); j++ {
		for i := 0; i < g.Width(); i++ {
			c := g.Cell(i, j)
			if c.Domain.Empty() {
				t.Fatalf("preseed emptied domain at (%d,%d)", i, j)
			}
			if c.Domain.Intersect(cat.Full()) != c.Domain {
				t.Fatalf("preseed introduced foreign categories at (%d,%d)", i, j)
			}
		}
	}
}

func TestPreseedAllLowElevation(t *testing.T) {
	// With the sea level above the whole noise range every cell falls
	// into the low band and may only become sea or beach.
	ps := DefaultPreseed()
	ps.SeaLevel = 1.1

	e := newEngine(t, Config{
		Width:   10,
		Height:  10,
		Catalog: terrain.Default(),
		Seed:    7,
		Preseed: ps,
	})

	low := terrain.NewSet(terrain.Sea, terrain.Beach)
	g := e.Grid()
	for j := 0; j < g.Height(); j++ {
		for i := 0; i < g.Width(); i++ {
			d := g.Cell(i, j).Domain
			if d.Intersect(low) != d {
				t.Fatalf("cell (%d,%d) domain %v escapes the low band", i, j, d.Members())
			}
		}
	}

	// Sea and beach tolerate each other, so the solve must complete.
	if err := e.Solve(); err != nil {
		t.Fatalf("Solve: %v", err)
	}
}

func TestPreseedSkipsNarrowingOutsideCatalog(t *testing.T) {
	// A catalog without sea or beach cannot honor the low band; those
	// cells must keep their full domain instead of going empty.
	full := terrain.NewSet(terrain.Meadow, terrain.Forest)
	cat := mustCatalog(t, []terrain.Entry{
		{Category: terrain.Meadow, Compat: full, Weight: 1},
		{Category: terrain.Forest, Compat: full, Weight: 1},
	})

	ps := DefaultPreseed()
	ps.SeaLevel = 1.1 // force the low band everywhere

	e := newEngine(t, Config{Width: 6, Height: 6, Catalog: cat, Seed: 13, Preseed: ps})

	g := e.Grid()
	for j := 0; j < g.Height(); j++ {
		for i := 0; i < g.Width(); i++ {
			if got := g.Cell(i, j).Domain; got != full {
				t.Fatalf("cell (%d,%d) domain = %v, want untouched full set", i, j, got.Members())
			}
		}
	}
}
