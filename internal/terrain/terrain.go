// Package terrain defines the terrain categories, their adjacency rules,
// and the domain set type used by the solver.
package terrain

import (
	"fmt"
	"image/color"
	"math/bits"
)

// Category is one terrain kind a cell can settle on.
type Category uint8

const (
	Sea Category = iota
	Beach
	Meadow
	Forest
	Mountains

	numCategories
)

// Name returns a human-readable name for a category.
func (c Category) Name() string {
	switch c {
	case Sea:
		return "Sea"
	case Beach:
		return "Beach"
	case Meadow:
		return "Meadow"
	case Forest:
		return "Forest"
	case Mountains:
		return "Mountains"
	default:
		return "Unknown"
	}
}

// Set is a bitset of categories. The zero value is the empty set.
type Set uint8

// NewSet builds a set from the given categories.
func NewSet(cats ...Category) Set {
	var s Set
	for _, c := range cats {
		s = s.With(c)
	}
	return s
}

// With returns the set with c added.
func (s Set) With(c Category) Set {
	return s | 1<<c
}

// Without returns the set with c removed.
func (s Set) Without(c Category) Set {
	return s &^ (1 << c)
}

// Has reports whether c is in the set.
func (s Set) Has(c Category) bool {
	return s&(1<<c) != 0
}

// Intersect returns the categories present in both sets.
func (s Set) Intersect(o Set) Set {
	return s & o
}

// Len returns the number of categories in the set.
func (s Set) Len() int {
	return bits.OnesCount8(uint8(s))
}

// Empty reports whether the set has no categories.
func (s Set) Empty() bool {
	return s == 0
}

// Members returns the categories in the set in enum order.
func (s Set) Members() []Category {
	out := make([]Category, 0, s.Len())
	for c := Category(0); c < numCategories; c++ {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Entry configures one category: which categories may sit next to it,
// how likely it is to be drawn, and how the renderer paints it.
type Entry struct {
	Category Category
	Compat   Set     // categories legal as an orthogonal neighbor
	Weight   float64 // positive selection weight
	Color    color.RGBA
}

// Catalog holds the static per-category configuration for a solve.
// It is built once and never mutated while an engine runs.
type Catalog struct {
	entries []Entry
	full    Set
}

// NewCatalog validates the entries and builds a catalog.
func NewCatalog(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("terrain: catalog has no categories")
	}

	var full Set
	for _, e := range entries {
		if e.Category >= numCategories {
			return nil, fmt.Errorf("terrain: unknown category %d", e.Category)
		}
		if full.Has(e.Category) {
			return nil, fmt.Errorf("terrain: duplicate entry for %s", e.Category.Name())
		}
		full = full.With(e.Category)
	}

	for _, e := range entries {
		if e.Compat.Empty() {
			return nil, fmt.Errorf("terrain: %s has an empty compatibility set", e.Category.Name())
		}
		if e.Compat.Intersect(full) != e.Compat {
			return nil, fmt.Errorf("terrain: %s allows a neighbor outside the catalog", e.Category.Name())
		}
		if e.Weight <= 0 {
			return nil, fmt.Errorf("terrain: %s has non-positive weight %v", e.Category.Name(), e.Weight)
		}
	}

	cat := &Catalog{
		entries: make([]Entry, len(entries)),
		full:    full,
	}
	copy(cat.entries, entries)
	return cat, nil
}

// Full returns the set of all categories in the catalog.
func (c *Catalog) Full() Set {
	return c.full
}

// Size returns the number of categories in the catalog.
func (c *Catalog) Size() int {
	return len(c.entries)
}

// Compat returns the compatibility set for cat.
func (c *Catalog) Compat(cat Category) Set {
	for _, e := range c.entries {
		if e.Category == cat {
			return e.Compat
		}
	}
	return 0
}

// Weight returns the selection weight for cat.
func (c *Catalog) Weight(cat Category) float64 {
	for _, e := range c.entries {
		if e.Category == cat {
			return e.Weight
		}
	}
	return 0
}

// Color returns the render color for cat.
func (c *Catalog) Color(cat Category) color.RGBA {
	for _, e := range c.entries {
		if e.Category == cat {
			return e.Color
		}
	}
	return color.RGBA{A: 255}
}

// Default returns the standard island catalog: a linear coastline
// progression sea-beach-meadow-forest-mountains where each category also
// neighbors itself.
func Default() *Catalog {
	cat, err := NewCatalog([]Entry{
		{
			Category: Sea,
			Compat:   NewSet(Sea, Beach),
			Weight:   3,
			Color:    color.RGBA{50, 120, 200, 255},
		},
		{
			Category: Beach,
			Compat:   NewSet(Sea, Beach, Meadow),
			Weight:   1,
			Color:    color.RGBA{240, 225, 160, 255},
		},
		{
			Category: Meadow,
			Compat:   NewSet(Beach, Meadow, Forest),
			Weight:   4,
			Color:    color.RGBA{120, 200, 80, 255},
		},
		{
			Category: Forest,
			Compat:   NewSet(Meadow, Forest, Mountains),
			Weight:   3,
			Color:    color.RGBA{30, 120, 50, 255},
		},
		{
			Category: Mountains,
			Compat:   NewSet(Forest, Mountains),
			Weight:   1,
			Color:    color.RGBA{130, 130, 140, 255},
		},
	})
	if err != nil {
		// The default catalog is fixed at compile time.
		panic(err)
	}
	return cat
}
