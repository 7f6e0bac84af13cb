// Package solver implements the constraint-propagation solve loop:
// minimum-entropy selection, weighted commitment with local retry, and
// neighbor domain shrinkage. It never backtracks across committed
// cells; a cell whose every remaining candidate would strand a
// neighbor surfaces as a contradiction and the driver restarts with a
// fresh grid.
package solver

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/talgya/wavemap/internal/grid"
	"github.com/talgya/wavemap/internal/terrain"
)

// ErrContradiction is returned by Solve when a cell's domain is
// exhausted before any category can be committed.
var ErrContradiction = errors.New("solver: contradiction - no valid category for cell")

// StepKind classifies the outcome of one Step call.
type StepKind uint8

const (
	StepCommitted StepKind = iota // a cell was committed this step
	StepComplete                  // no unresolved cell remains
	StepContradiction             // a domain was exhausted; terminal
)

// StepResult reports what a Step call did. I, J, and Category are only
// meaningful when Kind is StepCommitted, so a renderer can redraw just
// the affected cell.
type StepResult struct {
	Kind     StepKind
	I, J     int
	Category terrain.Category
}

// Config holds the static parameters for one solve.
type Config struct {
	Width, Height int
	Catalog       *terrain.Catalog
	Seed          int64          // 0 picks a time-based seed
	Preseed       *PreseedConfig // nil disables the noise preseed
}

// Engine owns the grid exclusively for the duration of a solve. It is
// single-threaded: callers invoke Step repeatedly and observe cell
// state only between calls.
type Engine struct {
	grid     *grid.Grid
	catalog  *terrain.Catalog
	rng      *rand.Rand
	seed     int64
	terminal bool
	last     StepResult

	candidates [][2]int // tie-break scratch, reused across steps
}

// New validates the configuration and creates an engine with every
// cell's domain at the full category set.
func New(cfg Config) (*Engine, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("solver: invalid grid size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("solver: nil catalog")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Engine{
		grid:    grid.New(cfg.Width, cfg.Height, cfg.Catalog.Full()),
		catalog: cfg.Catalog,
		rng:     rand.New(rand.NewSource(seed)),
		seed:    seed,
	}

	if cfg.Preseed != nil {
		applyPreseed(e.grid, cfg.Catalog, cfg.Preseed, seed)
	}

	return e, nil
}

// Seed returns the seed actually used, for reproducing a run.
func (e *Engine) Seed() int64 { return e.seed }

// Grid returns the engine's grid. Callers must only read it between
// Step calls; the engine retains exclusive ownership.
func (e *Engine) Grid() *grid.Grid { return e.grid }

// CategoryAt returns the committed category at (i, j), or false while
// the cell is unresolved.
func (e *Engine) CategoryAt(i, j int) (terrain.Category, bool) {
	c := e.grid.Cell(i, j)
	return c.Category, c.Resolved
}

// Step advances the solve by at most one committed cell. After a
// StepComplete or StepContradiction result the engine is terminal and
// further calls return the same result.
func (e *Engine) Step() StepResult {
	if e.terminal {
		return e.last
	}

	i, j, ok := e.pick()
	if !ok {
		return e.finish(StepResult{Kind: StepComplete})
	}

	cell := e.grid.Cell(i, j)
	for !cell.Domain.Empty() {
		cat := e.draw(cell.Domain)
		if !e.viable(i, j, cat) {
			// Invalid draws are removed permanently so they are
			// never retried for this cell.
			cell.Domain = cell.Domain.Without(cat)
			continue
		}

		cell.Resolved = true
		cell.Category = cat
		cell.Domain = 0
		e.propagate(i, j, cat)
		return StepResult{Kind: StepCommitted, I: i, J: j, Category: cat}
	}

	return e.finish(StepResult{Kind: StepContradiction, I: i, J: j})
}

// Solve runs Step until the engine is terminal. Returns
// ErrContradiction if the solve dead-ended.
func (e *Engine) Solve() error {
	for {
		switch e.Step().Kind {
		case StepComplete:
			return nil
		case StepContradiction:
			return ErrContradiction
		}
	}
}

func (e *Engine) finish(r StepResult) StepResult {
	e.terminal = true
	e.last = r
	return r
}

// pick scans for the minimum entropy among unresolved cells and
// chooses uniformly among the ties. Without randomized tie-breaking,
// scan order produces visible directional bias in the terrain.
func (e *Engine) pick() (int, int, bool) {
	min := e.catalog.Size() + 1
	e.candidates = e.candidates[:0]

	for j := 0; j < e.grid.Height(); j++ {
		for i := 0; i < e.grid.Width(); i++ {
			if e.grid.Cell(i, j).Resolved {
				continue
			}
			ent := e.grid.Entropy(i, j)
			switch {
			case ent < min:
				min = ent
				e.candidates = e.candidates[:0]
				e.candidates = append(e.candidates, [2]int{i, j})
			case ent == min:
				e.candidates = append(e.candidates, [2]int{i, j})
			}
		}
	}

	if len(e.candidates) == 0 {
		return 0, 0, false
	}
	c := e.candidates[e.rng.Intn(len(e.candidates))]
	return c[0], c[1], true
}

// draw picks one category from the domain with probability proportional
// to its configured weight.
func (e *Engine) draw(domain terrain.Set) terrain.Category {
	members := domain.Members()

	total := 0.0
	for _, c := range members {
		total += e.catalog.Weight(c)
	}

	r := e.rng.Float64() * total
	cum := 0.0
	for _, c := range members {
		cum += e.catalog.Weight(c)
		if r <= cum {
			return c
		}
	}
	// Float round-off can leave r a hair above the final cumulative sum.
	return members[len(members)-1]
}

// viable reports whether committing cat at (i, j) leaves every
// unresolved neighbor with a non-empty domain. Resolved neighbors are
// checked in the symmetric direction: cat must allow them back.
func (e *Engine) viable(i, j int, cat terrain.Category) bool {
	compat := e.catalog.Compat(cat)
	for _, n := range e.grid.Neighbors(i, j) {
		nc := e.grid.Cell(n[0], n[1])
		if nc.Resolved {
			if !compat.Has(nc.Category) {
				return false
			}
			continue
		}
		if nc.Domain.Intersect(compat).Empty() {
			return false
		}
	}
	return true
}

// propagate intersects each unresolved neighbor's domain with the
// committed category's compatibility set. Only direct neighbors are
// touched; shrinkage ripples outward over subsequent steps as those
// neighbors are themselves selected.
func (e *Engine) propagate(i, j int, cat terrain.Category) {
	compat := e.catalog.Compat(cat)
	for _, n := range e.grid.Neighbors(i, j) {
		nc := e.grid.Cell(n[0], n[1])
		if nc.Resolved {
			continue
		}
		nc.Domain = nc.Domain.Intersect(compat)
	}
}
