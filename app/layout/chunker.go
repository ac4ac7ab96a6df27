// Package layout splits a product list into rows for one rendering pass.
//
// How products are grouped depends on the requested width. Each width maps to
// a Policy; widths without an explicit policy use sequential grouping.
package layout

import (
	"fmt"
	"math"

	"github.com/lysyi3m/grid-feeds/app/catalog"
)

// Row is one rendered unit: 1..N products, where N is the group size of the
// policy that produced it.
type Row []catalog.Product

type Policy interface {
	Group(products []catalog.Product, width int) []Row
	// GroupSize is the number of products a full row holds at width.
	GroupSize(width int) int
}

// Single puts every product in its own row.
type Single struct{}

func (Single) Group(products []catalog.Product, _ int) []Row {
	return split(products, 1)
}

func (Single) GroupSize(int) int {
	return 1
}

// Sequential groups products into rows of exactly width products; the last
// row holds the remainder.
type Sequential struct{}

func (Sequential) Group(products []catalog.Product, width int) []Row {
	return split(products, width)
}

func (Sequential) GroupSize(width int) int {
	return width
}

// SuperGroup combines Rows visual rows of width products into one unit, so a
// feed emits fewer items while each item still shows a width-wide grid.
type SuperGroup struct {
	Rows int
}

func (g SuperGroup) Group(products []catalog.Product, width int) []Row {
	return split(products, g.GroupSize(width))
}

// GroupSize saturates at math.MaxInt instead of overflowing.
func (g SuperGroup) GroupSize(width int) int {
	width, rows := max(width, 1), max(g.Rows, 1)
	if width > math.MaxInt/rows {
		return math.MaxInt
	}
	return width * rows
}

type Chunker struct {
	policies map[int]Policy
	fallback Policy
}

func NewChunker() *Chunker {
	return &Chunker{
		policies: map[int]Policy{1: Single{}},
		fallback: Sequential{},
	}
}

// NewChunkerWithGroups installs a SuperGroup policy for each width in groups,
// keyed by width and valued by the number of visual rows per unit.
func NewChunkerWithGroups(groups map[int]int) (*Chunker, error) {
	c := NewChunker()
	for width, rows := range groups {
		if width < 2 {
			return nil, fmt.Errorf("row groups need a width of at least 2, got %d", width)
		}
		if rows < 1 {
			return nil, fmt.Errorf("row group for width %d must combine at least 1 row, got %d", width, rows)
		}
		c.SetPolicy(width, SuperGroup{Rows: rows})
	}
	return c, nil
}

// SetPolicy overrides the policy for width. Width 1 always stays Single.
func (c *Chunker) SetPolicy(width int, policy Policy) {
	if width <= 1 {
		return
	}
	c.policies[width] = policy
}

func (c *Chunker) Policy(width int) Policy {
	if policy, ok := c.policies[width]; ok {
		return policy
	}
	return c.fallback
}

func (c *Chunker) Chunk(products []catalog.Product, width int) []Row {
	width = max(width, 1)
	return c.Policy(width).Group(products, width)
}

func split(products []catalog.Product, size int) []Row {
	if len(products) == 0 {
		return nil
	}
	size = max(size, 1)

	rows := make([]Row, 0, (len(products)-1)/size+1)
	for i := 0; i < len(products); {
		end := i + min(size, len(products)-i)
		row := make(Row, end-i)
		copy(row, products[i:end])
		rows = append(rows, row)
		i = end
	}
	return rows
}
