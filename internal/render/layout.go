package render

import (
	"strings"

	"ability-lst/internal/textutil"
)

// TabSize is the editor tab width the columns are laid out for.
const TabSize = 6

// Column widths, in tabs.
const (
	NameWidth    = 6
	KeyWidth     = 6
	TypeWidth    = 4
	AlignWidth   = 5
	RaceWidth    = 4
	FeatsWidth   = 11
	ModKeyWidth  = 11
	ModTypeWidth = 5
)

// Span returns how many padding tabs token needs to fill a column of width
// tabs, and how many tabs it overflows the column by.
func Span(token string, width int) (tabs, excess int) {
	n := textutil.Width(strings.TrimSpace(token))
	tabs = width - n/TabSize
	if n > width*TabSize {
		excess = n/TabSize - width
	}
	return tabs, excess
}

// Columns builds one tab-aligned line. Overflowing fields add to an excess
// ledger that later padding pays back one tab at a time, so columns further
// right line up again.
type Columns struct {
	b      strings.Builder
	excess int
}

func (c *Columns) Write(s string) { c.b.WriteString(s) }

// Tabs writes n tabs; negative counts write nothing.
func (c *Columns) Tabs(n int) {
	if n > 0 {
		c.b.WriteString(strings.Repeat("\t", n))
	}
}

// Pad writes up to n tabs, first using the ledger to drop tabs down to floor.
func (c *Columns) Pad(n, floor int) {
	for n > floor && c.excess > 0 {
		n--
		c.excess--
	}
	c.Tabs(n)
}

// AddExcess records overflow that later padding should absorb.
func (c *Columns) AddExcess(n int) { c.excess += n }

// Excess is the outstanding ledger.
func (c *Columns) Excess() int { return c.excess }

// Field writes a tab, token and the padding that fills its column.
func (c *Columns) Field(token string, width int) {
	tabs, excess := Span(token, width)
	c.excess += excess
	c.Write("\t" + token)
	c.Pad(tabs, 0)
}

// Fill writes token followed by its padding, without a leading tab.
func (c *Columns) Fill(token string, width int) {
	tabs, excess := Span(token, width)
	c.excess += excess
	c.Write(token)
	c.Pad(tabs, 0)
}

func (c *Columns) String() string { return c.b.String() }
