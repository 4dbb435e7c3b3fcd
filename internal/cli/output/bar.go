package output

import (
	"fmt"
	"strings"
)

// DefaultBarWidth is the number of cells in a bar.
const DefaultBarWidth = 20

// Bar renders n out of total as a fixed-width bar followed by the count,
// e.g. "██████░░░░ 3/6".
func Bar(n, total, width int) string {
	if width <= 0 {
		width = DefaultBarWidth
	}
	filled := 0
	if total > 0 && n > 0 {
		filled = width * n / total
		if filled > width {
			filled = width
		}
	}
	return fmt.Sprintf("%s%s %d/%d",
		strings.Repeat("█", filled),
		strings.Repeat("░", width-filled),
		n, total,
	)
}

// BarChart is a labelled set of bars sharing one total.
type BarChart struct {
	Total int
	Width int
	rows  [][2]string
}

// Add appends a labelled bar.
func (c *BarChart) Add(label string, n int) {
	c.rows = append(c.rows, [2]string{label, Bar(n, c.Total, c.Width)})
}

// Table returns the chart as a headerless table.
func (c *BarChart) Table() *Table {
	t := &Table{}
	for _, r := range c.rows {
		t.AddRow(r[0], r[1])
	}
	return t
}
