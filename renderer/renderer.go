// Package renderer renders the engine results as markdown.
//
// Amounts are rounded to the currency fraction here, and only here: the
// engine keeps every digit.
package renderer

import (
	"fmt"
	"io"
	"strings"
)

// table writes a markdown table with a header row. Columns aligned right
// are suffixed with ":" in align, e.g. "l", "r".
type table struct {
	w io.Writer
}

func newTable(w io.Writer, align string, headers ...string) table {
	fmt.Fprintf(w, "| %s |\n", strings.Join(headers, " | "))
	seps := make([]string, len(headers))
	for i := range headers {
		if i < len(align) && align[i] == 'r' {
			seps[i] = "---:"
		} else {
			seps[i] = ":---"
		}
	}
	fmt.Fprintf(w, "|%s|\n", strings.Join(seps, "|"))
	return table{w: w}
}

// Row writes one row of cells.
func (t table) Row(cells ...string) {
	fmt.Fprintf(t.w, "| %s |\n", strings.Join(cells, " | "))
}

// bold wraps s in markdown strong emphasis.
func bold(s string) string { return "**" + s + "**" }

// check returns the selection mark of a ticker.
func check(selected bool) string {
	if selected {
		return "[x]"
	}
	return "[ ]"
}
