package renderer

import (
	"bytes"
	"fmt"
	"io"
)

// section writes a "## title" section to w only if block reports that it
// has something to say. The block writes the section body into a buffer.
func section(w io.Writer, title string, block func(io.Writer) bool) {
	var body bytes.Buffer
	if !block(&body) {
		return
	}
	fmt.Fprintf(w, "## %s\n\n", title)
	body.WriteTo(w)
	fmt.Fprintln(w)
}
