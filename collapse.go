package main

import (
	"fmt"
	"io"
	"strings"
)

// writeCollapsed emits "a;b;c self" for n and every descendant with non-zero
// self time, prefix being the frames above n.
func writeCollapsed(w io.Writer, n *profileNode, prefix []string) {
	frames := append(prefix[:len(prefix):len(prefix)], n.sample.name)
	if self := n.selfDuration(); self > 0 {
		fmt.Fprintf(w, "%s %d\n", strings.Join(frames, ";"), self)
	}
	for _, c := range n.children {
		writeCollapsed(w, c, frames)
	}
}

func cmdCollapse(w io.Writer, tr *trace) error {
	root, err := buildTree(tr)
	if err != nil {
		return err
	}
	for _, c := range root.children {
		writeCollapsed(w, c, nil)
	}
	return nil
}
