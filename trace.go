package main

import (
	"fmt"
	"io"
	"strings"
)

// cmdTrace prints the hottest path through the merged call tree, below
// every scope matching scope or from the top level when scope is empty.
func cmdTrace(w io.Writer, tr *trace, scope string, minPct float64) error {
	root, err := buildTree(tr)
	if err != nil {
		return err
	}
	if tr.totalDuration == 0 {
		return fmt.Errorf("%w: total duration is zero", errZeroDivisor)
	}

	pt := aggregateDescendants(root, scope)
	if len(pt.entries) == 0 {
		fmt.Fprintf(w, "no scopes matching '%s'\n", scope)
		return nil
	}
	pt.printMatched(w)

	for _, r := range pt.roots() {
		traceHottestPath(w, pt, r.key, minPct)
	}
	return nil
}

// traceHottestPath walks from rootKey following the longest child at each
// level.
func traceHottestPath(w io.Writer, pt *pathTree, rootKey string, minPct float64) {
	key := rootKey
	indent := 0
	// siblingAnnotation is computed when we pick a child, then printed
	// on that child's line (the next iteration).
	siblingAnnotation := ""

	for {
		e := pt.entries[key]
		pct := pt.pct(e.duration)
		if pct < minPct {
			break
		}

		pad := strings.Repeat("  ", indent)
		children := pt.children(key, minPct)
		line := fmt.Sprintf("%s[%.1f%%] %s", pad, pct, e.name) + siblingAnnotation

		if len(children) == 0 {
			selfPct := pt.pct(e.self)
			if e.self > 0 && selfPct >= minPct {
				line += fmt.Sprintf("  ← self=%.1f%%", selfPct)
			}
			fmt.Fprintln(w, line)
			fmt.Fprintf(w, "Hottest leaf: %s (self=%.1f%%)\n", e.name, selfPct)
			break
		}

		fmt.Fprintln(w, line)

		hottest := children[0]
		siblingAnnotation = ""
		if len(children) > 1 {
			next := children[1]
			n := len(children) - 1
			word := "siblings"
			if n == 1 {
				word = "sibling"
			}
			siblingAnnotation = fmt.Sprintf("  (+%d %s, next: %.1f%% %s)", n, word, pt.pct(next.duration), next.name)
		}

		key = hottest.key
		indent++
	}
}
