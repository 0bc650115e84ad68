package main

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"
)

const rootName = "root"

// profileNode is one sample placed in the reconstructed hierarchy. A node
// owns its children; they are kept in attach order, which is start order.
type profileNode struct {
	sample   sample
	children []*profileNode
}

var errUncontained = errors.New("sample not contained by any open scope")

// buildTree reconstructs the call hierarchy of tr. The returned root is
// synthetic: it starts with the earliest sample and spans the trace's total
// duration.
//
// Samples are visited in (start asc, duration desc) order so that of two
// samples opening at the same instant the longer one becomes the parent.
// A stack holds the currently open scopes; a sample attaches to the
// innermost open scope that has not ended by the time it starts, and every
// scope that has ended is closed on the way. Each sample is pushed once, so
// the pass is linear after the sort.
func buildTree(tr *trace) (*profileNode, error) {
	if len(tr.samples) == 0 {
		return nil, errEmptyTrace
	}

	sorted := make([]sample, len(tr.samples))
	copy(sorted, tr.samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].start != sorted[j].start {
			return sorted[i].start < sorted[j].start
		}
		return sorted[i].duration > sorted[j].duration
	})

	root := &profileNode{sample: sample{
		name:     rootName,
		start:    sorted[0].start,
		duration: tr.totalDuration,
	}}

	type openScope struct {
		node *profileNode
		end  int64
	}
	stack := []openScope{{root, root.sample.end()}}

	for _, s := range sorted {
		for len(stack) > 0 && s.start >= stack[len(stack)-1].end {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			return nil, fmt.Errorf("%w: %q starts at %d, trace ends at %d",
				errUncontained, s.name, s.start, root.sample.end())
		}
		parent := stack[len(stack)-1].node
		child := &profileNode{sample: s}
		parent.children = append(parent.children, child)
		stack = append(stack, openScope{child, s.end()})
	}

	log.WithFields(logrus.Fields{
		"samples": len(sorted),
		"depth":   root.maxDepth(),
	}).Debug("tree reconstructed")
	return root, nil
}

// ---------------------------------------------------------------------------
// Node helpers
// ---------------------------------------------------------------------------

// selfDuration is the node's duration not covered by its children, clamped
// at zero for children that overrun their parent.
func (n *profileNode) selfDuration() int64 {
	self := n.sample.duration
	for _, c := range n.children {
		self -= c.sample.duration
	}
	if self < 0 {
		return 0
	}
	return self
}

// count returns the number of nodes in the subtree, n included.
func (n *profileNode) count() int {
	total := 1
	for _, c := range n.children {
		total += c.count()
	}
	return total
}

// maxDepth returns the depth of the deepest descendant; a leaf has depth 0.
func (n *profileNode) maxDepth() int {
	deepest := 0
	for _, c := range n.children {
		if d := c.maxDepth() + 1; d > deepest {
			deepest = d
		}
	}
	return deepest
}

// scopeMatch is a subtree selected by --scope, together with the duration of
// the node it hangs off so that self percentages stay relative to the real
// parent.
type scopeMatch struct {
	node           *profileNode
	parentDuration int64
}

// findScopes returns the outermost nodes whose name matches pattern, in
// pre-order. A match is not searched further for nested matches.
func findScopes(root *profileNode, pattern string) []scopeMatch {
	var matches []scopeMatch
	var walk func(n *profileNode, parentDuration int64)
	walk = func(n *profileNode, parentDuration int64) {
		if matchesScope(n.sample.name, pattern) {
			matches = append(matches, scopeMatch{n, parentDuration})
			return
		}
		for _, c := range n.children {
			walk(c, n.sample.duration)
		}
	}
	for _, c := range root.children {
		walk(c, root.sample.duration)
	}
	return matches
}

func cmdTree(w io.Writer, tr *trace, scope string, opts treeOpts, asJSON bool) error {
	root, err := buildTree(tr)
	if err != nil {
		return err
	}
	if scope == "" {
		if asJSON {
			return printTreeJSON(w, root, tr.totalDuration)
		}
		return printTree(w, root, tr.totalDuration, opts)
	}

	matches := findScopes(root, scope)
	if len(matches) == 0 {
		fmt.Fprintf(w, "no scopes matching '%s'\n", scope)
		return nil
	}
	if asJSON {
		return printScopesJSON(w, matches, tr.totalDuration)
	}
	return printScopes(w, matches, tr.totalDuration, opts)
}
