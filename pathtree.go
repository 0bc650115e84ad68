package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// pathEntry is one node of a path tree: a scope name reached through a
// particular chain of parents.
type pathEntry struct {
	name     string
	parent   string // key of the parent entry, "" for a root
	duration int64
	self     int64
}

// pathTree holds path-aggregated durations for callers/trace display.
// Keys are the concatenation of the quoted names along the path, so any
// scope name, ";" included, maps to exactly one key.
type pathTree struct {
	entries       map[string]*pathEntry
	matchedNames  map[string]bool
	totalDuration int64
}

func newPathTree(total int64) *pathTree {
	return &pathTree{
		entries:       make(map[string]*pathEntry),
		matchedNames:  make(map[string]bool),
		totalDuration: total,
	}
}

func childKey(parent, name string) string {
	return parent + strconv.Quote(name)
}

// entry returns the entry for name under parent, creating it if needed.
func (pt *pathTree) entry(parent, name string) (string, *pathEntry) {
	key := childKey(parent, name)
	e, ok := pt.entries[key]
	if !ok {
		e = &pathEntry{name: name, parent: parent}
		pt.entries[key] = e
	}
	return key, e
}

// add credits d to every prefix of path.
func (pt *pathTree) add(path []string, d int64) {
	key := ""
	for _, name := range path {
		var e *pathEntry
		key, e = pt.entry(key, name)
		e.duration += d
	}
}

// aggregateCallers builds an inverted tree for every node matching scope:
// the matched node first, then its parent, up to the outermost real scope.
// Each path is weighted by the matched node's duration.
func aggregateCallers(root *profileNode, scope string) *pathTree {
	pt := newPathTree(root.sample.duration)
	var ancestors []string
	var walk func(n *profileNode)
	walk = func(n *profileNode) {
		if matchesScope(n.sample.name, scope) {
			pt.matchedNames[n.sample.name] = true
			path := make([]string, 0, len(ancestors)+1)
			path = append(path, n.sample.name)
			for k := len(ancestors) - 1; k >= 0; k-- {
				path = append(path, ancestors[k])
			}
			pt.add(path, n.sample.duration)
			// nested matches are already covered by this one
			return
		}
		ancestors = append(ancestors, n.sample.name)
		for _, c := range n.children {
			walk(c)
		}
		ancestors = ancestors[:len(ancestors)-1]
	}
	for _, c := range root.children {
		walk(c)
	}
	return pt
}

// aggregateDescendants folds the subtrees under every node matching scope
// (or the whole tree when scope is empty) into a path tree keyed by name
// paths, so repeated invocations of the same call chain merge.
func aggregateDescendants(root *profileNode, scope string) *pathTree {
	pt := newPathTree(root.sample.duration)
	var find func(n *profileNode)
	find = func(n *profileNode) {
		if scope == "" || matchesScope(n.sample.name, scope) {
			pt.matchedNames[n.sample.name] = true
			foldPath(pt, n, "")
			return
		}
		for _, c := range n.children {
			find(c)
		}
	}
	for _, c := range root.children {
		find(c)
	}
	if scope == "" {
		pt.matchedNames = map[string]bool{}
	}
	return pt
}

// foldPath credits n and its descendants under parent.
func foldPath(pt *pathTree, n *profileNode, parent string) {
	key, e := pt.entry(parent, n.sample.name)
	e.duration += n.sample.duration
	e.self += n.selfDuration()
	for _, c := range n.children {
		foldPath(pt, c, key)
	}
}

type pathChild struct {
	key      string
	name     string
	duration int64
}

func sortPathChildren(out []pathChild) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].duration != out[j].duration {
			return out[i].duration > out[j].duration
		}
		return out[i].name < out[j].name
	})
}

func (pt *pathTree) pct(d int64) float64 {
	return 100.0 * float64(d) / float64(pt.totalDuration)
}

// children returns direct children of parent at or above minPct, sorted by
// duration descending with ties broken by name.
func (pt *pathTree) children(parent string, minPct float64) []pathChild {
	var out []pathChild
	for key, e := range pt.entries {
		if e.parent == parent && pt.pct(e.duration) >= minPct {
			out = append(out, pathChild{key, e.name, e.duration})
		}
	}
	sortPathChildren(out)
	return out
}

// roots returns the top-level entries sorted by duration descending, then
// name.
func (pt *pathTree) roots() []pathChild {
	var out []pathChild
	for key, e := range pt.entries {
		if e.parent == "" {
			out = append(out, pathChild{key, e.name, e.duration})
		}
	}
	sortPathChildren(out)
	return out
}

func (pt *pathTree) printMatched(w io.Writer) {
	if len(pt.matchedNames) > 1 {
		names := make([]string, 0, len(pt.matchedNames))
		for n := range pt.matchedNames {
			names = append(names, n)
		}
		sort.Strings(names)
		fmt.Fprintf(w, "# matched %d scopes: %s\n", len(pt.matchedNames), strings.Join(names, ", "))
	}
}

// printTree prints the aggregated path tree with each entry's share of the
// total duration.
func (pt *pathTree) printTree(w io.Writer, scope string, maxDepth int, minPct float64) error {
	if len(pt.entries) == 0 {
		fmt.Fprintf(w, "no scopes matching '%s'\n", scope)
		return nil
	}
	if pt.totalDuration == 0 {
		return fmt.Errorf("%w: total duration is zero", errZeroDivisor)
	}
	pt.printMatched(w)

	var walk func(key string, depth int)
	walk = func(key string, depth int) {
		e := pt.entries[key]
		pct := pt.pct(e.duration)
		if pct < minPct {
			return
		}
		fmt.Fprintf(w, "%s[%.1f%%] %s\n", strings.Repeat("  ", depth-1), pct, e.name)
		if maxDepth > 0 && depth >= maxDepth {
			return
		}
		for _, c := range pt.children(key, minPct) {
			walk(c.key, depth+1)
		}
	}

	for _, r := range pt.roots() {
		walk(r.key, 1)
	}
	return nil
}
