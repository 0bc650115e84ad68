package main

import "io"

// cmdFilter emits collapsed stacks passing through a scope matching scope.
// Stacks start at the match unless includeCallers is set.
func cmdFilter(w io.Writer, tr *trace, scope string, includeCallers bool) error {
	root, err := buildTree(tr)
	if err != nil {
		return err
	}
	var walk func(n *profileNode, callers []string)
	walk = func(n *profileNode, callers []string) {
		if matchesScope(n.sample.name, scope) {
			if includeCallers {
				writeCollapsed(w, n, callers)
			} else {
				writeCollapsed(w, n, nil)
			}
			return
		}
		next := append(callers[:len(callers):len(callers)], n.sample.name)
		for _, c := range n.children {
			walk(c, next)
		}
	}
	for _, c := range root.children {
		walk(c, nil)
	}
	return nil
}
