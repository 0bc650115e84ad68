package main

import "io"

func cmdCallers(w io.Writer, tr *trace, scope string, maxDepth int, minPct float64) error {
	root, err := buildTree(tr)
	if err != nil {
		return err
	}
	pt := aggregateCallers(root, scope)
	return pt.printTree(w, scope, maxDepth, minPct)
}
