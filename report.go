package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// treeOpts limits what printTree shows. Zero values show everything.
type treeOpts struct {
	maxDepth int     // levels printed, 0 = unlimited
	minPct   float64 // hide nodes below this % of total
}

// ---------------------------------------------------------------------------
// Tree mode
// ---------------------------------------------------------------------------

// printTree writes the tree rooted at root in pre-order, one line per node:
//
//	<indent>name 12.3400ms 45.00% (12.00%)
//
// The first percentage is relative to the parent (the root is its own
// parent), the second to total. Output is buffered so that an error leaves w
// untouched.
func printTree(w io.Writer, root *profileNode, total int64, opts treeOpts) error {
	var buf bytes.Buffer
	if err := writeSubtree(&buf, root, root.sample.duration, total, 0, opts); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// printScopes writes each matched subtree as its own tree, starting at
// indent 0.
func printScopes(w io.Writer, matches []scopeMatch, total int64, opts treeOpts) error {
	var buf bytes.Buffer
	for _, m := range matches {
		if err := writeSubtree(&buf, m.node, m.parentDuration, total, 0, opts); err != nil {
			return err
		}
	}
	_, err := buf.WriteTo(w)
	return err
}

func writeSubtree(buf *bytes.Buffer, n *profileNode, parentDuration, total int64, level int, opts treeOpts) error {
	totalPct, err := percent(n.sample.duration, total, "total duration is zero")
	if err != nil {
		return err
	}
	if totalPct < opts.minPct {
		return nil
	}
	parentPct, err := percent(n.sample.duration, parentDuration, "parent of "+n.sample.name+" has zero duration")
	if err != nil {
		return err
	}
	fmt.Fprintf(buf, "%s%s %.4fms %.2f%% (%.2f%%)\n",
		strings.Repeat("  ", level), n.sample.name, millis(n.sample.duration), parentPct, totalPct)

	if opts.maxDepth > 0 && level+1 >= opts.maxDepth {
		return nil
	}
	for _, c := range n.children {
		if err := writeSubtree(buf, c, n.sample.duration, total, level+1, opts); err != nil {
			return err
		}
	}
	return nil
}

type jsonNode struct {
	Name            string      `json:"name"`
	Start           int64       `json:"start"`
	Duration        int64       `json:"duration"`
	PercentOfParent float64     `json:"percentOfParent"`
	PercentOfTotal  float64     `json:"percentOfTotal"`
	Children        []*jsonNode `json:"children,omitempty"`
}

func toJSONNode(n *profileNode, parentDuration, total int64) (*jsonNode, error) {
	parentPct, err := percent(n.sample.duration, parentDuration, "parent of "+n.sample.name+" has zero duration")
	if err != nil {
		return nil, err
	}
	totalPct, err := percent(n.sample.duration, total, "total duration is zero")
	if err != nil {
		return nil, err
	}
	out := &jsonNode{
		Name:            n.sample.name,
		Start:           n.sample.start,
		Duration:        n.sample.duration,
		PercentOfParent: parentPct,
		PercentOfTotal:  totalPct,
	}
	for _, c := range n.children {
		jc, err := toJSONNode(c, n.sample.duration, total)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, jc)
	}
	return out, nil
}

func printTreeJSON(w io.Writer, root *profileNode, total int64) error {
	jn, err := toJSONNode(root, root.sample.duration, total)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jn)
}

func printScopesJSON(w io.Writer, matches []scopeMatch, total int64) error {
	nodes := make([]*jsonNode, 0, len(matches))
	for _, m := range matches {
		jn, err := toJSONNode(m.node, m.parentDuration, total)
		if err != nil {
			return err
		}
		nodes = append(nodes, jn)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(nodes)
}

// ---------------------------------------------------------------------------
// Aggregate mode
// ---------------------------------------------------------------------------

type aggregateRow struct {
	Name     string  `json:"name"`
	AvgMs    float64 `json:"avgMs"`
	Count    int     `json:"count"`
	TotalUs  int64   `json:"total"`
	TotalPct float64 `json:"percentOfTotal"`
}

func aggregateRows(entries []*aggregateEntry, total int64) ([]aggregateRow, error) {
	rows := make([]aggregateRow, 0, len(entries))
	for _, e := range entries {
		avg, err := e.average()
		if err != nil {
			return nil, err
		}
		pct, err := percent(e.total, total, "total duration is zero")
		if err != nil {
			return nil, err
		}
		rows = append(rows, aggregateRow{
			Name:     e.name,
			AvgMs:    avg / 1000.0,
			Count:    e.count(),
			TotalUs:  e.total,
			TotalPct: pct,
		})
	}
	return rows, nil
}

// printAggregate writes one line per entry: name, average duration in ms,
// invocation count and share of total.
func printAggregate(w io.Writer, entries []*aggregateEntry, total int64) error {
	rows, err := aggregateRows(entries, total)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%-50s %12s %9s %8s\n", "SCOPE", "AVG(ms)", "CALLS", "TOTAL%")
	for _, r := range rows {
		fmt.Fprintf(&buf, "%-50s %12.4f %9d %7.2f%%\n", r.Name, r.AvgMs, r.Count, r.TotalPct)
	}
	_, err = buf.WriteTo(w)
	return err
}

func printAggregateJSON(w io.Writer, entries []*aggregateEntry, total int64) error {
	rows, err := aggregateRows(entries, total)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
