package main

import (
	"fmt"
	"io"
)

type traceSummary struct {
	samples       int
	distinctNames int
	totalDuration int64
	span          int64 // first start to last end
	maxDepth      int
	topLevel      int64 // sum of depth-1 durations
}

func summarize(tr *trace, root *profileNode) traceSummary {
	s := traceSummary{
		samples:       len(tr.samples),
		distinctNames: aggregate(tr).len(),
		totalDuration: tr.totalDuration,
		maxDepth:      root.maxDepth(),
	}
	first, last := tr.samples[0].start, tr.samples[0].end()
	for _, smp := range tr.samples {
		first = min(first, smp.start)
		last = max(last, smp.end())
	}
	s.span = last - first
	for _, c := range root.children {
		s.topLevel += c.sample.duration
	}
	return s
}

func cmdInfo(w io.Writer, tr *trace, topScopes int) error {
	root, err := buildTree(tr)
	if err != nil {
		return err
	}
	s := summarize(tr, root)
	coverage, err := percent(s.topLevel, s.totalDuration, "total duration is zero")
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "=== TRACE ===")
	fmt.Fprintf(w, "%-20s %d\n", "Samples:", s.samples)
	fmt.Fprintf(w, "%-20s %d\n", "Distinct scopes:", s.distinctNames)
	fmt.Fprintf(w, "%-20s %.4fms\n", "Total duration:", millis(s.totalDuration))
	fmt.Fprintf(w, "%-20s %.4fms\n", "Sample span:", millis(s.span))
	fmt.Fprintf(w, "%-20s %d\n", "Max depth:", s.maxDepth)
	fmt.Fprintf(w, "%-20s %.2f%%\n", "Top-level coverage:", coverage)
	fmt.Fprintln(w)

	hot := computeHot(root)
	if len(hot) > 0 {
		return printHotTables(w, hot, topScopes, tr.totalDuration, true)
	}
	return nil
}
