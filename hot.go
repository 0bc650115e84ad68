package main

import (
	"fmt"
	"io"
	"sort"
)

type hotEntry struct {
	name  string
	self  int64
	total int64
}

// computeHot ranks names by self time. Total time counts only the outermost
// occurrence of a name on each path so recursive scopes are not counted
// twice. The synthetic root is excluded.
func computeHot(root *profileNode) []hotEntry {
	selfTimes := make(map[string]int64)
	totalTimes := make(map[string]int64)
	var order []string
	active := make(map[string]int)

	var walk func(n *profileNode)
	walk = func(n *profileNode) {
		name := n.sample.name
		if _, seen := totalTimes[name]; !seen {
			order = append(order, name)
			totalTimes[name] = 0
		}
		selfTimes[name] += n.selfDuration()
		if active[name] == 0 {
			totalTimes[name] += n.sample.duration
		}
		active[name]++
		for _, c := range n.children {
			walk(c)
		}
		active[name]--
	}
	for _, c := range root.children {
		walk(c)
	}

	ranked := make([]hotEntry, 0, len(order))
	for _, name := range order {
		ranked = append(ranked, hotEntry{name, selfTimes[name], totalTimes[name]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].self > ranked[j].self })
	return ranked
}

func printHotTables(w io.Writer, ranked []hotEntry, top int, total int64, showTopN bool) error {
	if total == 0 {
		return fmt.Errorf("%w: total duration is zero", errZeroDivisor)
	}
	selfRanked := ranked[:truncate(len(ranked), top)]

	if showTopN {
		fmt.Fprintf(w, "=== RANK BY SELF TIME (top %d) ===\n", len(selfRanked))
	} else {
		fmt.Fprintln(w, "=== RANK BY SELF TIME ===")
	}
	fmt.Fprintf(w, "%-50s %7s %7s %12s\n", "SCOPE", "SELF%", "TOTAL%", "SELF(ms)")
	for _, e := range selfRanked {
		sp := 100.0 * float64(e.self) / float64(total)
		tp := 100.0 * float64(e.total) / float64(total)
		fmt.Fprintf(w, "%-50s %6.1f%% %6.1f%% %12.4f\n", e.name, sp, tp, millis(e.self))
	}

	totalRanked := make([]hotEntry, len(ranked))
	copy(totalRanked, ranked)
	sort.SliceStable(totalRanked, func(i, j int) bool { return totalRanked[i].total > totalRanked[j].total })
	totalRanked = totalRanked[:truncate(len(totalRanked), top)]

	fmt.Fprintln(w)
	if showTopN {
		fmt.Fprintf(w, "=== RANK BY TOTAL TIME (top %d) ===\n", len(totalRanked))
	} else {
		fmt.Fprintln(w, "=== RANK BY TOTAL TIME ===")
	}
	fmt.Fprintf(w, "%-50s %7s %7s %12s\n", "SCOPE", "SELF%", "TOTAL%", "TOTAL(ms)")
	for _, e := range totalRanked {
		sp := 100.0 * float64(e.self) / float64(total)
		tp := 100.0 * float64(e.total) / float64(total)
		fmt.Fprintf(w, "%-50s %6.1f%% %6.1f%% %12.4f\n", e.name, sp, tp, millis(e.total))
	}
	return nil
}

func cmdHot(w io.Writer, tr *trace, top int, assertBelow float64) error {
	root, err := buildTree(tr)
	if err != nil {
		return err
	}
	ranked := computeHot(root)
	if len(ranked) == 0 {
		return nil
	}

	if err := printHotTables(w, ranked, top, tr.totalDuration, false); err != nil {
		return err
	}

	// assert-below stays on self-time section only
	if assertBelow > 0 {
		selfPct := 100.0 * float64(ranked[0].self) / float64(tr.totalDuration)
		if selfPct >= assertBelow {
			return fmt.Errorf("ASSERT FAILED: %s self=%.1f%% >= threshold %.1f%%", ranked[0].name, selfPct, assertBelow)
		}
	}
	return nil
}
