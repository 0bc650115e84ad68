package main

import (
	"fmt"
	"io"
	"math"
	"sort"
)

// totalPcts returns each name's aggregate duration as a percentage of the
// trace's total duration.
func totalPcts(tr *trace) (map[string]float64, error) {
	pcts := make(map[string]float64)
	for _, e := range aggregate(tr).entries() {
		pct, err := percent(e.total, tr.totalDuration, "total duration is zero")
		if err != nil {
			return nil, err
		}
		pcts[e.name] = pct
	}
	return pcts, nil
}

func cmdDiff(w io.Writer, before, after *trace, minDelta float64, top int) error {
	beforePct, err := totalPcts(before)
	if err != nil {
		return fmt.Errorf("before: %w", err)
	}
	afterPct, err := totalPcts(after)
	if err != nil {
		return fmt.Errorf("after: %w", err)
	}

	allScopes := make(map[string]bool)
	for m := range beforePct {
		allScopes[m] = true
	}
	for m := range afterPct {
		allScopes[m] = true
	}

	type diffEntry struct {
		name   string
		before float64
		after  float64
		delta  float64
	}

	var regressions, improvements, newScopes, goneScopes []diffEntry

	for m := range allScopes {
		b, inBefore := beforePct[m]
		a, inAfter := afterPct[m]
		delta := a - b

		switch {
		case inBefore && inAfter:
			if math.Abs(delta) < minDelta {
				continue
			}
			if delta > 0 {
				regressions = append(regressions, diffEntry{m, b, a, delta})
			} else {
				improvements = append(improvements, diffEntry{m, b, a, delta})
			}
		case inAfter:
			if a < minDelta {
				continue
			}
			newScopes = append(newScopes, diffEntry{m, 0, a, a})
		default:
			if b < minDelta {
				continue
			}
			goneScopes = append(goneScopes, diffEntry{m, b, 0, -b})
		}
	}

	byName := func(s []diffEntry, less func(i, j int) bool) func(i, j int) bool {
		return func(i, j int) bool {
			if s[i].delta == s[j].delta {
				return s[i].name < s[j].name
			}
			return less(i, j)
		}
	}
	sort.Slice(regressions, byName(regressions, func(i, j int) bool { return regressions[i].delta > regressions[j].delta }))
	sort.Slice(improvements, byName(improvements, func(i, j int) bool { return improvements[i].delta < improvements[j].delta }))
	sort.Slice(newScopes, byName(newScopes, func(i, j int) bool { return newScopes[i].after > newScopes[j].after }))
	sort.Slice(goneScopes, byName(goneScopes, func(i, j int) bool { return goneScopes[i].before > goneScopes[j].before }))

	regressions = regressions[:truncate(len(regressions), top)]
	improvements = improvements[:truncate(len(improvements), top)]
	newScopes = newScopes[:truncate(len(newScopes), top)]
	goneScopes = goneScopes[:truncate(len(goneScopes), top)]

	anyOutput := false

	if len(regressions) > 0 {
		fmt.Fprintln(w, "REGRESSION")
		for _, e := range regressions {
			fmt.Fprintf(w, "  %-50s %5.1f%% -> %5.1f%%  (+%.1f%%)\n", e.name, e.before, e.after, e.delta)
		}
		anyOutput = true
	}
	if len(improvements) > 0 {
		fmt.Fprintln(w, "IMPROVEMENT")
		for _, e := range improvements {
			fmt.Fprintf(w, "  %-50s %5.1f%% -> %5.1f%%  (%.1f%%)\n", e.name, e.before, e.after, e.delta)
		}
		anyOutput = true
	}
	if len(newScopes) > 0 {
		fmt.Fprintln(w, "NEW")
		for _, e := range newScopes {
			fmt.Fprintf(w, "  %-50s %.1f%%\n", e.name, e.after)
		}
		anyOutput = true
	}
	if len(goneScopes) > 0 {
		fmt.Fprintln(w, "GONE")
		for _, e := range goneScopes {
			fmt.Fprintf(w, "  %-50s %.1f%%\n", e.name, e.before)
		}
		anyOutput = true
	}

	if !anyOutput {
		fmt.Fprintln(w, "no significant changes")
	}
	return nil
}
