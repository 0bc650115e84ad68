package main

import (
	"fmt"
	"io"
	"sort"
)

// aggregateEntry collects every duration recorded under one name,
// regardless of where the samples sit in the hierarchy.
type aggregateEntry struct {
	name      string
	durations []int64
	total     int64
}

func (e *aggregateEntry) count() int { return len(e.durations) }

func (e *aggregateEntry) average() (float64, error) {
	if len(e.durations) == 0 {
		return 0, fmt.Errorf("%w: %s has no samples", errZeroDivisor, e.name)
	}
	return float64(e.total) / float64(len(e.durations)), nil
}

// aggregateSet maps names to entries and remembers first-seen order so that
// reports are deterministic.
type aggregateSet struct {
	byName map[string]*aggregateEntry
	order  []string
}

func (a *aggregateSet) get(name string) (*aggregateEntry, bool) {
	e, ok := a.byName[name]
	return e, ok
}

func (a *aggregateSet) len() int { return len(a.order) }

// entries returns the entries in first-seen order.
func (a *aggregateSet) entries() []*aggregateEntry {
	out := make([]*aggregateEntry, len(a.order))
	for i, name := range a.order {
		out[i] = a.byName[name]
	}
	return out
}

func aggregate(tr *trace) *aggregateSet {
	agg := &aggregateSet{byName: make(map[string]*aggregateEntry)}
	for _, s := range tr.samples {
		e, ok := agg.byName[s.name]
		if !ok {
			e = &aggregateEntry{name: s.name}
			agg.byName[s.name] = e
			agg.order = append(agg.order, s.name)
		}
		e.durations = append(e.durations, s.duration)
		e.total += s.duration
	}
	return agg
}

// sortedEntries returns the entries ordered by key: "first" (first-seen),
// "name", "total", "avg" or "count". Numeric keys sort descending with
// first-seen order breaking ties.
func (a *aggregateSet) sortedEntries(key string) ([]*aggregateEntry, error) {
	entries := a.entries()
	var less func(x, y *aggregateEntry) bool
	switch key {
	case "", "first":
		return entries, nil
	case "name":
		less = func(x, y *aggregateEntry) bool { return x.name < y.name }
	case "total":
		less = func(x, y *aggregateEntry) bool { return x.total > y.total }
	case "count":
		less = func(x, y *aggregateEntry) bool { return x.count() > y.count() }
	case "avg":
		less = func(x, y *aggregateEntry) bool {
			// count >= 1 for every stored entry
			return float64(x.total)/float64(x.count()) > float64(y.total)/float64(y.count())
		}
	default:
		return nil, fmt.Errorf("unknown sort key %q (valid: first, name, total, avg, count)", key)
	}
	sort.SliceStable(entries, func(i, j int) bool { return less(entries[i], entries[j]) })
	return entries, nil
}

func cmdFlat(w io.Writer, tr *trace, sortKey string, top int, asJSON bool) error {
	entries, err := aggregate(tr).sortedEntries(sortKey)
	if err != nil {
		return err
	}
	entries = entries[:truncate(len(entries), top)]
	if asJSON {
		return printAggregateJSON(w, entries, tr.totalDuration)
	}
	return printAggregate(w, entries, tr.totalDuration)
}
