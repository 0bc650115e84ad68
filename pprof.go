package main

import (
	"fmt"
	"io"
	"os"

	"github.com/google/pprof/profile"
	"github.com/sirupsen/logrus"
)

// toPprof converts the reconstructed tree into a pprof profile. Each node
// becomes one sample carrying its self time, with a leaf-first location
// stack; the synthetic root is kept as the outermost frame so untracked
// time stays visible.
func toPprof(root *profileNode) (*profile.Profile, error) {
	p := &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "samples", Unit: "count"},
			{Type: "wall", Unit: "microseconds"},
		},
		PeriodType:    &profile.ValueType{Type: "wall", Unit: "microseconds"},
		Period:        1,
		DurationNanos: root.sample.duration * 1000,
	}

	locations := make(map[string]*profile.Location)
	locationFor := func(name string) *profile.Location {
		if loc, ok := locations[name]; ok {
			return loc
		}
		id := uint64(len(p.Function) + 1)
		fn := &profile.Function{ID: id, Name: name, SystemName: name}
		loc := &profile.Location{ID: id, Line: []profile.Line{{Function: fn}}}
		p.Function = append(p.Function, fn)
		p.Location = append(p.Location, loc)
		locations[name] = loc
		return loc
	}

	var walk func(n *profileNode, stack []*profile.Location)
	walk = func(n *profileNode, stack []*profile.Location) {
		// stack is root-first; pprof wants leaf-first
		stack = append(stack[:len(stack):len(stack)], locationFor(n.sample.name))
		if self := n.selfDuration(); self > 0 {
			leafFirst := make([]*profile.Location, len(stack))
			for i, loc := range stack {
				leafFirst[len(stack)-1-i] = loc
			}
			p.Sample = append(p.Sample, &profile.Sample{
				Location: leafFirst,
				Value:    []int64{1, self},
			})
		}
		for _, c := range n.children {
			walk(c, stack)
		}
	}
	walk(root, nil)

	if err := p.CheckValid(); err != nil {
		return nil, fmt.Errorf("pprof: %w", err)
	}
	return p, nil
}

func cmdExport(w io.Writer, tr *trace, out string) error {
	root, err := buildTree(tr)
	if err != nil {
		return err
	}
	p, err := toPprof(root)
	if err != nil {
		return err
	}

	if out == "" || out == "-" {
		return p.Write(w)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := p.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"path":      out,
		"samples":   len(p.Sample),
		"functions": len(p.Function),
	}).Debug("pprof profile written")
	return nil
}
