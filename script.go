package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"
)

// Starlark values exposed to scripts:
//
//	total    int, the trace's total duration in microseconds
//	samples  list of struct(name, start, duration) in file order
//	root     struct(name, start, duration, self, children) for the
//	         reconstructed tree
//	emit(*values)  writes the values space-separated on one line

func sampleValue(s sample) *starlarkstruct.Struct {
	return starlarkstruct.FromStringDict(starlarkstruct.Default, starlark.StringDict{
		"name":     starlark.String(s.name),
		"start":    starlark.MakeInt64(s.start),
		"duration": starlark.MakeInt64(s.duration),
	})
}

func nodeValue(n *profileNode) *starlarkstruct.Struct {
	children := make([]starlark.Value, len(n.children))
	for i, c := range n.children {
		children[i] = nodeValue(c)
	}
	return starlarkstruct.FromStringDict(starlarkstruct.Default, starlark.StringDict{
		"name":     starlark.String(n.sample.name),
		"start":    starlark.MakeInt64(n.sample.start),
		"duration": starlark.MakeInt64(n.sample.duration),
		"self":     starlark.MakeInt64(n.selfDuration()),
		"children": starlark.NewList(children),
	})
}

func scriptGlobals(w io.Writer, tr *trace, root *profileNode) starlark.StringDict {
	samples := make([]starlark.Value, len(tr.samples))
	for i, s := range tr.samples {
		samples[i] = sampleValue(s)
	}
	emit := starlark.NewBuiltin("emit", func(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(kwargs) > 0 {
			return nil, errors.New("emit: unexpected keyword arguments")
		}
		parts := make([]string, len(args))
		for i, a := range args {
			if s, ok := starlark.AsString(a); ok {
				parts[i] = s
			} else {
				parts[i] = a.String()
			}
		}
		fmt.Fprintln(w, strings.Join(parts, " "))
		return starlark.None, nil
	})
	return starlark.StringDict{
		"total":   starlark.MakeInt64(tr.totalDuration),
		"samples": starlark.NewList(samples),
		"root":    nodeValue(root),
		"emit":    emit,
	}
}

func runScript(w io.Writer, tr *trace, filename string, src any) error {
	root, err := buildTree(tr)
	if err != nil {
		return err
	}
	thread := &starlark.Thread{
		Name:  "proftree",
		Print: func(_ *starlark.Thread, msg string) { fmt.Fprintln(w, msg) },
	}
	opts := &syntax.FileOptions{
		Set:             true,
		While:           true,
		TopLevelControl: true,
		GlobalReassign:  true,
		Recursion:       true,
	}
	if _, err := starlark.ExecFileOptions(opts, thread, filename, src, scriptGlobals(w, tr, root)); err != nil {
		var evalErr *starlark.EvalError
		if errors.As(err, &evalErr) {
			return fmt.Errorf("%s", evalErr.Backtrace())
		}
		return err
	}
	return nil
}

func cmdScript(w io.Writer, tr *trace, path string) error {
	// a nil src makes Starlark read the file itself
	return runScript(w, tr, path, nil)
}
