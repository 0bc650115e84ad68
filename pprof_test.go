package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/pprof/profile"
)

func stackNames(s *profile.Sample) []string {
	var names []string
	for _, loc := range s.Location {
		for _, line := range loc.Line {
			names = append(names, line.Function.Name)
		}
	}
	return names
}

func TestToPprof(t *testing.T) {
	p, err := toPprof(mustBuild(t, nestedTrace()))
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Function) != 4 {
		t.Errorf("functions = %d, want 4 (root, A, B, C)", len(p.Function))
	}

	got := make(map[string][]int64)
	stacks := make(map[string][]string)
	for _, s := range p.Sample {
		names := stackNames(s)
		got[names[0]] = s.Value
		stacks[names[0]] = names
	}
	want := map[string][]int64{
		"A": {1, 30},
		"B": {1, 50},
		"C": {1, 20},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sample values (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"B", "A", "root"}, stacks["B"]); diff != "" {
		t.Errorf("B stack (-want +got):\n%s", diff)
	}
}

func TestCmdExportRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := cmdExport(&buf, nestedTrace(), ""); err != nil {
		t.Fatal(err)
	}
	p, err := profile.Parse(&buf)
	if err != nil {
		t.Fatalf("parse exported profile: %v", err)
	}
	if len(p.Sample) != 3 {
		t.Errorf("samples = %d, want 3", len(p.Sample))
	}
	var total int64
	for _, s := range p.Sample {
		total += s.Value[1]
	}
	if total != 100 {
		t.Errorf("summed self time = %d, want 100", total)
	}
	if p.SampleType[1].Type != "wall" || p.SampleType[1].Unit != "microseconds" {
		t.Errorf("unexpected sample type %+v", p.SampleType[1])
	}
}

func TestCmdExportToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "trace.pb.gz")
	var buf bytes.Buffer
	if err := cmdExport(&buf, nestedTrace(), out); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should go to stdout when -o is set")
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := profile.Parse(f); err != nil {
		t.Errorf("parse %s: %v", out, err)
	}
}
