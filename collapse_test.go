package main

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCmdCollapse(t *testing.T) {
	var buf bytes.Buffer
	if err := cmdCollapse(&buf, nestedTrace()); err != nil {
		t.Fatal(err)
	}
	want := "A 30\n" +
		"A;B 50\n" +
		"A;C 20\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestCmdCollapseSkipsZeroSelf(t *testing.T) {
	tr := makeTrace(100,
		sample{"A", 0, 100},
		sample{"B", 0, 100},
	)
	var buf bytes.Buffer
	if err := cmdCollapse(&buf, tr); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "A;B 100\n" {
		t.Errorf("got %q", got)
	}
}

func TestCmdCollapseSiblingsDoNotShareFrames(t *testing.T) {
	tr := makeTrace(100,
		sample{"A", 0, 100},
		sample{"B", 0, 40},
		sample{"C", 0, 10},
		sample{"D", 50, 40},
	)
	var buf bytes.Buffer
	if err := cmdCollapse(&buf, tr); err != nil {
		t.Fatal(err)
	}
	want := "A 20\n" +
		"A;B 30\n" +
		"A;B;C 10\n" +
		"A;D 40\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestCmdFilter(t *testing.T) {
	tests := []struct {
		name           string
		includeCallers bool
		want           string
	}{
		{"from match", false, "B 50\n"},
		{"with callers", true, "A;B 50\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := cmdFilter(&buf, nestedTrace(), "B", tt.includeCallers); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, buf.String()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCmdFilterNoMatch(t *testing.T) {
	var buf bytes.Buffer
	if err := cmdFilter(&buf, nestedTrace(), "Nope", false); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
