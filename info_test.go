package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestSummarize(t *testing.T) {
	tr := makeTrace(200,
		sample{"A", 10, 100},
		sample{"B", 20, 50},
		sample{"A", 120, 30},
	)
	s := summarize(tr, mustBuild(t, tr))
	want := traceSummary{
		samples:       3,
		distinctNames: 2,
		totalDuration: 200,
		span:          140,
		maxDepth:      2,
		topLevel:      130,
	}
	if s != want {
		t.Errorf("summary = %+v, want %+v", s, want)
	}
}

func TestCmdInfo(t *testing.T) {
	var buf bytes.Buffer
	if err := cmdInfo(&buf, nestedTrace(), 2); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"=== TRACE ===\n",
		"Samples:             3\n",
		"Distinct scopes:     3\n",
		"Total duration:      0.1000ms\n",
		"Max depth:           2\n",
		"Top-level coverage:  100.00%\n",
		"=== RANK BY SELF TIME (top 2) ===\n",
		"=== RANK BY TOTAL TIME (top 2) ===\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}
