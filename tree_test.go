package main

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// shape is a comparable view of a tree: names and nesting only.
type shape struct {
	Name     string
	Children []shape
}

func shapeOf(n *profileNode) shape {
	s := shape{Name: n.sample.name}
	for _, c := range n.children {
		s.Children = append(s.Children, shapeOf(c))
	}
	return s
}

// preorder encodes the tree as name@depth lines in visit order, a flat
// form that compares in linear time however deep the tree is.
func preorder(n *profileNode) []string {
	var out []string
	var walk func(n *profileNode, depth int)
	walk = func(n *profileNode, depth int) {
		out = append(out, fmt.Sprintf("%s@%d", n.sample.name, depth))
		for _, c := range n.children {
			walk(c, depth+1)
		}
	}
	walk(n, 0)
	return out
}

func leaf(name string) shape { return shape{Name: name} }

func node(name string, children ...shape) shape {
	return shape{Name: name, Children: children}
}

func mustBuild(t *testing.T, tr *trace) *profileNode {
	t.Helper()
	root, err := buildTree(tr)
	if err != nil {
		t.Fatalf("buildTree: %v", err)
	}
	return root
}

// ---------------------------------------------------------------------------
// Reconstruction scenarios
// ---------------------------------------------------------------------------

func TestBuildTreeScenarios(t *testing.T) {
	tests := []struct {
		name string
		tr   *trace
		want shape
	}{
		{
			name: "siblings inside parent",
			tr:   nestedTrace(),
			want: node("root", node("A", leaf("B"), leaf("C"))),
		},
		{
			name: "identical spans keep input order",
			tr:   makeTrace(100, sample{"A", 0, 100}, sample{"B", 0, 100}),
			want: node("root", node("A", leaf("B"))),
		},
		{
			name: "identical spans reversed",
			tr:   makeTrace(100, sample{"B", 0, 100}, sample{"A", 0, 100}),
			want: node("root", node("B", leaf("A"))),
		},
		{
			name: "longer sample wins a shared start",
			tr:   makeTrace(100, sample{"inner", 0, 10}, sample{"outer", 0, 100}),
			want: node("root", node("outer", leaf("inner"))),
		},
		{
			name: "start at parent end is not contained",
			tr:   makeTrace(100, sample{"A", 0, 50}, sample{"B", 50, 10}),
			want: node("root", leaf("A"), leaf("B")),
		},
		{
			name: "closes several scopes at once",
			tr: makeTrace(100,
				sample{"A", 0, 60},
				sample{"B", 5, 30},
				sample{"C", 10, 10},
				sample{"D", 40, 10},
				sample{"E", 70, 20},
			),
			want: node("root",
				node("A", node("B", leaf("C")), leaf("D")),
				leaf("E"),
			),
		},
		{
			name: "unsorted input",
			tr: makeTrace(100,
				sample{"C", 70, 20},
				sample{"B", 10, 50},
				sample{"A", 0, 100},
			),
			want: node("root", node("A", leaf("B"), leaf("C"))),
		},
		{
			name: "zero duration samples are leaves",
			tr: makeTrace(100,
				sample{"A", 0, 100},
				sample{"mark", 10, 0},
				sample{"B", 10, 20},
			),
			want: node("root", node("A", node("B", leaf("mark")))),
		},
		{
			name: "partial overlap nests under the earlier scope",
			tr:   makeTrace(100, sample{"A", 0, 50}, sample{"B", 40, 30}),
			want: node("root", node("A", leaf("B"))),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := mustBuild(t, tt.tr)
			if diff := cmp.Diff(tt.want, shapeOf(root)); diff != "" {
				t.Errorf("tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildTreeRoot(t *testing.T) {
	tr := makeTrace(500, sample{"A", 1000, 100}, sample{"B", 1200, 50})
	root := mustBuild(t, tr)
	want := sample{name: "root", start: 1000, duration: 500}
	if root.sample != want {
		t.Errorf("root = %+v, want %+v", root.sample, want)
	}
}

func TestBuildTreeEmpty(t *testing.T) {
	_, err := buildTree(makeTrace(100))
	if !errors.Is(err, errEmptyTrace) {
		t.Errorf("err = %v, want errEmptyTrace", err)
	}
}

func TestBuildTreeUncontained(t *testing.T) {
	tests := []struct {
		name string
		tr   *trace
	}{
		{"starts after trace end", makeTrace(50, sample{"A", 0, 10}, sample{"B", 60, 5})},
		{"starts exactly at trace end", makeTrace(50, sample{"A", 0, 10}, sample{"B", 50, 5})},
		{"zero total duration", makeTrace(0, sample{"A", 0, 10})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildTree(tt.tr)
			if !errors.Is(err, errUncontained) {
				t.Errorf("err = %v, want errUncontained", err)
			}
		})
	}
}

func TestBuildTreeDoesNotMutateInput(t *testing.T) {
	tr := makeTrace(100, sample{"C", 70, 20}, sample{"A", 0, 100}, sample{"B", 10, 50})
	before := append([]sample(nil), tr.samples...)
	mustBuild(t, tr)
	if diff := cmp.Diff(before, tr.samples, cmp.AllowUnexported(sample{})); diff != "" {
		t.Errorf("input reordered (-before +after):\n%s", diff)
	}
}

// ---------------------------------------------------------------------------
// Structural properties over generated traces
// ---------------------------------------------------------------------------

func randomTrace(rng *rand.Rand, n int, total int64) *trace {
	tr := &trace{totalDuration: total}
	for i := 0; i < n; i++ {
		start := rng.Int63n(total)
		dur := rng.Int63n(total/4 + 1)
		name := string(rune('a' + rng.Intn(6)))
		tr.samples = append(tr.samples, sample{name, start, dur})
	}
	return tr
}

func TestBuildTreeProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 50; iter++ {
		tr := randomTrace(rng, 1+rng.Intn(200), 10_000)
		root := mustBuild(t, tr)

		if got := root.count() - 1; got != len(tr.samples) {
			t.Fatalf("iter %d: tree has %d nodes, want %d", iter, got, len(tr.samples))
		}

		var check func(p *profileNode)
		check = func(p *profileNode) {
			for i, c := range p.children {
				if c.sample.start < p.sample.start || c.sample.start >= p.sample.end() {
					t.Fatalf("iter %d: %+v not contained by %+v", iter, c.sample, p.sample)
				}
				if i > 0 && c.sample.start < p.children[i-1].sample.start {
					t.Fatalf("iter %d: children of %s out of start order", iter, p.sample.name)
				}
				check(c)
			}
		}
		check(root)

		again := mustBuild(t, tr)
		if diff := cmp.Diff(preorder(root), preorder(again)); diff != "" {
			t.Fatalf("iter %d: rebuild differs:\n%s", iter, diff)
		}
	}
}

func TestBuildTreeDeepChain(t *testing.T) {
	const depth = 500
	tr := &trace{totalDuration: 2 * depth}
	for i := int64(0); i < depth; i++ {
		tr.samples = append(tr.samples, sample{"f", i, 2*depth - 2*i})
	}
	root := mustBuild(t, tr)
	if got := root.maxDepth(); got != depth {
		t.Fatalf("maxDepth = %d, want %d", got, depth)
	}
	got := preorder(root)
	if len(got) != depth+1 || got[depth] != fmt.Sprintf("f@%d", depth) {
		t.Errorf("unexpected encoding tail %q", got[len(got)-1])
	}
	if diff := cmp.Diff(got, preorder(mustBuild(t, tr))); diff != "" {
		t.Errorf("rebuild differs:\n%s", diff)
	}
}

// ---------------------------------------------------------------------------
// Node helpers
// ---------------------------------------------------------------------------

func TestSelfDuration(t *testing.T) {
	root := mustBuild(t, nestedTrace())
	a := root.children[0]
	if got := a.selfDuration(); got != 30 {
		t.Errorf("A self = %d, want 30", got)
	}
	if got := root.selfDuration(); got != 0 {
		t.Errorf("root self = %d, want 0", got)
	}

	overrun := mustBuild(t, makeTrace(100, sample{"A", 0, 10}, sample{"B", 5, 50}))
	if got := overrun.children[0].selfDuration(); got != 0 {
		t.Errorf("overrun self = %d, want 0 (clamped)", got)
	}
}

func TestMaxDepth(t *testing.T) {
	root := mustBuild(t, nestedTrace())
	if got := root.maxDepth(); got != 2 {
		t.Errorf("maxDepth = %d, want 2", got)
	}
}

func TestFindScopes(t *testing.T) {
	tr := makeTrace(100,
		sample{"Frame", 0, 50},
		sample{"Render", 5, 30},
		sample{"RenderShadows", 10, 5},
		sample{"Frame", 50, 50},
		sample{"Render", 60, 20},
	)
	root := mustBuild(t, tr)
	matches := findScopes(root, "Render")
	if len(matches) != 2 {
		t.Fatalf("expected 2 outermost matches, got %d", len(matches))
	}
	for _, m := range matches {
		if m.node.sample.name != "Render" {
			t.Errorf("matched %q, want Render", m.node.sample.name)
		}
		if m.parentDuration != 50 {
			t.Errorf("parentDuration = %d, want 50", m.parentDuration)
		}
	}
	if got := findScopes(root, "Physics"); len(got) != 0 {
		t.Errorf("expected no matches, got %d", len(got))
	}
}
