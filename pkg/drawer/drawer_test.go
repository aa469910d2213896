package drawer

import (
	"testing"
	"time"

	"github.com/matzehuels/stackplot/pkg/animator"
	"github.com/matzehuels/stackplot/pkg/surface"
)

func valueAttrs() animator.AttrMap {
	return animator.AttrMap{
		"r": func(d any, i int) (any, error) { return d.(map[string]any)["v"], nil },
	}
}

func rec(k string, v float64) map[string]any { return map[string]any{"k": k, "v": v} }

func TestPositionalJoin(t *testing.T) {
	doc := surface.NewDocument(10, 10)
	d := New(doc.Root(), "circle", "dot")
	plan := Plan{{Name: "main", Attrs: valueAttrs()}}

	if _, err := d.Draw([]any{rec("a", 1), rec("b", 2), rec("c", 3)}, plan); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	first := d.Elements()
	if len(first) != 3 {
		t.Fatalf("len(Elements()) = %d, want 3", len(first))
	}
	if !first[0].HasClass("dot") {
		t.Error("drawn node lacks the drawer class")
	}

	if _, err := d.Draw([]any{rec("x", 9)}, plan); err != nil {
		t.Fatal(err)
	}
	second := d.Elements()
	if len(second) != 1 || second[0] != first[0] {
		t.Error("positional join should reuse the first node")
	}
	if !first[1].Removed() || !first[2].Removed() {
		t.Error("exiting nodes were not removed")
	}
	if got, _ := second[0].Attr("r"); got != "9" {
		t.Errorf("r = %q, want 9", got)
	}
}

func TestKeyedJoin(t *testing.T) {
	doc := surface.NewDocument(10, 10)
	d := New(doc.Root(), "rect", "")
	d.SetKey(func(v any, i int) string { return v.(map[string]any)["k"].(string) })
	plan := Plan{{Attrs: valueAttrs()}}

	_, _ = d.Draw([]any{rec("a", 1), rec("b", 2)}, plan)
	byKey := map[string]surface.Node{}
	for _, e := range d.Bound() {
		byKey[e.Datum.(map[string]any)["k"].(string)] = e.Node
	}

	_, _ = d.Draw([]any{rec("b", 5), rec("c", 6)}, plan)
	bound := d.Bound()
	if bound[0].Node != byKey["b"] {
		t.Error("keyed join did not keep b's node")
	}
	if bound[1].Node == byKey["a"] {
		t.Error("c reused a's node")
	}
	if !byKey["a"].Removed() {
		t.Error("a was not removed")
	}
}

func TestPlanStepsRunInSequence(t *testing.T) {
	doc := surface.NewDocument(10, 10)
	d := New(doc.Root(), "rect", "")
	tl := animator.NewTimeline()
	d.SetTimeline(tl)

	ease := animator.NewEasing()
	_ = ease.SetEasingMode("linear")
	plan := Plan{
		{Name: "reset", Attrs: animator.AttrMap{"height": func(any, int) (any, error) { return 0.0, nil }}},
		{Name: "main", Attrs: animator.AttrMap{"height": func(any, int) (any, error) { return 50.0, nil }}, Animator: ease},
	}
	total, err := d.Draw([]any{1, 2}, plan)
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if total != animator.DefaultStepDuration {
		t.Errorf("total = %v, want %v", total, animator.DefaultStepDuration)
	}
	n := d.Elements()[0]
	if got, _ := n.Attr("height"); got != "0" {
		t.Errorf("height after reset = %q, want 0", got)
	}
	tl.Advance(150 * time.Millisecond)
	if got, _ := n.Attr("height"); got != "25" {
		t.Errorf("height mid-animation = %q, want 25", got)
	}
	tl.Flush()
	if got, _ := n.Attr("height"); got != "50" {
		t.Errorf("height after Flush = %q, want 50", got)
	}
}

func TestApplyStepOnlyTouchesJoin(t *testing.T) {
	doc := surface.NewDocument(10, 10)
	d := New(doc.Root(), "rect", "")
	_, _ = d.Draw([]any{1}, Plan{{Attrs: valueAttrsConst("x", 1)}})

	other := doc.Root().AppendChild("rect")
	j := animator.Join{Update: []animator.Element{{Node: other, Datum: 7}}}
	if _, err := ApplyStep(nil, j, Step{Attrs: valueAttrsConst("x", 7)}, 0); err != nil {
		t.Fatal(err)
	}
	if got, _ := d.Elements()[0].Attr("x"); got != "1" {
		t.Errorf("drawer node changed to %q", got)
	}
	if got, _ := other.Attr("x"); got != "7" {
		t.Errorf("join node x = %q, want 7", got)
	}
	if len(d.Elements()) != 1 {
		t.Error("ApplyStep changed drawer state")
	}
}

func valueAttrsConst(attr string, v float64) animator.AttrMap {
	return animator.AttrMap{attr: func(any, int) (any, error) { return v, nil }}
}

func TestRemove(t *testing.T) {
	doc := surface.NewDocument(10, 10)
	d := New(doc.Root(), "rect", "")
	_, _ = d.Draw([]any{1, 2}, nil)
	d.Remove()
	if len(doc.Root().Children()) != 0 || len(d.Elements()) != 0 {
		t.Error("Remove() left nodes behind")
	}
}

func TestEnterOnlyStep(t *testing.T) {
	doc := surface.NewDocument(10, 10)
	d := New(doc.Root(), "rect", "")
	reset := animator.AttrMap{"height": func(any, int) (any, error) { return 0.0, nil }}
	plan := Plan{
		{Name: "reset", Attrs: reset, EnterOnly: true},
		{Name: "main", Attrs: valueAttrs()},
	}

	_, _ = d.Draw([]any{rec("a", 1)}, plan)
	first := d.Elements()[0]
	first.SetAttr("height", 7)

	_, _ = d.Draw([]any{rec("a", 2), rec("b", 3)}, plan)
	if got, _ := first.Attr("height"); got != "7" {
		t.Errorf("updating node height = %q, want 7", got)
	}
	if got, _ := d.Elements()[1].Attr("height"); got != "0" {
		t.Errorf("entering node height = %q, want 0", got)
	}
}
