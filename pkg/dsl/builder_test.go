package dsl

import (
	"context"
	"testing"

	"github.com/aretw0/canopy/pkg/decoder"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/google/go-cmp/cmp"
)

func TestBuilder_Hello(t *testing.T) {
	root := Stack("root",
		Text("t1", "Hello"),
		Button("b1", "Go").Navigate("Detail"),
	).Vertical().Build()

	want, err := decoder.ParseString(`{"id":"root","type":"stack","stackAxis":"vertical","children":[
		{"id":"t1","type":"text","content":"Hello"},
		{"id":"b1","type":"button","content":"Go","action":{"type":"navigate","payload":{"screen":"Detail"}}}]}`)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(*want, root); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilder_StyleAndProperties(t *testing.T) {
	n := Text("t", "Hot").FontSize(24).FontWeight(700).Foreground("#FF0000").Padding(8).Build()
	if n.Style == nil || *n.Style.FontSize != 24 || *n.Style.ForegroundColor != "#FF0000" || *n.Style.Padding != 8 {
		t.Fatalf("unexpected style: %+v", n.Style)
	}
	if n.Style.Weight() != domain.FontWeightBold {
		t.Errorf("expected bold, got %s", n.Style.Weight())
	}

	tg := Toggle("wifi", "Wi-Fi", true).Build()
	var props domain.ToggleProperties
	if err := domain.DecodeProperties(tg.Properties, &props); err != nil {
		t.Fatal(err)
	}
	if props.Title != "Wi-Fi" || !props.IsOn {
		t.Errorf("unexpected toggle props: %+v", props)
	}

	sc := Scroll("s", Spacer("x")).Horizontal().Indicators(true).Build()
	if sc.Axis() != domain.AxisHorizontal || sc.StackAxis != nil || !sc.ShowIndicators {
		t.Errorf("scroll axis not applied: %+v", sc)
	}
}

func TestBuilder_BuildIsIndependent(t *testing.T) {
	b := Stack("root", Text("t", "a")).Padding(4)
	first := b.Build()
	first.Children[0].SetContent("changed")
	*first.Style.Padding = 99

	second := b.Build()
	if second.Children[0].ContentOr("") != "a" {
		t.Error("children shared between builds")
	}
	if *second.Style.Padding != 4 {
		t.Error("style shared between builds")
	}
}

func TestBundle_Build(t *testing.T) {
	store, err := NewBundle().
		Add("home", Stack("root", Text("title", "Home"), Button("go", "Next").Navigate("next"))).
		Add("next", List("items", Text("a", "A"), Text("b", "B"))).
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	names, _ := store.List(context.Background())
	if diff := cmp.Diff([]string{"home", "next"}, names); diff != "" {
		t.Errorf("names mismatch: %s", diff)
	}

	data, err := store.Fetch(context.Background(), "next")
	if err != nil {
		t.Fatal(err)
	}
	root, err := decoder.Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if root.Type != domain.NodeTypeList || len(root.Children) != 2 {
		t.Errorf("unexpected list: %v with %d children", root, len(root.Children))
	}
}

func TestBundle_RejectsEmptyID(t *testing.T) {
	_, err := NewBundle().Add("bad", Text("", "no id")).Build()
	if err == nil {
		t.Fatal("expected empty id to be rejected")
	}
}
