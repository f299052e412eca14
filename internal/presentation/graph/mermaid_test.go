package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/canopy/internal/presentation/graph"
	"github.com/aretw0/canopy/internal/testutils"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		screens  []graph.Screen
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name:     "Entry Screen Shape",
			screens:  []graph.Screen{{Name: "home"}, {Name: "about"}},
			overlay:  &graph.GraphOverlay{Entry: "home"},
			contains: []string{`home(("home"))`, `about["about"]`, "class home entry;"},
		},
		{
			name:     "Broken Screen Shape",
			screens:  []graph.Screen{{Name: "bad", Broken: true}},
			contains: []string{`bad{{"bad"}}`},
			excludes: []string{"Overlay Styles"},
		},
		{
			name: "ID Sanitization",
			screens: []graph.Screen{
				{Name: "path/to/file.json"},
				{Name: "hyphen-ated"},
			},
			contains: []string{
				`path_to_file_json["path/to/file.json"]`,
				`hyphen_ated["hyphen-ated"]`,
			},
		},
		{
			name: "Link Labels",
			screens: []graph.Screen{{Name: "A", Links: []graph.Link{
				{Target: "B", Label: `Say "yes"`},
				{Target: "C"},
			}}},
			contains: []string{`A -- "Say 'yes'" --> B`, "A --> C"},
		},
		{
			name:     "Missing Targets",
			screens:  []graph.Screen{{Name: "A", Links: []graph.Link{{Target: "ghost"}}}},
			overlay:  &graph.GraphOverlay{Missing: []string{"ghost", "ghost"}},
			contains: []string{"class ghost missing;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.screens, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnexpected substring: %v", got, unwanted)
				}
			}
			if strings.Count(got, "class ghost missing;") > 1 {
				t.Error("missing screens must be styled once")
			}
		})
	}
}

func TestScreenOf(t *testing.T) {
	s := graph.ScreenOf("home", testutils.MustParse(t, testutils.HelloJSON))
	if len(s.Links) != 1 || s.Links[0] != (graph.Link{Target: "Detail", Label: "Go"}) {
		t.Errorf("ScreenOf() links = %+v", s.Links)
	}
}

func TestGenerateTree(t *testing.T) {
	got := graph.GenerateTree(testutils.MustParse(t, testutils.HelloJSON))
	for _, want := range []string{
		`n0["stack: root"]`,
		`n1("text: t1 <br/> Hello")`,
		`n2[["button: b1 <br/> Go"]]`,
		"n0 --> n1",
		"n0 --> n2",
		`n2 -.-> n2_action>"navigate Detail"]`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("GenerateTree() = \n%v\nWant substring: %v", got, want)
		}
	}
}
