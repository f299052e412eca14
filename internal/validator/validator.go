package validator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/loader"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/aretw0/canopy/pkg/schema"
	"github.com/aretw0/canopy/pkg/tree"
)

// Severity ranks a finding. Errors fail validation, warnings do not.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Finding is one problem found in a screen.
type Finding struct {
	Screen   string
	NodeID   string
	Severity Severity
	Message  string
}

func (f Finding) String() string {
	if f.NodeID == "" {
		return fmt.Sprintf("%s: %s: %s", f.Severity, f.Screen, f.Message)
	}
	return fmt.Sprintf("%s: %s#%s: %s", f.Severity, f.Screen, f.NodeID, f.Message)
}

// Report collects the findings of a validation run.
type Report struct {
	// Screens lists every screen that was visited, in visit order.
	Screens  []string
	Findings []Finding
}

// Errors counts findings with error severity.
func (r *Report) Errors() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == Error {
			n++
		}
	}
	return n
}

// Err summarises the error findings, or returns nil when there are none.
func (r *Report) Err() error {
	var lines []string
	for _, f := range r.Findings {
		if f.Severity == Error {
			lines = append(lines, f.String())
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return fmt.Errorf("found %d errors:\n- %s", len(lines), strings.Join(lines, "\n- "))
}

// Option configures a validation run.
type Option func(*options)

type options struct {
	actions map[string]bool
	schemas schema.Registry
}

// WithKnownActions adds action types the host handles on top of navigate and openURL.
func WithKnownActions(types ...string) Option {
	return func(o *options) {
		for _, t := range types {
			o.actions[t] = true
		}
	}
}

// WithSchemas checks property bags against reg on top of the built-in schemas.
func WithSchemas(reg schema.Registry) Option {
	return func(o *options) { o.schemas = reg }
}

func newOptions(opts []Option) *options {
	o := &options{actions: map[string]bool{domain.ActionNavigate: true, domain.ActionOpenURL: true}}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ValidateScreens loads every start screen and each screen reachable from it
// through navigate actions, linting what it finds. Screens that fail to load
// are reported as findings; only a cancelled context aborts the run.
func ValidateScreens(ctx context.Context, src ports.Source, start []string, opts ...Option) (*Report, error) {
	o := newOptions(opts)
	ld := loader.New(src)
	report := &Report{}

	visited := make(map[string]bool)
	queue := append([]string(nil), start...)
	referrer := make(map[string]string)

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		report.Screens = append(report.Screens, current)

		root, err := ld.Load(ctx, current)
		if err != nil {
			msg := err.Error()
			if loader.KindOf(err) == loader.ResourceNotFound {
				msg = "missing screen"
				if from, ok := referrer[current]; ok {
					msg = fmt.Sprintf("missing screen, linked from %s", from)
				}
			}
			report.Findings = append(report.Findings, Finding{Screen: current, Severity: Error, Message: msg})
			continue
		}

		report.Findings = append(report.Findings, lint(current, root, o)...)
		for _, target := range Links(root) {
			if !visited[target] {
				if _, seen := referrer[target]; !seen {
					referrer[target] = current
				}
				queue = append(queue, target)
			}
		}
	}
	return report, nil
}

// LintNode checks a single decoded tree. The screen name only labels findings.
func LintNode(screen string, root *domain.Node, opts ...Option) []Finding {
	return lint(screen, root, newOptions(opts))
}

// Links returns the distinct navigate targets of a tree in pre-order.
func Links(root *domain.Node) []string {
	var out []string
	seen := make(map[string]bool)
	tree.Walk(root, func(n *domain.Node, _ int) bool {
		if n.Action != nil && n.Action.Type == domain.ActionNavigate {
			if target := n.Action.Get(domain.PayloadScreen); target != "" && !seen[target] {
				seen[target] = true
				out = append(out, target)
			}
		}
		return true
	})
	return out
}

func lint(screen string, root *domain.Node, o *options) []Finding {
	var out []Finding
	add := func(n *domain.Node, sev Severity, format string, args ...any) {
		id := ""
		if n != nil {
			id = n.ID
		}
		out = append(out, Finding{Screen: screen, NodeID: id, Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	dups := tree.Duplicates(root)
	ids := make([]string, 0, len(dups))
	for id := range dups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		out = append(out, Finding{Screen: screen, NodeID: id, Severity: Warning,
			Message: fmt.Sprintf("id used by %d nodes, patches will touch all of them", dups[id])})
	}

	tree.Walk(root, func(n *domain.Node, _ int) bool {
		if !n.IsContainer() && len(n.Children) > 0 {
			add(n, Warning, "%s does not lay out children, %d ignored", n.Type, len(n.Children))
		}
		if s := n.Style; s != nil {
			if c := s.BackgroundColor; c != nil && !domain.ValidColorString(*c) {
				add(n, Warning, "backgroundColor %q is not a 3, 6 or 8 digit hex colour, renders black", *c)
			}
			if c := s.ForegroundColor; c != nil && !domain.ValidColorString(*c) {
				add(n, Warning, "foregroundColor %q is not a 3, 6 or 8 digit hex colour, renders black", *c)
			}
			if s.FontWeight != nil && !domain.IsMappedFontWeight(*s.FontWeight) {
				add(n, Warning, "fontWeight %d is not a multiple of 100 in 100..900, renders regular", *s.FontWeight)
			}
		}
		if a := n.Action; a != nil {
			switch {
			case !o.actions[a.Type]:
				add(n, Warning, "action %q has no known handler", a.Type)
			case a.Type == domain.ActionNavigate && a.Get(domain.PayloadScreen) == "":
				add(n, Error, "navigate action without %q", domain.PayloadScreen)
			case a.Type == domain.ActionOpenURL && a.Get(domain.PayloadURL) == "":
				add(n, Error, "openURL action without %q", domain.PayloadURL)
			}
		}
		if err := o.schemas.ValidateNode(n); err != nil {
			errs := schema.ValidationErrors(err)
			if errs == nil {
				errs = []error{err}
			}
			for _, e := range errs {
				add(n, Error, "property %v", e)
			}
		}
		return true
	})
	return out
}
