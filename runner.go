package canopy

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/canopy/pkg/action"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/render"
	"github.com/aretw0/canopy/pkg/tree"
)

// Runner browses screens in a terminal: it renders the current screen,
// reads the id of a node to tap and follows navigate actions.
// This allows for easy testing and integration with different frontends (CLI, TUI, etc).
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Options  []render.Option
	// Changes, when set, names screens that changed in the source. The
	// current screen is redrawn when it is among them.
	Changes <-chan string
}

// NewRunner creates a Runner reading from in and writing to out.
func NewRunner(in io.Reader, out io.Writer, opts ...render.Option) *Runner {
	return &Runner{Input: in, Output: out, Options: opts}
}

type line struct {
	text string
	err  error
}

// Run executes the browse loop from the start screen until input ends, ctx
// is done, or the user types "exit" or "quit".
//
// Navigate actions are dispatched to the engine first. A navigate without a
// registered handler still moves to its target screen, since moving between
// screens is what the runner is for.
func (r *Runner) Run(ctx context.Context, engine *Engine, start string) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	w := r.Output

	done := make(chan struct{})
	defer close(done)
	lines := make(chan line)
	go func() {
		reader := bufio.NewReader(r.Input)
		send := func(l line) bool {
			select {
			case lines <- l:
				return true
			case <-done:
				return false
			}
		}
		for {
			text, err := reader.ReadString('\n')
			if text != "" && !send(line{text: text}) {
				return
			}
			if err != nil {
				send(line{err: err})
				return
			}
		}
	}()

	if !r.Headless {
		fmt.Fprintln(w, "--- Canopy (Runner) ---")
	}

	actionable := func(a *domain.Action) bool {
		return a != nil && (a.Type == domain.ActionNavigate || engine.Actions().Actionable(a))
	}

	changes := r.Changes
	current := start
	var history []string
	// rendered is cleared to force a redraw; shown names the screen in root.
	rendered, shown := "", ""
	pushed := false
	var root *domain.Node
	for {
		if current != rendered {
			next, out, err := r.draw(ctx, engine, current, actionable)
			if err != nil {
				if root == nil {
					return err
				}
				// Stay on the screen already shown.
				fmt.Fprintf(w, "cannot open %s: %v\n", current, err)
				if pushed {
					history = history[:len(history)-1]
				}
				current, rendered, pushed = shown, shown, false
				if !r.Headless {
					fmt.Fprint(w, "> ")
				}
				continue
			}
			root, shown, pushed = next, current, false
			fmt.Fprint(w, out)
			if !r.Headless {
				for _, n := range render.Actions(root) {
					fmt.Fprintf(w, "  [%s] %s %s\n", n.ID, n.Action.Type, describe(n.Action))
				}
				fmt.Fprint(w, "> ")
			}
			rendered = current
		}

		var in line
		select {
		case <-ctx.Done():
			return nil
		case name, ok := <-changes:
			if !ok {
				changes = nil
			} else if name == current {
				rendered = ""
			}
			continue
		case in = <-lines:
		}

		if in.err != nil {
			if errors.Is(in.err, io.EOF) {
				return nil
			}
			return fmt.Errorf("input error: %w", in.err)
		}
		input := strings.TrimSpace(in.text)

		switch input {
		case "":
			continue
		case "exit", "quit", "q":
			if !r.Headless {
				fmt.Fprintln(w, "Bye!")
			}
			return nil
		case "back":
			if len(history) > 0 {
				current, history = history[len(history)-1], history[:len(history)-1]
			}
			continue
		}

		n, ok := tree.FindByID(root, input)
		if !ok || n.Action == nil {
			fmt.Fprintf(w, "no action on %q\n", input)
			continue
		}

		err := engine.Dispatch(ctx, current, *n.Action)
		if err != nil && !errors.Is(err, action.ErrNotActionable) {
			fmt.Fprintf(w, "action failed: %v\n", err)
			continue
		}
		if n.Action.Type == domain.ActionNavigate {
			if target := n.Action.Get(domain.PayloadScreen); target != "" {
				history = append(history, current)
				current, pushed = target, true
			}
			continue
		}
		if err != nil {
			fmt.Fprintf(w, "%s is not handled here\n", n.Action.Type)
		}
	}
}

func (r *Runner) draw(ctx context.Context, engine *Engine, name string, actionable func(*domain.Action) bool) (*domain.Node, string, error) {
	root, err := engine.Load(ctx, name)
	if err != nil {
		return nil, "", fmt.Errorf("load error: %w", err)
	}
	opts := append([]render.Option{render.WithActionable(actionable)}, r.Options...)
	out, err := render.NewTerminal(opts...).Render(root)
	if err != nil {
		return nil, "", fmt.Errorf("render error: %w", err)
	}
	return root, out, nil
}

func describe(a *domain.Action) string {
	switch a.Type {
	case domain.ActionNavigate:
		return a.Get(domain.PayloadScreen)
	case domain.ActionOpenURL:
		return a.Get(domain.PayloadURL)
	}
	return ""
}
