package canopy_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/pkg/action"
	"github.com/aretw0/canopy/pkg/adapters/memory"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/dsl"
)

// ExampleNew_memory shows the Engine over an in-memory screen built with the DSL.
func ExampleNew_memory() {
	home := dsl.Stack("home").Vertical().Align(domain.AlignLeading).Children(
		dsl.Text("title", "Welcome"),
		dsl.Button("next", "Continue").Navigate("detail"),
	).Build()

	store, err := memory.NewFromNodes(home)
	if err != nil {
		log.Fatal(err)
	}

	eng, err := canopy.New("", canopy.WithSource(store),
		canopy.WithActionHandler(domain.ActionNavigate, action.NavigateHandler(func(ctx context.Context, screen string) error {
			fmt.Println("navigate to", screen)
			return nil
		})),
	)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	out, err := eng.Render(ctx, "home")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(out)

	btn, err := eng.Find(ctx, "home", "next")
	if err != nil {
		log.Fatal(err)
	}
	if err := eng.Dispatch(ctx, "home", *btn.Action); err != nil {
		log.Fatal(err)
	}

	// Output:
	// Welcome
	// [ Continue ]
	// navigate to detail
}
