/*
Package dsl provides a Go DSL for programmatically constructing canopy screens.

It lets servers define UI trees with a type-safe, fluent builder instead of
hand-written JSON. This is useful for dynamic screens, unit tests and IDE
autocompletion.

Example usage:

	package main

	import (
		"github.com/aretw0/canopy/pkg/domain"
		"github.com/aretw0/canopy/pkg/dsl"
	)

	func main() {
		home := dsl.Stack("root",
			dsl.Text("title", "Weather").FontSize(24).FontWeight(700),
			dsl.Button("more", "Details").Navigate("details"),
		).Vertical().Align(domain.AlignLeading)

		store, err := dsl.NewBundle().
			Add("home", home).
			Build()
		// ... serve store with canopy.New(store)
	}
*/
package dsl
