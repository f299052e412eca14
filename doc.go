/*
Package canopy is a Server-Driven UI runtime: screens are declared as JSON (or YAML) trees, served from any
storage backend, patched by node id while they are live, and rendered by whatever host consumes them.

# Concept

A screen is a tree of nodes (text, image, button, stack, spacer, list, scroll, textField, toggle). The runtime
decodes and validates the tree, lets servers patch it by id, and hands actions (navigate, openURL, or anything the
host registers) back to the host as passive data. Drawing is the host's business; a terminal renderer ships for
inspection and for the CLI.

# Key Features

  - Strict decoding: unknown node types fail loudly, absent optional fields stay absent.
  - Live patching: content or children of every node with a matching id, serialised per screen.
  - Pluggable storage: memory, directories, Loam bundles, Redis, BoltDB, S3 and remote HTTP sources.
  - Host-owned actions: unknown action types are inert rather than fatal.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/canopy"
	)

	func main() {
		// Serve screens from ./screens (a Loam bundle of .json, .yaml or .md files)
		eng, err := canopy.New("./screens")
		if err != nil {
			log.Fatal(err)
		}

		out, err := eng.Render(context.Background(), "home")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Print(out)
	}
*/
package canopy
