package canopy

import _ "embed"

// Version is the release of the canopy module, read from the VERSION file.
//
//go:embed VERSION
var Version string
