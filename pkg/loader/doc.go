// Package loader composes a ports.Source with the decoder.
//
// A load either returns a complete tree or a *LoadError whose Kind says
// whether the resource was missing, unreadable or undecodable. There is no
// fallback between kinds and no retry.
package loader
