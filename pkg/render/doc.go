/*
Package render turns UI trees into something a person can look at.

Resolve applies the host defaults to an optional Style (font size 16, black
text on white, no padding or rounding, regular weight, centered). Terminal is
a reference renderer that lays a tree out as lines of text, which is how the
CLI previews screens. Native hosts draw their own views; they only need
Resolve to agree on defaults.

The terminal renderer ignores padding, corner radius and explicit frame sizes.
*/
package render
