// Package decoder turns UI payloads into domain trees and back.
//
// Text and byte input share one code path, so ParseString(string(b)) and
// Parse(b) always agree. Decoding is all or nothing: any failure returns
// ErrInvalidEncoding or a *ParseError and no tree.
package decoder
