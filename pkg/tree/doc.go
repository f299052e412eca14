// Package tree navigates and patches UI trees by node id.
//
// FindByID and UpdateContent operate in place on a tree the caller owns.
// Document wraps a tree for concurrent use with copy-on-write snapshots.
package tree
