// Package tree is the structural layer of the application. It holds the
// parameter tree: Param and DataSlot leaves attached to nested Containers,
// each node carrying a single upward parent reference.
//
// The package guarantees one property everything downstream depends on:
// traversal order is canonical (depth-first, children in lexicographic name
// order) and identical across calls as long as the tree shape, child names,
// and fixed flags are unchanged. The compiler's slice offsets and the
// free-state marshalling in this package both rely on it.
//
// Structural mutations (attach, detach, fixing a parameter, shape changes)
// bump a generation counter on the root so that cached compiled graphs can
// detect staleness.
package tree
