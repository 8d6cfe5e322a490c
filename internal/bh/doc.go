// Package bh expands BEMJSON trees with registered matchers and renders the
// result to HTML.
//
// A matcher is a pattern plus a callback. Patterns name a block, optionally
// an element, and optionally one modifier on either of them:
//
//	button
//	button_size_l        block modifier with a value
//	button_disabled      block modifier that must be exactly true
//	menu__item
//	menu__item_active    element modifier
//
// Expansion walks the tree breadth first. For every node carrying a block
// name the candidate matchers for its block and element are tried in reverse
// registration order, each at most once per node. A callback may mutate the
// node through its Context, stop further matching, or return a replacement
// value, which is then expanded in place of the node. Children are expanded
// after their parent has settled and inherit its block name and modifiers.
//
// A Processor compiles its matchers into a dispatch table on first use and
// recompiles only after Match registers something new. Expand and Apply may
// run concurrently; each call owns its own pass state.
package bh
