// Package bemjson defines the tree that the template matcher expands and
// renders.
//
// A Value is one of:
//   - nil, bool, string or a number (leaf content)
//   - *Node (a tagged object: block, element, modifiers, attributes, content)
//   - []any (an ordered sequence of values, rendered by concatenation)
//
// Decoding accepts the usual BEMJSON spelling (JSON or YAML). Keys the Node
// struct does not know about are kept in Node.Params so templates can read
// custom fields.
package bemjson
