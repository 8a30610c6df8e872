package radix

import "regexp"

// Kind tells a literal segment from a parameter segment.
type Kind uint8

const (
	// Static segments must match the request segment exactly.
	Static Kind = iota
	// Param segments match any non-empty request segment and bind it.
	Param
)

func (k Kind) String() string {
	switch k {
	case Static:
		return "static"
	case Param:
		return "param"
	}
	return "unknown"
}

// Segment is one parsed component of a registered pattern.
type Segment struct {
	Kind Kind

	// Value is the literal text for static segments and the parameter
	// name for param segments.
	Value string

	// Constraint is the source of the optional {name:regex} constraint.
	Constraint string

	regex *regexp.Regexp
}

// Accepts reports whether a raw request segment satisfies s.
func (s Segment) Accepts(raw string) bool {
	switch s.Kind {
	case Static:
		return raw == s.Value
	case Param:
		return raw != "" && (s.regex == nil || s.regex.MatchString(raw))
	}
	return false
}

// node is never mutated once it is reachable from a published Tree.
type node[V any] struct {
	statics map[string]*node[V]
	param   *node[V]

	// set on param nodes only
	paramKey   string
	constraint string
	regex      *regexp.Regexp

	leaf  bool
	value V
}

// Tree is an immutable segment trie. Insert returns a new Tree sharing
// every untouched node with the receiver, so a published Tree can be
// read by any number of goroutines without locking.
type Tree[V any] struct {
	root *node[V]
	size int
}
