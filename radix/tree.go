package radix

import (
	"fmt"
	"maps"
	"sort"
)

// New returns an empty tree.
func New[V any]() *Tree[V] {
	return &Tree[V]{root: &node[V]{}}
}

// Len returns the number of values stored in the tree.
func (t *Tree[V]) Len() int {
	return t.size
}

// Insert returns a copy of t with value stored at the node addressed by
// segments. Only the nodes on the inserted path are copied; t itself is
// left untouched, so either the whole pattern lands in the new tree or,
// on error, nothing does.
func (t *Tree[V]) Insert(segments []Segment, value V) (*Tree[V], error) {
	root, err := t.root.insert(segments, value)
	if err != nil {
		return nil, err
	}

	return &Tree[V]{root: root, size: t.size + 1}, nil
}

func (n *node[V]) insert(segments []Segment, value V) (*node[V], error) {
	cp := *n

	if len(segments) == 0 {
		if n.leaf {
			return nil, ErrDuplicatePattern
		}
		cp.leaf = true
		cp.value = value
		return &cp, nil
	}

	seg := segments[0]

	switch seg.Kind {
	case Static:
		child := n.statics[seg.Value]
		if child == nil {
			child = &node[V]{}
		}

		child, err := child.insert(segments[1:], value)
		if err != nil {
			return nil, err
		}

		cp.statics = maps.Clone(n.statics)
		if cp.statics == nil {
			cp.statics = make(map[string]*node[V], 1)
		}
		cp.statics[seg.Value] = child

	case Param:
		child := n.param
		if child == nil {
			child = &node[V]{
				paramKey:   seg.Value,
				constraint: seg.Constraint,
				regex:      seg.regex,
			}
		} else if child.paramKey != seg.Value || child.constraint != seg.Constraint {
			return nil, fmt.Errorf("%w: '%s' is already registered as '%s' at this position",
				ErrParamConflict, describe(seg), describe(Segment{Kind: Param, Value: child.paramKey, Constraint: child.constraint}))
		}

		child, err := child.insert(segments[1:], value)
		if err != nil {
			return nil, err
		}
		cp.param = child
	}

	return &cp, nil
}

func describe(seg Segment) string {
	if seg.Kind == Static {
		return seg.Value
	}
	if seg.Constraint == "" {
		return "{" + seg.Value + "}"
	}
	return "{" + seg.Value + ":" + seg.Constraint + "}"
}

// Resolve finds the value registered for the raw request segments.
//
// At every level the static child is tried first; the parameter child is
// only tried when the static subtree cannot produce a full match. The
// returned params map is nil when the matched pattern has no parameters.
func (t *Tree[V]) Resolve(segments []string) (value V, params map[string]string, ok bool) {
	n := t.root.resolve(segments, &params)
	if n == nil {
		return value, nil, false
	}

	return n.value, params, true
}

func (n *node[V]) resolve(segments []string, params *map[string]string) *node[V] {
	if len(segments) == 0 {
		if n.leaf {
			return n
		}
		return nil
	}

	seg := segments[0]

	if child := n.statics[seg]; child != nil {
		if found := child.resolve(segments[1:], params); found != nil {
			return found
		}
	}

	p := n.param
	if p == nil || seg == "" || (p.regex != nil && !p.regex.MatchString(seg)) {
		return nil
	}

	found := p.resolve(segments[1:], params)
	if found == nil {
		return nil
	}

	// bindings are only written on the way back up a successful match,
	// so a failed branch leaves nothing to undo
	if *params == nil {
		*params = make(map[string]string, 4)
	}
	(*params)[p.paramKey] = seg

	return found
}

// Walk calls fn for every value in the tree in a deterministic order:
// a node's own value first, then static children sorted by text, then
// the parameter child. Walk stops when fn returns false.
func (t *Tree[V]) Walk(fn func(value V) bool) {
	t.root.walk(fn)
}

func (n *node[V]) walk(fn func(value V) bool) bool {
	if n.leaf && !fn(n.value) {
		return false
	}

	keys := make([]string, 0, len(n.statics))
	for k := range n.statics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !n.statics[k].walk(fn) {
			return false
		}
	}

	if n.param != nil {
		return n.param.walk(fn)
	}

	return true
}
