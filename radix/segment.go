package radix

import (
	"regexp"
	"strings"
)

// ParsePattern converts a registration pattern into its segments.
//
// A pattern must begin with '/', must not contain empty segments and
// may end with a single trailing slash, which is ignored. Parameters are
// written as {name} or {name:regex} and take a whole segment; names are
// made of letters, digits and underscores and must be unique within the
// pattern. The root pattern "/" has no segments.
func ParsePattern(pattern string) ([]Segment, error) {
	if len(pattern) == 0 || pattern[0] != '/' {
		return nil, invalidf(pattern, "path must begin with '/'")
	}

	if strings.Contains(pattern, "//") {
		return nil, invalidf(pattern, "empty path segment")
	}

	body := trimSlashes(pattern)
	if body == "" {
		return nil, nil
	}

	raw := strings.Split(body, "/")
	segments := make([]Segment, 0, len(raw))
	seen := make(map[string]struct{}, 2)

	for _, s := range raw {
		seg, err := parseSegment(pattern, s)
		if err != nil {
			return nil, err
		}

		if seg.Kind == Param {
			if _, dup := seen[seg.Value]; dup {
				return nil, invalidf(pattern, "duplicate parameter name '%s'", seg.Value)
			}
			seen[seg.Value] = struct{}{}
		}

		segments = append(segments, seg)
	}

	return segments, nil
}

func parseSegment(pattern, s string) (Segment, error) {
	open := strings.IndexByte(s, '{')
	if open == -1 {
		if strings.IndexByte(s, '}') != -1 {
			return Segment{}, invalidf(pattern, "unmatched '}' in segment '%s'", s)
		}
		return Segment{Kind: Static, Value: s}, nil
	}

	if open != 0 || s[len(s)-1] != '}' {
		return Segment{}, invalidf(pattern, "parameter must span the whole segment '%s'", s)
	}

	inner := s[1 : len(s)-1]
	name, constraint, hasConstraint := strings.Cut(inner, ":")

	if !isIdentifier(name) {
		return Segment{}, invalidf(pattern, "invalid parameter name '%s'", name)
	}

	seg := Segment{Kind: Param, Value: name}
	if !hasConstraint {
		if strings.ContainsAny(inner, "{}") {
			return Segment{}, invalidf(pattern, "unmatched braces in segment '%s'", s)
		}
		return seg, nil
	}

	if constraint == "" {
		return Segment{}, invalidf(pattern, "empty constraint for parameter '%s'", name)
	}

	if !balancedBraces(constraint) {
		return Segment{}, invalidf(pattern, "unmatched braces in segment '%s'", s)
	}

	re, err := regexp.Compile("^(?:" + constraint + ")$")
	if err != nil {
		return Segment{}, invalidf(pattern, "bad constraint for parameter '%s': %v", name, err)
	}

	seg.Constraint = constraint
	seg.regex = re

	return seg, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return false
		}
	}

	return true
}

func balancedBraces(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// trimSlashes drops one leading and one trailing slash.
func trimSlashes(path string) string {
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	if len(path) > 0 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}

// SplitPath splits a normalized request path into raw segments.
//
// A single leading and a single trailing slash are discarded, so "/post/1"
// and "/post/1/" both yield ["post", "1"]. "/" and "" yield no segments.
// Inner empty segments are kept as "" and never match.
func SplitPath(path string) []string {
	return AppendSegments(nil, path)
}

// AppendSegments is like SplitPath but appends to dst, which lets callers
// split into a stack allocated buffer.
func AppendSegments(dst []string, path string) []string {
	path = trimSlashes(path)
	if path == "" {
		return dst
	}

	for {
		i := strings.IndexByte(path, '/')
		if i == -1 {
			return append(dst, path)
		}
		dst = append(dst, path[:i])
		path = path[i+1:]
	}
}
