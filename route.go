package router

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Key identifies a registered route in the handler table.
type Key uint64

// KeyOf returns the stable key of a pattern string.
func KeyOf(pattern string) Key {
	return Key(xxhash.Sum64String(pattern))
}

func (k Key) String() string {
	return strconv.FormatUint(uint64(k), 16)
}

// Params holds the values bound to the parameters of a matched pattern,
// keyed by parameter name.
type Params map[string]string

// Get returns the value bound to name, or "" when there is none.
func (ps Params) Get(name string) string {
	return ps[name]
}

// Route binds a registered pattern to its handler. It is never modified
// after registration.
type Route struct {
	key     Key
	pattern string
	handler Handler
}

// Key returns the route key.
func (r *Route) Key() Key { return r.key }

// Pattern returns the pattern the route was registered with.
func (r *Route) Pattern() string { return r.pattern }

// Handler returns the handler bound to the route.
func (r *Route) Handler() Handler { return r.handler }
