// Package router maps URL paths to named views and tracks navigation history.
package router

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/gorilla/mux"
)

// ErrNoMatchingRoute matches every resolution failure.
var ErrNoMatchingRoute = errors.New("no matching route")

// NoMatchingRouteError is returned when no route matches Path.
type NoMatchingRouteError struct {
	Path string
}

func (e *NoMatchingRouteError) Error() string {
	return fmt.Sprintf("no matching route for path %q", e.Path)
}

// Is reports whether target is ErrNoMatchingRoute.
func (e *NoMatchingRouteError) Is(target error) bool {
	return target == ErrNoMatchingRoute
}

// Route maps a path pattern such as "/movie/:id" to a view.
type Route struct {
	Path            string
	Name            string
	View            http.Handler
	PropsFromParams bool
}

// Match is the result of resolving a path.
type Match struct {
	Route  Route
	Path   string
	Params map[string]string
	// Props holds the params forwarded to the view; empty unless
	// the route sets PropsFromParams.
	Props map[string]string
}

type segment struct {
	literal string
	param   string
}

type compiledRoute struct {
	route         Route
	segments      []segment
	order         int
	staticPrefix  int // literal segments before the first parameter
	staticChars   int
	parameterized bool
}

// Table is an immutable set of routes.
type Table struct {
	routes []compiledRoute
	byName map[string]int

	// matcher holds the routes in precedence order; Resolve and Mount
	// both match through gorilla/mux
	matcher *mux.Router
	matched map[*mux.Route]int
}

// NewTable validates routes and orders them by match precedence.
func NewTable(routes []Route) (*Table, error) {
	t := &Table{byName: make(map[string]int, len(routes))}

	for i, route := range routes {
		if route.Name == "" {
			return nil, fmt.Errorf("route %q: name is required", route.Path)
		}
		if _, exists := t.byName[route.Name]; exists {
			return nil, fmt.Errorf("route %q: duplicate name", route.Name)
		}

		compiled, err := compile(route, i)
		if err != nil {
			return nil, err
		}

		t.byName[route.Name] = i
		t.routes = append(t.routes, compiled)
	}

	sort.SliceStable(t.routes, func(i, j int) bool {
		a, b := t.routes[i], t.routes[j]
		if a.parameterized != b.parameterized {
			return !a.parameterized
		}
		if !a.parameterized {
			return a.order < b.order
		}
		if a.staticPrefix != b.staticPrefix {
			return a.staticPrefix > b.staticPrefix
		}
		if a.staticChars != b.staticChars {
			return a.staticChars > b.staticChars
		}
		return a.order < b.order
	})
	for i, r := range t.routes {
		t.byName[r.route.Name] = i
	}

	t.matcher = mux.NewRouter()
	t.matched = make(map[*mux.Route]int, 2*len(t.routes))
	for i, c := range t.routes {
		for _, mr := range register(t.matcher, c, http.NotFoundHandler()) {
			if err := mr.GetError(); err != nil {
				return nil, fmt.Errorf("route %q: %w", c.route.Name, err)
			}
			t.matched[mr] = i
		}
	}

	return t, nil
}

// register adds c to r under its mux template and the trailing-slash variant.
func register(r *mux.Router, c compiledRoute, h http.Handler) []*mux.Route {
	template := muxTemplate(c.segments)
	routes := []*mux.Route{r.Handle(template, h)}
	if template != "/" {
		routes = append(routes, r.Handle(template+"/", h))
	}
	return routes
}

// MustNewTable is like NewTable but panics on an invalid route list.
func MustNewTable(routes []Route) *Table {
	t, err := NewTable(routes)
	if err != nil {
		panic(err)
	}
	return t
}

func compile(route Route, order int) (compiledRoute, error) {
	if !strings.HasPrefix(route.Path, "/") {
		return compiledRoute{}, fmt.Errorf("route %q: path %q must start with /", route.Name, route.Path)
	}

	c := compiledRoute{route: route, order: order}
	seen := map[string]bool{}

	for _, part := range splitPath(route.Path) {
		if strings.HasPrefix(part, ":") {
			name := part[1:]
			if name == "" {
				return compiledRoute{}, fmt.Errorf("route %q: empty parameter name", route.Name)
			}
			if seen[name] {
				return compiledRoute{}, fmt.Errorf("route %q: duplicate parameter %q", route.Name, name)
			}
			seen[name] = true
			c.segments = append(c.segments, segment{param: name})
			c.parameterized = true
			continue
		}

		if strings.ContainsAny(part, "{}") {
			return compiledRoute{}, fmt.Errorf("route %q: segment %q must not contain braces", route.Name, part)
		}
		c.segments = append(c.segments, segment{literal: part})
		if !c.parameterized {
			c.staticPrefix++
			c.staticChars += len(part)
		}
	}

	return c, nil
}

// splitPath drops the leading slash and any trailing slash.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// Resolve returns the single route matching path. Matching happens on the
// decoded path, as for HTTP requests served by a mounted table; the query
// and fragment are ignored.
func (t *Table) Resolve(path string) (*Match, error) {
	u, err := url.Parse(path)
	if err != nil {
		return nil, &NoMatchingRouteError{Path: path}
	}
	decoded := u.Path
	if !strings.HasPrefix(decoded, "/") {
		decoded = "/" + decoded
	}

	req := &http.Request{Method: http.MethodGet, URL: &url.URL{Path: decoded}}
	var rm mux.RouteMatch
	if !t.matcher.Match(req, &rm) || rm.MatchErr != nil {
		return nil, &NoMatchingRouteError{Path: path}
	}
	i, ok := t.matched[rm.Route]
	if !ok {
		return nil, &NoMatchingRouteError{Path: path}
	}

	route := t.routes[i].route
	m := &Match{
		Route:  route,
		Path:   path,
		Params: map[string]string{},
		Props:  map[string]string{},
	}
	for k, v := range rm.Vars {
		m.Params[k] = v
		if route.PropsFromParams {
			m.Props[k] = v
		}
	}
	return m, nil
}

// Routes returns the routes in match precedence order.
func (t *Table) Routes() []Route {
	out := make([]Route, 0, len(t.routes))
	for _, c := range t.routes {
		out = append(out, c.route)
	}
	return out
}

// Lookup returns the route registered under name.
func (t *Table) Lookup(name string) (Route, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Route{}, false
	}
	return t.routes[i].route, true
}

// URL builds the path for the named route, filling its parameters.
func (t *Table) URL(name string, params map[string]string) (string, error) {
	i, ok := t.byName[name]
	if !ok {
		return "", fmt.Errorf("unknown route %q", name)
	}

	c := t.routes[i]
	parts := make([]string, 0, len(c.segments))
	for _, seg := range c.segments {
		if seg.param == "" {
			parts = append(parts, seg.literal)
			continue
		}
		value, ok := params[seg.param]
		if !ok || value == "" {
			return "", fmt.Errorf("route %q: missing parameter %q", name, seg.param)
		}
		parts = append(parts, url.PathEscape(value))
	}
	return "/" + strings.Join(parts, "/"), nil
}
