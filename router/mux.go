package router

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

type contextKey int

const (
	matchKey contextKey = iota
	notFoundKey
)

// MatchFromContext returns the match stored by a mounted table.
func MatchFromContext(ctx context.Context) (*Match, bool) {
	m, ok := ctx.Value(matchKey).(*Match)
	return m, ok
}

// NotFoundFromContext returns the resolution error for a request that
// reached the not-found handler.
func NotFoundFromContext(ctx context.Context) (*NoMatchingRouteError, bool) {
	err, ok := ctx.Value(notFoundKey).(*NoMatchingRouteError)
	return err, ok
}

// WithMatch returns a copy of ctx carrying m.
func WithMatch(ctx context.Context, m *Match) context.Context {
	return context.WithValue(ctx, matchKey, m)
}

// Mount registers every route on r in precedence order, with the same
// templates Resolve matches against. Requests that match nothing are served
// by notFound with a NoMatchingRouteError in the context.
func (t *Table) Mount(r *mux.Router, notFound http.Handler) {
	for _, c := range t.routes {
		c := c
		handler := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			m := &Match{
				Route:  c.route,
				Path:   req.URL.Path,
				Params: map[string]string{},
				Props:  map[string]string{},
			}
			for k, v := range mux.Vars(req) {
				m.Params[k] = v
				if c.route.PropsFromParams {
					m.Props[k] = v
				}
			}

			if c.route.View == nil {
				http.NotFound(w, req)
				return
			}
			c.route.View.ServeHTTP(w, req.WithContext(WithMatch(req.Context(), m)))
		})

		for i, mr := range register(r, c, handler) {
			mr.Methods(http.MethodGet, http.MethodHead)
			if i == 0 {
				mr.Name(c.route.Name)
			}
		}
	}

	if notFound != nil {
		r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), notFoundKey, &NoMatchingRouteError{Path: req.URL.Path})
			notFound.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

// muxTemplate converts "/movie/:id" segments to "/movie/{id}".
func muxTemplate(segments []segment) string {
	if len(segments) == 0 {
		return "/"
	}

	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg.param != "" {
			parts = append(parts, "{"+seg.param+"}")
			continue
		}
		parts = append(parts, seg.literal)
	}
	return "/" + strings.Join(parts, "/")
}
