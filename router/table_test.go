package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable(DefaultRoutes(Views{}))
	require.NoError(t, err)
	return table
}

func TestResolve_DefaultRoutes(t *testing.T) {
	table := defaultTable(t)

	tests := []struct {
		path string
		name string
	}{
		{"/", RouteHome},
		{"", RouteHome},
		{"/browse", RouteBrowse},
		{"/browse/", RouteBrowse},
		{"/browse?quality=720p", RouteBrowse},
		{"/about", RouteAbout},
		{"/movie/42", RouteMovieDetail},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m, err := table.Resolve(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.name, m.Route.Name)
		})
	}
}

func TestResolve_MovieDetailForwardsID(t *testing.T) {
	table := defaultTable(t)

	m, err := table.Resolve("/movie/42")
	require.NoError(t, err)

	assert.Equal(t, RouteMovieDetail, m.Route.Name)
	assert.Equal(t, map[string]string{"id": "42"}, m.Params)
	assert.Equal(t, map[string]string{"id": "42"}, m.Props)
}

func TestResolve_NoPropsWithoutPropsFromParams(t *testing.T) {
	table, err := NewTable([]Route{{Path: "/user/:name", Name: "User"}})
	require.NoError(t, err)

	m, err := table.Resolve("/user/ana")
	require.NoError(t, err)
	assert.Equal(t, "ana", m.Params["name"])
	assert.Empty(t, m.Props)
}

func TestResolve_UnescapesParams(t *testing.T) {
	table := defaultTable(t)

	m, err := table.Resolve("/movie/the%20matrix")
	require.NoError(t, err)
	assert.Equal(t, "the matrix", m.Props["id"])
}

func TestResolve_MatchesDecodedPath(t *testing.T) {
	table := defaultTable(t)

	m, err := table.Resolve("/br%6Fwse")
	require.NoError(t, err)
	assert.Equal(t, RouteBrowse, m.Route.Name)
	assert.Equal(t, "/br%6Fwse", m.Path)

	m, err = table.Resolve("/movie/caf%C3%A9")
	require.NoError(t, err)
	assert.Equal(t, "café", m.Props["id"])
}

func TestResolve_NoMatchingRoute(t *testing.T) {
	table := defaultTable(t)

	for _, path := range []string{"/nonexistent", "/movie", "/movie/", "/movie/1/extra", "/About", "/movie/a%2Fb", "/movie/%zz"} {
		t.Run(path, func(t *testing.T) {
			m, err := table.Resolve(path)
			assert.Nil(t, m)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNoMatchingRoute))

			var nomatch *NoMatchingRouteError
			require.True(t, errors.As(err, &nomatch))
			assert.Equal(t, path, nomatch.Path)
		})
	}
}

func TestResolve_LiteralBeatsParameter(t *testing.T) {
	table, err := NewTable([]Route{
		{Path: "/movie/:id", Name: "Detail"},
		{Path: "/movie/random", Name: "Random"},
	})
	require.NoError(t, err)

	m, err := table.Resolve("/movie/random")
	require.NoError(t, err)
	assert.Equal(t, "Random", m.Route.Name)

	m, err = table.Resolve("/movie/7")
	require.NoError(t, err)
	assert.Equal(t, "Detail", m.Route.Name)

	m, err = table.Resolve("/movie/%72andom")
	require.NoError(t, err)
	assert.Equal(t, "Random", m.Route.Name)
}

func TestResolve_LongerStaticPrefixWins(t *testing.T) {
	table, err := NewTable([]Route{
		{Path: "/:section/:id", Name: "Generic"},
		{Path: "/movie/:id", Name: "Movie"},
		{Path: "/movie/:id/:tab", Name: "MovieTab"},
		{Path: "/:section/:id/:tab", Name: "GenericTab"},
	})
	require.NoError(t, err)

	m, err := table.Resolve("/movie/1")
	require.NoError(t, err)
	assert.Equal(t, "Movie", m.Route.Name)

	m, err = table.Resolve("/show/1")
	require.NoError(t, err)
	assert.Equal(t, "Generic", m.Route.Name)

	m, err = table.Resolve("/movie/1/cast")
	require.NoError(t, err)
	assert.Equal(t, "MovieTab", m.Route.Name)
	assert.Equal(t, map[string]string{"id": "1", "tab": "cast"}, m.Params)
}

func TestResolve_DeclarationOrderBreaksTies(t *testing.T) {
	table, err := NewTable([]Route{
		{Path: "/a/:x", Name: "First"},
		{Path: "/a/:y", Name: "Second"},
	})
	require.NoError(t, err)

	m, err := table.Resolve("/a/1")
	require.NoError(t, err)
	assert.Equal(t, "First", m.Route.Name)
}

func TestNewTable_Validation(t *testing.T) {
	tests := []struct {
		name   string
		routes []Route
		errMsg string
	}{
		{"duplicate name", []Route{{Path: "/", Name: "A"}, {Path: "/b", Name: "A"}}, "duplicate name"},
		{"missing name", []Route{{Path: "/"}}, "name is required"},
		{"relative path", []Route{{Path: "browse", Name: "B"}}, "must start with /"},
		{"duplicate param", []Route{{Path: "/x/:id/:id", Name: "X"}}, "duplicate parameter"},
		{"empty param", []Route{{Path: "/x/:", Name: "X"}}, "empty parameter name"},
		{"braces", []Route{{Path: "/x/{id}", Name: "X"}}, "must not contain braces"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewTable(tt.routes)
			assert.Nil(t, table)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestMustNewTable_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustNewTable([]Route{{Path: "/", Name: "A"}, {Path: "/", Name: "A"}})
	})
}

func TestTable_LookupAndURL(t *testing.T) {
	table := defaultTable(t)

	route, ok := table.Lookup(RouteMovieDetail)
	require.True(t, ok)
	assert.Equal(t, "/movie/:id", route.Path)
	assert.True(t, route.PropsFromParams)

	_, ok = table.Lookup("Missing")
	assert.False(t, ok)

	u, err := table.URL(RouteMovieDetail, map[string]string{"id": "42"})
	require.NoError(t, err)
	assert.Equal(t, "/movie/42", u)

	u, err = table.URL(RouteHome, nil)
	require.NoError(t, err)
	assert.Equal(t, "/", u)

	_, err = table.URL(RouteMovieDetail, nil)
	assert.Error(t, err)

	_, err = table.URL("Missing", nil)
	assert.Error(t, err)
}

func TestTable_RoutesInPrecedenceOrder(t *testing.T) {
	table := defaultTable(t)

	var names []string
	for _, r := range table.Routes() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{RouteHome, RouteBrowse, RouteAbout, RouteMovieDetail}, names)
}

func namedView(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m, ok := MatchFromContext(r.Context())
		if !ok {
			http.Error(w, "missing match", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(name + ":" + m.Props["id"]))
	})
}

func TestMount_DispatchesThroughMux(t *testing.T) {
	table, err := NewTable(DefaultRoutes(Views{
		Home:        namedView("home"),
		Browse:      namedView("browse"),
		MovieDetail: namedView("detail"),
		About:       namedView("about"),
	}))
	require.NoError(t, err)

	r := mux.NewRouter()
	table.Mount(r, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		nomatch, ok := NotFoundFromContext(req.Context())
		require.True(t, ok)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing:" + nomatch.Path))
	}))

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/", http.StatusOK, "home:"},
		{"/browse", http.StatusOK, "browse:"},
		{"/browse/", http.StatusOK, "browse:"},
		{"/about", http.StatusOK, "about:"},
		{"/movie/42", http.StatusOK, "detail:42"},
		{"/nonexistent", http.StatusNotFound, "missing:/nonexistent"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.body, rr.Body.String())
		})
	}
}

func TestMount_NilViewIsNotFound(t *testing.T) {
	table := defaultTable(t)
	r := mux.NewRouter()
	table.Mount(r, nil)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/about", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMount_AgreesWithResolve(t *testing.T) {
	routeView := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m, _ := MatchFromContext(r.Context())
		_, _ = w.Write([]byte(m.Route.Name + " " + m.Params["id"]))
	})

	tables := map[string][]Route{
		"literal beats parameter": {
			{Path: "/movie/:id", Name: "Detail", View: routeView},
			{Path: "/movie/random", Name: "Random", View: routeView},
			{Path: "/browse", Name: "Browse", View: routeView},
		},
		"longer static prefix": {
			{Path: "/:section/:id", Name: "Generic", View: routeView},
			{Path: "/movie/:id", Name: "Movie", View: routeView},
			{Path: "/movie/random", Name: "Random", View: routeView},
			{Path: "/movie/:id/:tab", Name: "MovieTab", View: routeView},
			{Path: "/", Name: "Home", View: routeView},
		},
		"defaults": DefaultRoutes(Views{Home: routeView, Browse: routeView, MovieDetail: routeView, About: routeView}),
	}

	paths := []string{
		"/", "/browse", "/browse/", "/br%6Fwse", "/about",
		"/movie/random", "/movie/%72andom", "/movie/random/",
		"/movie/7", "/movie/7/cast", "/show/7", "/movie/the%20matrix",
		"/movie/a%2Fb", "/movie", "/nowhere/at/all/really",
	}

	for name, routes := range tables {
		t.Run(name, func(t *testing.T) {
			table, err := NewTable(routes)
			require.NoError(t, err)

			r := mux.NewRouter()
			table.Mount(r, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte("NoMatchingRoute"))
			}))

			for _, path := range paths {
				want := "NoMatchingRoute"
				if m, err := table.Resolve(path); err == nil {
					want = m.Route.Name + " " + m.Params["id"]
				}

				rr := httptest.NewRecorder()
				r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
				assert.Equal(t, want, rr.Body.String(), "path %s", path)
			}
		})
	}
}
