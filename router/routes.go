package router

import "net/http"

// Route names.
const (
	RouteHome        = "Home"
	RouteBrowse      = "Browse"
	RouteMovieDetail = "MovieDetail"
	RouteAbout       = "About"
)

// Views holds the renderers behind each named route. Nil views are allowed
// for callers that dispatch on the route name instead.
type Views struct {
	Home        http.Handler
	Browse      http.Handler
	MovieDetail http.Handler
	About       http.Handler
}

// DefaultRoutes returns the application's route list.
func DefaultRoutes(v Views) []Route {
	return []Route{
		{Path: "/", Name: RouteHome, View: v.Home},
		{Path: "/browse", Name: RouteBrowse, View: v.Browse},
		{Path: "/movie/:id", Name: RouteMovieDetail, View: v.MovieDetail, PropsFromParams: true},
		{Path: "/about", Name: RouteAbout, View: v.About},
	}
}
