package main

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strings"

	"ytsbrowser/models"
	"ytsbrowser/router"
	"ytsbrowser/services"

	"golang.org/x/sync/errgroup"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	homeMovieLimit   = "8"
	recentMovieLimit = 6
)

// browseFilters are the URL query keys the Browse page forwards to YTS.
var browseFilters = []string{"quality", "genre", "minimum_rating", "sort_by", "order_by", "page", "limit"}

// pageData is the template context shared by every page
type pageData struct {
	Title       string
	Route       string
	Path        string
	Query       string
	Filters     map[string]string
	MovieCount  int
	Movies      []models.MovieCard
	Movie       *models.MovieCard
	Suggestions []models.MovieCard
	Recent      []models.RecentMovie
	Error       string
}

func parseTemplates(routes *router.Table) (*template.Template, error) {
	funcs := template.FuncMap{
		"movieURL": func(id string) string {
			u, err := routes.URL(router.RouteMovieDetail, map[string]string{"id": id})
			if err != nil {
				return "#"
			}
			return u
		},
		"list": func(items ...string) []string {
			return items
		},
		"routeURL": func(name string) string {
			u, err := routes.URL(name, nil)
			if err != nil {
				return "#"
			}
			return u
		},
	}

	tmpl, err := template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// render executes the named page into a buffer before writing the status.
func (app *App) render(w http.ResponseWriter, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := app.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("Error rendering %s: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func (app *App) renderUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	data := pageData{
		Title: "YTS is unavailable",
		Path:  r.URL.Path,
		Error: "The movie catalogue could not be reached.",
	}
	var reqErr *services.RequestError
	if errors.As(err, &reqErr) {
		data.Error = reqErr.Error()
	}
	app.render(w, http.StatusBadGateway, "error", data)
}

// recordView stores a view event; failures are logged and never block a page.
func (app *App) recordView(r *http.Request, movieID, title string) {
	if app.viewEvents == nil {
		return
	}

	routeName := ""
	if m, ok := router.MatchFromContext(r.Context()); ok {
		routeName = m.Route.Name
	}
	event := &models.ViewEvent{
		MovieID:   movieID,
		Title:     title,
		RouteName: routeName,
		Path:      r.URL.Path,
	}
	if err := app.viewEvents.Create(event); err != nil {
		log.Printf("Error recording view of %s: %v", r.URL.Path, err)
	}
}

func (app *App) homeView(w http.ResponseWriter, r *http.Request) {
	app.recordView(r, "", "")

	resp, err := app.catalog.ListMovies(r.Context(), services.QueryParams{"limit": homeMovieLimit})
	if err != nil {
		log.Printf("Error listing movies for home: %v", err)
		app.renderUpstreamError(w, r, err)
		return
	}

	data := pageData{
		Title:      "Popular downloads",
		Route:      router.RouteHome,
		Path:       r.URL.Path,
		MovieCount: resp.Data.MovieCount,
		Movies:     models.Cards(resp.Data.Movies),
		Recent:     []models.RecentMovie{},
	}

	if app.viewEvents != nil {
		recent, err := app.viewEvents.RecentMovies(recentMovieLimit)
		if err != nil {
			log.Printf("Error getting recent movies: %v", err)
		} else {
			data.Recent = recent
		}
	}

	app.render(w, http.StatusOK, "home", data)
}

func (app *App) browseView(w http.ResponseWriter, r *http.Request) {
	app.recordView(r, "", "")

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	filters := browseParams(r.URL.Query())

	var (
		resp *services.ListMoviesResponse
		err  error
	)
	if query != "" {
		resp, err = app.catalog.SearchMovies(r.Context(), query, filters)
	} else {
		resp, err = app.catalog.ListMovies(r.Context(), filters)
	}
	if err != nil {
		log.Printf("Error browsing movies: %v", err)
		app.renderUpstreamError(w, r, err)
		return
	}

	title := "Browse movies"
	if query != "" {
		title = fmt.Sprintf("Results for %q", query)
	}

	app.render(w, http.StatusOK, "browse", pageData{
		Title:      title,
		Route:      router.RouteBrowse,
		Path:       r.URL.Path,
		Query:      query,
		Filters:    filters,
		MovieCount: resp.Data.MovieCount,
		Movies:     models.Cards(resp.Data.Movies),
	})
}

// browseParams keeps the supported filters from the request query.
func browseParams(values url.Values) services.QueryParams {
	params := services.QueryParams{}
	for _, key := range browseFilters {
		if v := strings.TrimSpace(values.Get(key)); v != "" {
			params[key] = v
		}
	}
	return params
}

func (app *App) movieDetailView(w http.ResponseWriter, r *http.Request) {
	m, ok := router.MatchFromContext(r.Context())
	if !ok {
		app.notFoundView(w, r)
		return
	}
	id := m.Props["id"]

	var (
		details     *services.MovieDetailsResponse
		suggestions *services.MovieSuggestionsResponse
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		resp, err := app.catalog.GetMovieDetails(ctx, id)
		if err != nil {
			return err
		}
		details = resp
		return nil
	})
	g.Go(func() error {
		resp, err := app.catalog.GetMovieSuggestions(ctx, id)
		if err != nil {
			log.Printf("Error getting suggestions for movie %s: %v", id, err)
			return nil
		}
		suggestions = resp
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Printf("Error getting movie %s: %v", id, err)
		app.renderUpstreamError(w, r, err)
		return
	}

	if !movieFound(details) {
		app.render(w, http.StatusNotFound, "notfound", pageData{
			Title: "Movie not found",
			Path:  r.URL.Path,
		})
		return
	}

	card := models.TransformMovie(details.Data.Movie).Card()
	app.recordView(r, card.ID, card.Title)

	data := pageData{
		Title:       card.Title,
		Route:       router.RouteMovieDetail,
		Path:        r.URL.Path,
		Movie:       &card,
		Suggestions: []models.MovieCard{},
	}
	if suggestions != nil {
		data.Suggestions = models.Cards(suggestions.Data.Movies)
	}

	app.render(w, http.StatusOK, "movie", data)
}

func (app *App) aboutView(w http.ResponseWriter, r *http.Request) {
	app.recordView(r, "", "")

	app.render(w, http.StatusOK, "about", pageData{
		Title: "About",
		Route: router.RouteAbout,
		Path:  r.URL.Path,
	})
}

func (app *App) notFoundView(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Title: "Page not found",
		Path:  r.URL.Path,
	}
	if err, ok := router.NotFoundFromContext(r.Context()); ok {
		data.Error = err.Error()
	}
	app.render(w, http.StatusNotFound, "notfound", data)
}
