// Package main provides the entry point for the YTS movie browser web server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"ytsbrowser/config"
	"ytsbrowser/database"
	"ytsbrowser/jobs"
	"ytsbrowser/models"
	"ytsbrowser/repository"
	"ytsbrowser/router"
	"ytsbrowser/services"

	"github.com/gorilla/mux"
)

// App represents the application with its dependencies
type App struct {
	catalog    services.MovieCatalog
	viewEvents *repository.ViewEventRepository
	routes     *router.Table
	templates  *template.Template
}

// NewApp wires the page views into the route table. viewEvents may be nil.
func NewApp(catalog services.MovieCatalog, viewEvents *repository.ViewEventRepository) (*App, error) {
	app := &App{
		catalog:    catalog,
		viewEvents: viewEvents,
	}

	routes, err := router.NewTable(router.DefaultRoutes(router.Views{
		Home:        http.HandlerFunc(app.homeView),
		Browse:      http.HandlerFunc(app.browseView),
		MovieDetail: http.HandlerFunc(app.movieDetailView),
		About:       http.HandlerFunc(app.aboutView),
	}))
	if err != nil {
		return nil, err
	}
	app.routes = routes

	templates, err := parseTemplates(routes)
	if err != nil {
		return nil, err
	}
	app.templates = templates

	return app, nil
}

// Router builds the HTTP handler: health check, JSON API, then the page routes.
func (app *App) Router() *mux.Router {
	r := mux.NewRouter()

	// Health check endpoint
	r.HandleFunc("/health", healthHandler).Methods("GET")

	// API routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/movies", app.listMoviesHandler).Methods("GET")
	api.HandleFunc("/movies/{id}", app.getMovieHandler).Methods("GET")
	api.HandleFunc("/movies/{id}/suggestions", app.getSuggestionsHandler).Methods("GET")
	api.HandleFunc("/search", app.searchHandler).Methods("GET")
	api.HandleFunc("/history", app.historyHandler).Methods("GET")

	// Page routes
	app.routes.Mount(r, http.HandlerFunc(app.notFoundView))

	return r
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize database
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	// Initialize schema
	if err := db.InitSchema(); err != nil {
		log.Fatal("Failed to initialize schema:", err)
	}

	viewEventRepo := repository.NewViewEventRepository(db)

	jobManager := jobs.NewJobManager(jobs.NewRetentionJob(viewEventRepo, cfg.EventRetention), cfg.RetentionInterval)
	jobManager.Start()
	defer jobManager.Stop()

	app, err := NewApp(services.NewYTSService(), viewEventRepo)
	if err != nil {
		log.Fatal("Failed to initialize application:", err)
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      app.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

// movieListResponse is the JSON shape of a page of canonical movies
type movieListResponse struct {
	MovieCount int            `json:"movie_count"`
	PageNumber int            `json:"page_number,omitempty"`
	Limit      int            `json:"limit,omitempty"`
	Movies     []models.Movie `json:"movies"`
}

// queryParams copies every non-empty URL query value into YTS params
func queryParams(r *http.Request, skip ...string) services.QueryParams {
	params := services.QueryParams{}
	skipped := map[string]bool{}
	for _, k := range skip {
		skipped[k] = true
	}
	for key, values := range r.URL.Query() {
		if skipped[key] || len(values) == 0 || values[0] == "" {
			continue
		}
		params[key] = values[0]
	}
	return params
}

func (app *App) listMoviesHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := app.catalog.ListMovies(r.Context(), queryParams(r))
	if err != nil {
		log.Printf("Error listing movies: %v", err)
		http.Error(w, "Failed to fetch movies from YTS", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, movieListResponse{
		MovieCount: resp.Data.MovieCount,
		PageNumber: resp.Data.PageNumber,
		Limit:      resp.Data.Limit,
		Movies:     models.TransformMovies(resp.Data.Movies),
	})
}

func (app *App) searchHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "Query parameter q is required", http.StatusBadRequest)
		return
	}

	resp, err := app.catalog.SearchMovies(r.Context(), query, queryParams(r, "q", "query_term"))
	if err != nil {
		log.Printf("Error searching movies for %q: %v", query, err)
		http.Error(w, "Failed to search YTS", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, movieListResponse{
		MovieCount: resp.Data.MovieCount,
		PageNumber: resp.Data.PageNumber,
		Limit:      resp.Data.Limit,
		Movies:     models.TransformMovies(resp.Data.Movies),
	})
}

func (app *App) getMovieHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	resp, err := app.catalog.GetMovieDetails(r.Context(), id)
	if err != nil {
		log.Printf("Error getting movie %s: %v", id, err)
		http.Error(w, "Failed to fetch movie from YTS", http.StatusBadGateway)
		return
	}
	if !movieFound(resp) {
		http.Error(w, "Movie not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, models.TransformMovie(resp.Data.Movie))
}

func (app *App) getSuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	resp, err := app.catalog.GetMovieSuggestions(r.Context(), id)
	if err != nil {
		log.Printf("Error getting suggestions for movie %s: %v", id, err)
		http.Error(w, "Failed to fetch suggestions from YTS", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, movieListResponse{
		MovieCount: resp.Data.MovieCount,
		Movies:     models.TransformMovies(resp.Data.Movies),
	})
}

func (app *App) historyHandler(w http.ResponseWriter, r *http.Request) {
	if app.viewEvents == nil {
		http.Error(w, "View history is disabled", http.StatusServiceUnavailable)
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	recent, err := app.viewEvents.RecentMovies(limit)
	if err != nil {
		log.Printf("Error getting recent movies: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	stats, err := app.viewEvents.CountByRoute()
	if err != nil {
		log.Printf("Error getting route stats: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"recent_movies": recent,
		"route_views":   stats,
	})
}

// movieFound reports whether a details response carries a movie
func movieFound(resp *services.MovieDetailsResponse) bool {
	if resp.Status == "error" || len(resp.Data.Movie) == 0 {
		return false
	}
	id, ok := resp.Data.Movie["id"]
	return ok && string(id) != "0" && string(id) != "null"
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
