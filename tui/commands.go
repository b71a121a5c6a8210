package tui

import (
	"context"
	"net/url"
	"strings"

	"ytsbrowser/models"
	"ytsbrowser/router"
	"ytsbrowser/services"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

// listLoadedMsg carries a page of movies for the Home and Browse screens.
type listLoadedMsg struct {
	seq    int
	count  int
	movies []models.MovieCard
	err    error
}

// detailLoadedMsg carries a movie with its suggestions.
type detailLoadedMsg struct {
	seq         int
	movie       *models.MovieCard
	suggestions []models.MovieCard
	err         error
}

// fetchCmd loads the data behind match. Every message is tagged with seq so
// responses for a screen the user already left can be dropped.
func fetchCmd(ctx context.Context, catalog services.MovieCatalog, match *router.Match, seq int) tea.Cmd {
	if match == nil {
		return nil
	}

	switch match.Route.Name {
	case router.RouteHome:
		return func() tea.Msg {
			resp, err := catalog.ListMovies(ctx, nil)
			return listMsg(seq, resp, err)
		}

	case router.RouteBrowse:
		query, params := browseQuery(match.Path)
		return func() tea.Msg {
			var (
				resp *services.ListMoviesResponse
				err  error
			)
			if query != "" {
				resp, err = catalog.SearchMovies(ctx, query, params)
			} else {
				resp, err = catalog.ListMovies(ctx, params)
			}
			return listMsg(seq, resp, err)
		}

	case router.RouteMovieDetail:
		id := match.Props["id"]
		return func() tea.Msg {
			return loadDetail(ctx, catalog, id, seq)
		}
	}

	return nil
}

func listMsg(seq int, resp *services.ListMoviesResponse, err error) tea.Msg {
	if err != nil {
		return listLoadedMsg{seq: seq, err: err}
	}
	return listLoadedMsg{
		seq:    seq,
		count:  resp.Data.MovieCount,
		movies: models.Cards(resp.Data.Movies),
	}
}

func loadDetail(ctx context.Context, catalog services.MovieCatalog, id string, seq int) tea.Msg {
	var (
		details     *services.MovieDetailsResponse
		suggestions *services.MovieSuggestionsResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resp, err := catalog.GetMovieDetails(gctx, id)
		if err != nil {
			return err
		}
		details = resp
		return nil
	})
	g.Go(func() error {
		// suggestions are optional
		if resp, err := catalog.GetMovieSuggestions(gctx, id); err == nil {
			suggestions = resp
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return detailLoadedMsg{seq: seq, err: err}
	}

	msg := detailLoadedMsg{seq: seq, suggestions: []models.MovieCard{}}
	if details.Status != "error" && len(details.Data.Movie) > 0 {
		card := models.TransformMovie(details.Data.Movie).Card()
		if card.ID != "" && card.ID != "0" {
			msg.movie = &card
		}
	}
	if suggestions != nil {
		msg.suggestions = models.Cards(suggestions.Data.Movies)
	}
	return msg
}

// browseQuery splits a Browse path into the search text and list filters.
func browseQuery(path string) (string, services.QueryParams) {
	params := services.QueryParams{}

	i := strings.IndexByte(path, '?')
	if i < 0 {
		return "", params
	}
	values, err := url.ParseQuery(path[i+1:])
	if err != nil {
		return "", params
	}

	query := strings.TrimSpace(values.Get("q"))
	for key := range values {
		if key == "q" || key == "query_term" {
			continue
		}
		if v := strings.TrimSpace(values.Get(key)); v != "" {
			params[key] = v
		}
	}
	return query, params
}
