// Package tui provides a Bubble Tea terminal browser for the YTS catalogue.
//
// Screens are the routes of router.DefaultRoutes. Every navigation goes
// through a router.Navigator, so back and forward restore the list cursor
// the user left behind while fresh links start at the top.
package tui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"ytsbrowser/models"
	"ytsbrowser/router"
	"ytsbrowser/services"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Options configures the browser.
type Options struct {
	Context   context.Context
	Catalog   services.MovieCatalog
	StartPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx     context.Context
	catalog services.MovieCatalog
	table   *router.Table
	nav     *router.Navigator
	keys    keyMap
	styles  styles

	width  int
	height int

	// seq identifies the latest navigation; older responses are ignored
	seq     int
	loading bool
	err     error
	notice  string
	scroll  router.Position

	// Screen data
	movieCount  int
	movies      []models.MovieCard
	movie       *models.MovieCard
	suggestions []models.MovieCard
	cursor      int

	searching bool
	search    textinput.Model
}

// New creates a model positioned on opts.StartPath, or on the home screen
// when the path is empty or matches no route.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	table := router.MustNewTable(router.DefaultRoutes(router.Views{}))

	search := textinput.New()
	search.Placeholder = "Search movies"
	search.Prompt = "/ "
	search.CharLimit = 120

	m := Model{
		ctx:     ctx,
		catalog: opts.Catalog,
		table:   table,
		nav:     router.NewNavigator(table),
		keys:    DefaultKeyMap(),
		styles:  defaultStyles(),
		search:  search,
	}

	start := opts.StartPath
	if start == "" {
		start = "/"
	}
	nav, err := m.nav.Push(start, router.Position{})
	if err != nil {
		m.notice = err.Error()
		nav, _ = m.nav.Push("/", router.Position{})
	}
	m.begin(nav)

	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return fetchCmd(m.ctx, m.catalog, m.nav.Current(), m.seq)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search.Width = max(msg.Width-4, 10)
		return m, nil

	case listLoadedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.movieCount = msg.count
		m.movies = msg.movies
		m.cursor = clamp(m.scroll.Top, len(m.movies))
		return m, nil

	case detailLoadedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.movie = msg.movie
		m.suggestions = msg.suggestions
		m.cursor = clamp(m.scroll.Top, len(m.suggestions))
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKey(msg)
	}

	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue("")
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items())-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Open):
		items := m.items()
		if m.cursor >= len(items) || items[m.cursor].ID == "" {
			return m, nil
		}
		path, err := m.table.URL(router.RouteMovieDetail, map[string]string{"id": items[m.cursor].ID})
		if err != nil {
			m.notice = err.Error()
			return m, nil
		}
		return m.push(path)

	case key.Matches(msg, m.keys.Back):
		nav, err := m.nav.Back(m.position())
		return m.traverse(nav, err)

	case key.Matches(msg, m.keys.Forward):
		nav, err := m.nav.Forward(m.position())
		return m.traverse(nav, err)

	case key.Matches(msg, m.keys.Home):
		return m.push("/")

	case key.Matches(msg, m.keys.Browse):
		return m.push("/browse")

	case key.Matches(msg, m.keys.About):
		return m.push("/about")

	case key.Matches(msg, m.keys.Reload):
		m.scroll = m.position()
		m.seq++
		m.loading = true
		m.err = nil
		cmd := fetchCmd(m.ctx, m.catalog, m.nav.Current(), m.seq)
		if cmd == nil {
			m.loading = false
		}
		return m, cmd
	}

	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		m.searching = false
		m.search.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		m.searching = false
		m.search.Blur()
		query := strings.TrimSpace(m.search.Value())
		if query == "" {
			return m, nil
		}
		path := "/browse?q=" + url.QueryEscape(query)
		if current := m.nav.Current(); current != nil && current.Route.Name == router.RouteBrowse {
			if q, _ := browseQuery(current.Path); q != "" {
				return m.replace(path)
			}
		}
		return m.push(path)
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// push follows a link to path.
func (m Model) push(path string) (tea.Model, tea.Cmd) {
	nav, err := m.nav.Push(path, m.position())
	if err != nil {
		m.notice = err.Error()
		return m, nil
	}
	return m, m.begin(nav)
}

// replace swaps the current screen for path, as when refining a search.
func (m Model) replace(path string) (tea.Model, tea.Cmd) {
	nav, err := m.nav.Replace(path)
	if err != nil {
		m.notice = err.Error()
		return m, nil
	}
	return m, m.begin(nav)
}

// traverse applies a back or forward navigation.
func (m Model) traverse(nav *router.Navigation, err error) (tea.Model, tea.Cmd) {
	if errors.Is(err, router.ErrNoHistory) {
		return m, nil
	}
	if err != nil {
		m.notice = err.Error()
		return m, nil
	}
	return m, m.begin(nav)
}

// begin resets screen state for nav and returns the command loading it.
func (m *Model) begin(nav *router.Navigation) tea.Cmd {
	m.seq++
	m.scroll = nav.Scroll
	m.err = nil
	m.movieCount = 0
	m.movies = nil
	m.movie = nil
	m.suggestions = nil
	m.cursor = 0

	cmd := fetchCmd(m.ctx, m.catalog, nav.To, m.seq)
	m.loading = cmd != nil
	return cmd
}

// items returns the selectable movies on the current screen.
func (m Model) items() []models.MovieCard {
	if m.route() == router.RouteMovieDetail {
		return m.suggestions
	}
	return m.movies
}

func (m Model) route() string {
	if current := m.nav.Current(); current != nil {
		return current.Route.Name
	}
	return ""
}

func (m Model) position() router.Position {
	return router.Position{Top: m.cursor}
}

// View implements tea.Model.
func (m Model) View() string {
	sections := []string{m.renderHeader()}

	if m.searching {
		sections = append(sections, m.search.View())
	}

	switch {
	case m.loading:
		sections = append(sections, m.styles.Muted.Render("Loading..."))
	case m.err != nil:
		sections = append(sections, m.renderError())
	default:
		sections = append(sections, m.renderBody())
	}

	if m.notice != "" {
		sections = append(sections, m.styles.Notice.Render(m.notice))
	}
	sections = append(sections, m.renderHelp())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	parts := []string{m.styles.Logo.Render("YTS")}
	for _, item := range []struct{ name, label string }{
		{router.RouteHome, "Home"},
		{router.RouteBrowse, "Browse"},
		{router.RouteAbout, "About"},
	} {
		style := m.styles.NavItem
		if m.route() == item.name {
			style = m.styles.NavActive
		}
		parts = append(parts, style.Render(item.label))
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if current := m.nav.Current(); current != nil {
		header += "  " + m.styles.Muted.Render(current.Path)
	}
	if n := m.nav.Len(); n > 1 {
		header += m.styles.Muted.Render(fmt.Sprintf("  (%d in history)", n))
	}
	return header + "\n"
}

func (m Model) renderError() string {
	msg := m.err.Error()
	if errors.Is(m.err, services.ErrRequestFailed) {
		msg = "YTS is unavailable: " + msg
	}
	return m.styles.Error.Render(msg) + "\n" + m.styles.Muted.Render("press r to retry")
}

func (m Model) renderBody() string {
	switch m.route() {
	case router.RouteHome:
		return m.styles.Title.Render("Popular downloads") + "\n" + m.renderList(m.movies)

	case router.RouteBrowse:
		title := "Browse movies"
		if query, _ := browseQuery(m.nav.Current().Path); query != "" {
			title = fmt.Sprintf("Results for %q", query)
		}
		title += m.styles.Muted.Render(fmt.Sprintf("  (%d)", m.movieCount))
		return m.styles.Title.Render(title) + "\n" + m.renderList(m.movies)

	case router.RouteMovieDetail:
		return m.renderDetail()

	case router.RouteAbout:
		return m.styles.Title.Render("About") + "\n" +
			m.styles.Text.Render("Browse, search and inspect movies listed by the public YTS API.") + "\n" +
			m.styles.Muted.Render("Listings default to 1080p releases ordered by download count.")
	}
	return ""
}

func (m Model) renderList(movies []models.MovieCard) string {
	if len(movies) == 0 {
		return m.styles.Muted.Render("No movies found.")
	}

	start, end := visibleRange(m.cursor, len(movies), m.listHeight())
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderRow(movies[i], i == m.cursor))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(movie models.MovieCard, selected bool) string {
	line := movie.Title
	if movie.Year > 0 {
		line += fmt.Sprintf(" (%d)", movie.Year)
	}
	rating := m.styles.Rating.Render(fmt.Sprintf("★ %.1f", movie.Rating))
	genres := m.styles.Muted.Render(movie.GenreList())

	if selected {
		return m.styles.Selected.Render("> "+line) + "  " + rating + "  " + genres
	}
	return "  " + m.styles.Text.Render(line) + "  " + rating + "  " + genres
}

func (m Model) renderDetail() string {
	if m.movie == nil {
		return m.styles.Error.Render("Movie not found")
	}
	movie := m.movie

	meta := []string{}
	if movie.Year > 0 {
		meta = append(meta, fmt.Sprintf("%d", movie.Year))
	}
	if runtime := movie.RuntimeText(); runtime != "" {
		meta = append(meta, runtime)
	}
	if movie.MPARating != "" {
		meta = append(meta, movie.MPARating)
	}
	meta = append(meta, m.styles.Rating.Render(fmt.Sprintf("★ %.1f", movie.Rating)))

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(movie.Title) + "\n")
	b.WriteString(m.styles.Muted.Render(strings.Join(meta, " · ")) + "\n")
	if genres := movie.GenreList(); genres != "" {
		b.WriteString(m.styles.Muted.Render(genres) + "\n")
	}
	if movie.Description != "" {
		width := m.width
		if width <= 0 {
			width = 80
		}
		b.WriteString("\n" + m.styles.Text.Width(width).Render(movie.Description) + "\n")
	}

	b.WriteString(m.styles.Section.Render("Downloads") + "\n")
	if len(movie.Torrents) == 0 {
		b.WriteString(m.styles.Muted.Render("No downloads available.") + "\n")
	}
	for _, t := range movie.Torrents {
		b.WriteString(fmt.Sprintf("  %s %s  %s  %d seeds\n", t.Quality, t.Type, t.Size, t.Seeds))
	}

	if len(movie.Cast) > 0 {
		b.WriteString(m.styles.Section.Render("Cast") + "\n")
		for _, c := range movie.Cast {
			line := "  " + c.Name
			if c.CharacterName != "" {
				line += " as " + c.CharacterName
			}
			b.WriteString(line + "\n")
		}
	}

	if len(m.suggestions) > 0 {
		b.WriteString(m.styles.Section.Render("You may also like") + "\n")
		b.WriteString(m.renderList(m.suggestions))
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderHelp() string {
	if m.searching {
		return m.styles.Help.Render("enter search • esc cancel")
	}
	parts := make([]string, 0, len(m.keys.shortHelp()))
	for _, b := range m.keys.shortHelp() {
		switch {
		case b.Help() == m.keys.Back.Help() && !m.nav.CanGoBack():
			continue
		case b.Help() == m.keys.Forward.Help() && !m.nav.CanGoForward():
			continue
		}
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return "\n" + m.styles.Help.Render(strings.Join(parts, " • "))
}

// listHeight is the number of list rows that fit below the header.
func (m Model) listHeight() int {
	if m.height <= 0 {
		return 0
	}
	return max(m.height-6, 3)
}

// visibleRange returns the window of rows to draw so that cursor is visible.
// A height of zero draws every row.
func visibleRange(cursor, total, height int) (int, int) {
	if height <= 0 || total <= height {
		return 0, total
	}
	start := cursor - height/2
	start = max(start, 0)
	start = min(start, total-height)
	return start, start + height
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
