package models

import "time"

// ViewEvent records one page navigation served to a visitor.
type ViewEvent struct {
	ID        int       `json:"id"`
	MovieID   string    `json:"movie_id,omitempty"`
	Title     string    `json:"title,omitempty"`
	RouteName string    `json:"route_name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// RecentMovie is a movie the visitor opened recently.
type RecentMovie struct {
	MovieID      string    `json:"movie_id"`
	Title        string    `json:"title"`
	LastViewedAt time.Time `json:"last_viewed_at"`
	Views        int       `json:"views"`
}

// RouteStats counts views per named route.
type RouteStats struct {
	RouteName string `json:"route_name"`
	Views     int    `json:"views"`
}
