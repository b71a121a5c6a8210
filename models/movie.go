// Package models defines the data structures used throughout the application.
package models

import (
	"bytes"
	"encoding/json"
)

// RawMovie is a movie record exactly as the YTS API returned it.
// Any key may be missing and any value may be JSON null.
type RawMovie map[string]json.RawMessage

// Movie is the canonical movie shape consumed by the views.
// Genres, Torrents and Cast are never nil once produced by TransformMovie.
// Every other field holds the raw JSON value; nil means the source lacked it.
type Movie struct {
	ID                      json.RawMessage   `json:"id,omitempty"`
	Title                   json.RawMessage   `json:"title,omitempty"`
	Year                    json.RawMessage   `json:"year,omitempty"`
	Rating                  json.RawMessage   `json:"rating,omitempty"`
	Runtime                 json.RawMessage   `json:"runtime,omitempty"`
	Genres                  []json.RawMessage `json:"genres"`
	Summary                 json.RawMessage   `json:"summary,omitempty"`
	Description             json.RawMessage   `json:"description,omitempty"`
	Language                json.RawMessage   `json:"language,omitempty"`
	MPARating               json.RawMessage   `json:"mpa_rating,omitempty"`
	BackgroundImage         json.RawMessage   `json:"background_image,omitempty"`
	BackgroundImageOriginal json.RawMessage   `json:"background_image_original,omitempty"`
	SmallCoverImage         json.RawMessage   `json:"small_cover_image,omitempty"`
	MediumCoverImage        json.RawMessage   `json:"medium_cover_image,omitempty"`
	LargeCoverImage         json.RawMessage   `json:"large_cover_image,omitempty"`
	YTTrailerCode           json.RawMessage   `json:"yt_trailer_code,omitempty"`
	Torrents                []json.RawMessage `json:"torrents"`
	Cast                    []json.RawMessage `json:"cast"`
	LikeCount               json.RawMessage   `json:"like_count,omitempty"`
	DownloadCount           json.RawMessage   `json:"download_count,omitempty"`
}

// TransformMovie normalizes a raw API record into the canonical Movie shape.
// It never fails: sequences default to empty, everything else is copied as is.
func TransformMovie(raw RawMovie) Movie {
	description, ok := raw["description_full"]
	if !ok {
		// canonical input already carries "description"
		description = raw["description"]
	}

	return Movie{
		ID:                      raw["id"],
		Title:                   raw["title"],
		Year:                    raw["year"],
		Rating:                  raw["rating"],
		Runtime:                 raw["runtime"],
		Genres:                  sequence(raw["genres"]),
		Summary:                 raw["summary"],
		Description:             description,
		Language:                raw["language"],
		MPARating:               raw["mpa_rating"],
		BackgroundImage:         raw["background_image"],
		BackgroundImageOriginal: raw["background_image_original"],
		SmallCoverImage:         raw["small_cover_image"],
		MediumCoverImage:        raw["medium_cover_image"],
		LargeCoverImage:         raw["large_cover_image"],
		YTTrailerCode:           raw["yt_trailer_code"],
		Torrents:                sequence(raw["torrents"]),
		Cast:                    sequence(raw["cast"]),
		LikeCount:               raw["like_count"],
		DownloadCount:           raw["download_count"],
	}
}

// TransformMovies applies TransformMovie to every record. The result is never nil.
func TransformMovies(raws []RawMovie) []Movie {
	movies := make([]Movie, 0, len(raws))
	for _, raw := range raws {
		movies = append(movies, TransformMovie(raw))
	}
	return movies
}

// sequence returns the elements of a JSON array, or an empty slice for
// anything that is not an array (missing, null, scalar, object).
func sequence(value json.RawMessage) []json.RawMessage {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []json.RawMessage{}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil || items == nil {
		return []json.RawMessage{}
	}
	return items
}

// Raw converts a canonical movie back into a record TransformMovie accepts.
// Absent fields stay absent.
func (m Movie) Raw() RawMovie {
	raw := RawMovie{}
	set := func(key string, value json.RawMessage) {
		if value != nil {
			raw[key] = value
		}
	}

	set("id", m.ID)
	set("title", m.Title)
	set("year", m.Year)
	set("rating", m.Rating)
	set("runtime", m.Runtime)
	set("summary", m.Summary)
	set("description", m.Description)
	set("language", m.Language)
	set("mpa_rating", m.MPARating)
	set("background_image", m.BackgroundImage)
	set("background_image_original", m.BackgroundImageOriginal)
	set("small_cover_image", m.SmallCoverImage)
	set("medium_cover_image", m.MediumCoverImage)
	set("large_cover_image", m.LargeCoverImage)
	set("yt_trailer_code", m.YTTrailerCode)
	set("like_count", m.LikeCount)
	set("download_count", m.DownloadCount)

	raw["genres"] = joinArray(m.Genres)
	raw["torrents"] = joinArray(m.Torrents)
	raw["cast"] = joinArray(m.Cast)
	return raw
}

func joinArray(items []json.RawMessage) json.RawMessage {
	return append(append([]byte{'['}, bytes.Join(toBytes(items), []byte{','})...), ']')
}

func toBytes(items []json.RawMessage) [][]byte {
	out := make([][]byte, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
