package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Torrent is one downloadable release attached to a YTS movie.
type Torrent struct {
	URL              string `json:"url"`
	Hash             string `json:"hash"`
	Quality          string `json:"quality"`
	Type             string `json:"type"`
	VideoCodec       string `json:"video_codec"`
	Seeds            int    `json:"seeds"`
	Peers            int    `json:"peers"`
	Size             string `json:"size"`
	SizeBytes        int64  `json:"size_bytes"`
	DateUploaded     string `json:"date_uploaded"`
	DateUploadedUnix int64  `json:"date_uploaded_unix"`
}

// CastMember is an actor entry returned when details are requested with cast.
type CastMember struct {
	Name          string `json:"name"`
	CharacterName string `json:"character_name"`
	URLSmallImage string `json:"url_small_image"`
	IMDBCode      string `json:"imdb_code"`
}

// MovieCard is a display-ready view of a Movie. Values that are missing
// or of an unexpected type come out as zero values.
type MovieCard struct {
	ID              string
	Title           string
	Year            int
	Rating          float64
	Runtime         int
	Genres          []string
	Summary         string
	Description     string
	Language        string
	MPARating       string
	BackgroundImage string
	CoverImage      string
	LargeCoverImage string
	TrailerCode     string
	Torrents        []Torrent
	Cast            []CastMember
	LikeCount       int
	DownloadCount   int
}

// Card decodes the canonical movie into typed display values.
func (m Movie) Card() MovieCard {
	card := MovieCard{
		ID:              scalarString(m.ID),
		Title:           scalarString(m.Title),
		Summary:         scalarString(m.Summary),
		Description:     scalarString(m.Description),
		Language:        scalarString(m.Language),
		MPARating:       scalarString(m.MPARating),
		BackgroundImage: scalarString(m.BackgroundImage),
		CoverImage:      scalarString(m.MediumCoverImage),
		LargeCoverImage: scalarString(m.LargeCoverImage),
		TrailerCode:     scalarString(m.YTTrailerCode),
	}
	decodeLenient(m.Year, &card.Year)
	decodeLenient(m.Rating, &card.Rating)
	decodeLenient(m.Runtime, &card.Runtime)
	decodeLenient(m.LikeCount, &card.LikeCount)
	decodeLenient(m.DownloadCount, &card.DownloadCount)

	if card.CoverImage == "" {
		card.CoverImage = scalarString(m.SmallCoverImage)
	}
	if card.BackgroundImage == "" {
		card.BackgroundImage = scalarString(m.BackgroundImageOriginal)
	}

	card.Genres = make([]string, 0, len(m.Genres))
	for _, genre := range m.Genres {
		if name := scalarString(genre); name != "" {
			card.Genres = append(card.Genres, name)
		}
	}

	card.Torrents = make([]Torrent, 0, len(m.Torrents))
	for _, raw := range m.Torrents {
		var torrent Torrent
		if decodeLenient(raw, &torrent) {
			card.Torrents = append(card.Torrents, torrent)
		}
	}

	card.Cast = make([]CastMember, 0, len(m.Cast))
	for _, raw := range m.Cast {
		var member CastMember
		if decodeLenient(raw, &member) {
			card.Cast = append(card.Cast, member)
		}
	}

	return card
}

// Cards transforms raw records and decodes each into a MovieCard.
func Cards(raws []RawMovie) []MovieCard {
	movies := TransformMovies(raws)
	cards := make([]MovieCard, 0, len(movies))
	for _, movie := range movies {
		cards = append(cards, movie.Card())
	}
	return cards
}

// GenreList joins genres for compact display.
func (c MovieCard) GenreList() string {
	return strings.Join(c.Genres, " / ")
}

// RuntimeText renders runtime as "1h 52m".
func (c MovieCard) RuntimeText() string {
	if c.Runtime <= 0 {
		return ""
	}
	if c.Runtime < 60 {
		return fmt.Sprintf("%dm", c.Runtime)
	}
	return fmt.Sprintf("%dh %02dm", c.Runtime/60, c.Runtime%60)
}

// scalarString renders a JSON string or number as text.
func scalarString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func decodeLenient(raw json.RawMessage, dst interface{}) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}
