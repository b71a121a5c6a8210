package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRaw(t *testing.T, body string) RawMovie {
	t.Helper()
	var raw RawMovie
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return raw
}

const fullRecord = `{
	"id": 3175,
	"url": "https://yts.mx/movies/the-matrix-1999",
	"imdb_code": "tt0133093",
	"title": "The Matrix",
	"year": 1999,
	"rating": 8.7,
	"runtime": 136,
	"genres": ["Action","Sci-Fi"],
	"summary": "A hacker learns the truth.",
	"description_full": "Thomas Anderson is a computer programmer.",
	"language": "en",
	"mpa_rating": "R",
	"background_image": "https://img/bg.jpg",
	"background_image_original": "https://img/bg_orig.jpg",
	"small_cover_image": "https://img/small.jpg",
	"medium_cover_image": "https://img/medium.jpg",
	"large_cover_image": "https://img/large.jpg",
	"yt_trailer_code": "vKQi3bBA1y8",
	"torrents": [{"quality":"1080p","type":"bluray","seeds":120,"peers":8,"size":"2.1 GB","hash":"ABC"}],
	"cast": [{"name":"Keanu Reeves","character_name":"Neo"}],
	"like_count": 1500,
	"download_count": 900000
}`

func TestTransformMovie_FullRecord(t *testing.T) {
	movie := TransformMovie(decodeRaw(t, fullRecord))

	assert.Equal(t, "3175", string(movie.ID))
	assert.Equal(t, `"The Matrix"`, string(movie.Title))
	assert.Equal(t, "1999", string(movie.Year))
	assert.Equal(t, "8.7", string(movie.Rating))
	assert.Equal(t, "136", string(movie.Runtime))
	assert.Equal(t, `"Thomas Anderson is a computer programmer."`, string(movie.Description))
	assert.Equal(t, `"R"`, string(movie.MPARating))
	assert.Equal(t, `"vKQi3bBA1y8"`, string(movie.YTTrailerCode))
	assert.Equal(t, "900000", string(movie.DownloadCount))
	require.Len(t, movie.Genres, 2)
	assert.Equal(t, `"Action"`, string(movie.Genres[0]))
	assert.Equal(t, `"Sci-Fi"`, string(movie.Genres[1]))
	assert.Len(t, movie.Torrents, 1)
	assert.Len(t, movie.Cast, 1)
}

func TestTransformMovie_DropsUnknownFields(t *testing.T) {
	data, err := json.Marshal(TransformMovie(decodeRaw(t, fullRecord)))
	require.NoError(t, err)

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &out))
	assert.NotContains(t, out, "imdb_code")
	assert.NotContains(t, out, "url")
	assert.NotContains(t, out, "description_full")
	assert.Contains(t, out, "description")
}

func TestTransformMovie_EmptyRecord(t *testing.T) {
	movie := TransformMovie(RawMovie{})

	assert.NotNil(t, movie.Genres)
	assert.NotNil(t, movie.Torrents)
	assert.NotNil(t, movie.Cast)
	assert.Empty(t, movie.Genres)
	assert.Empty(t, movie.Torrents)
	assert.Empty(t, movie.Cast)
	assert.Nil(t, movie.ID)
	assert.Nil(t, movie.Title)
	assert.Nil(t, movie.Description)

	data, err := json.Marshal(movie)
	require.NoError(t, err)
	assert.JSONEq(t, `{"genres":[],"torrents":[],"cast":[]}`, string(data))
}

func TestTransformMovie_NilRecord(t *testing.T) {
	movie := TransformMovie(nil)

	assert.Equal(t, []json.RawMessage{}, movie.Genres)
	assert.Equal(t, []json.RawMessage{}, movie.Torrents)
	assert.Equal(t, []json.RawMessage{}, movie.Cast)
}

func TestTransformMovie_NullValues(t *testing.T) {
	raw := decodeRaw(t, `{"id": 5, "title": null, "rating": null, "genres": null, "torrents": null, "cast": null}`)

	movie := TransformMovie(raw)

	assert.Equal(t, "null", string(movie.Title), "null passes through as null")
	assert.Equal(t, "null", string(movie.Rating))
	assert.Nil(t, movie.Year, "absent stays absent")
	assert.Empty(t, movie.Genres)
	assert.NotNil(t, movie.Genres)
	assert.NotNil(t, movie.Torrents)
	assert.NotNil(t, movie.Cast)

	data, err := json.Marshal(movie)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":5,"title":null,"rating":null,"genres":[],"torrents":[],"cast":[]}`, string(data))
}

func TestTransformMovie_NonArraySequences(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"string", `"Drama"`},
		{"number", `3`},
		{"object", `{"name":"Drama"}`},
		{"bool", `false`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := RawMovie{
				"genres":   json.RawMessage(tt.value),
				"torrents": json.RawMessage(tt.value),
				"cast":     json.RawMessage(tt.value),
			}

			movie := TransformMovie(raw)

			assert.Equal(t, []json.RawMessage{}, movie.Genres)
			assert.Equal(t, []json.RawMessage{}, movie.Torrents)
			assert.Equal(t, []json.RawMessage{}, movie.Cast)
		})
	}
}

func TestTransformMovie_PassThroughIsVerbatim(t *testing.T) {
	raw := decodeRaw(t, `{"year": "1999", "rating": "eight", "runtime": [1,2], "language": {"code": "en"}}`)

	movie := TransformMovie(raw)

	assert.Equal(t, `"1999"`, string(movie.Year))
	assert.Equal(t, `"eight"`, string(movie.Rating))
	assert.Equal(t, `[1,2]`, string(movie.Runtime))
	assert.Equal(t, `{"code": "en"}`, string(movie.Language))
}

func TestTransformMovie_DescriptionFullWins(t *testing.T) {
	raw := decodeRaw(t, `{"description": "short", "description_full": "long"}`)

	assert.Equal(t, `"long"`, string(TransformMovie(raw).Description))
}

func TestTransformMovie_Idempotent(t *testing.T) {
	records := []string{
		fullRecord,
		`{}`,
		`{"id": 1, "title": null, "genres": null}`,
		`{"genres": ["Drama"], "cast": [ {"name": "A"} ], "torrents": []}`,
	}

	for _, record := range records {
		once := TransformMovie(decodeRaw(t, record))
		twice := TransformMovie(once.Raw())

		assert.Equal(t, once, twice)

		data, err := json.Marshal(once)
		require.NoError(t, err)
		viaJSON := TransformMovie(decodeRaw(t, string(data)))

		again, err := json.Marshal(viaJSON)
		require.NoError(t, err)
		assert.JSONEq(t, string(data), string(again))
	}
}

func TestTransformMovies(t *testing.T) {
	assert.Equal(t, []Movie{}, TransformMovies(nil))

	movies := TransformMovies([]RawMovie{
		decodeRaw(t, `{"id": 1}`),
		decodeRaw(t, `{"id": 2, "genres": ["Comedy"]}`),
	})

	require.Len(t, movies, 2)
	assert.Equal(t, "1", string(movies[0].ID))
	assert.Empty(t, movies[0].Genres)
	assert.Len(t, movies[1].Genres, 1)
}
