package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bookobot/booko/pkg/errcodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const googleSearchBody = `{
	"totalItems": 2,
	"items": [
		{
			"selfLink": "https://www.googleapis.com/books/v1/volumes/abc",
			"volumeInfo": {
				"title": "The Left Hand of Darkness",
				"authors": ["Ursula K. Le Guin"],
				"language": "en",
				"industryIdentifiers": [
					{"type": "ISBN_10", "identifier": "0441478123"},
					{"type": "ISBN_13", "identifier": "9780441478125"}
				],
				"imageLinks": {"thumbnail": "https://img.example/left-hand.jpg"}
			}
		},
		{
			"selfLink": "https://www.googleapis.com/books/v1/volumes/def",
			"volumeInfo": {
				"title": "Untranslated Edition",
				"authors": ["Ursula K. Le Guin"],
				"language": "de",
				"industryIdentifiers": [{"type": "OTHER", "identifier": "OCLC:1234"}]
			}
		}
	]
}`

func TestGoogleBooksSearchByAuthorTitle(t *testing.T) {
	t.Parallel()

	var gotQuery, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotKey = r.URL.Query().Get("key")
		w.Write([]byte(googleSearchBody))
	}))
	defer server.Close()

	provider := NewGoogleBooks("test-key", server.Client())
	provider.BaseURL = server.URL

	books, err := provider.SearchByAuthorTitle(context.Background(), "Le Guin", "Left Hand")
	require.NoError(t, err)
	require.Len(t, books, 2)

	assert.Equal(t, "intitle:Left Hand inauthor:Le Guin", gotQuery)
	assert.Equal(t, "test-key", gotKey)

	first := books[0]
	assert.Equal(t, "The Left Hand of Darkness", first.Title)
	assert.Equal(t, "Ursula K. Le Guin", first.Author)
	assert.Equal(t, "9780441478125", first.ISBN, "ISBN-13 preferred over ISBN-10")
	assert.Equal(t, "en", first.Language)
	require.NotNil(t, first.ThumbnailURL)
	assert.Equal(t, "https://img.example/left-hand.jpg", *first.ThumbnailURL)

	// Entries with no usable ISBN still come back; the pipeline skips them.
	second := books[1]
	assert.Equal(t, "", second.ISBN)
	assert.Equal(t, "de", second.Language)
	assert.Nil(t, second.ThumbnailURL)
}

func TestGoogleBooksSearchNoResults(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"totalItems": 0}`))
	}))
	defer server.Close()

	provider := NewGoogleBooks("test-key", server.Client())
	provider.BaseURL = server.URL

	books, err := provider.SearchByAuthorTitle(context.Background(), "Nobody", "Nothing")
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestGoogleBooksThumbnail(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "isbn:9780441478125", r.URL.Query().Get("q"))
		w.Write([]byte(`{
			"totalItems": 1,
			"items": [{"volumeInfo": {"imageLinks": {"smallThumbnail": "https://img.example/small.jpg"}}}]
		}`))
	}))
	defer server.Close()

	provider := NewGoogleBooks("test-key", server.Client())
	provider.BaseURL = server.URL

	thumb, err := provider.Thumbnail(context.Background(), "9780441478125")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/small.jpg", thumb)
}

func TestGoogleBooksThumbnailMissing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"totalItems": 0}`))
	}))
	defer server.Close()

	provider := NewGoogleBooks("test-key", server.Client())
	provider.BaseURL = server.URL

	_, err := provider.Thumbnail(context.Background(), "9780441478125")
	assert.ErrorIs(t, err, errcodes.NotFound("Thumbnail"))
}

func TestGoogleBooksTransportFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewGoogleBooks("test-key", server.Client())
	provider.BaseURL = server.URL

	_, err := provider.SearchByAuthorTitle(context.Background(), "A", "T")
	assert.ErrorIs(t, err, errcodes.ProviderUnavailable("Google Books"))
}
