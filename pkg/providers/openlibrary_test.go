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

func TestOpenLibraryStaticURLs(t *testing.T) {
	t.Parallel()

	provider := NewOpenLibrary(nil)
	ctx := context.Background()

	link, err := provider.CatalogLink(ctx, "9780441478125")
	require.NoError(t, err)
	assert.Equal(t, "https://openlibrary.org/isbn/9780441478125", link)

	thumb, err := provider.Thumbnail(ctx, "9780441478125")
	require.NoError(t, err)
	assert.Equal(t, "https://covers.openlibrary.org/b/isbn/9780441478125-M.jpg", thumb)
}

func TestOpenLibraryResolveByISBN(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/books", r.URL.Path)
		assert.Equal(t, "ISBN:9780441478125", r.URL.Query().Get("bibkeys"))
		assert.Equal(t, "details", r.URL.Query().Get("jscmd"))
		w.Write([]byte(`{
			"ISBN:9780441478125": {
				"details": {
					"title": "The Left Hand of Darkness",
					"key": "/books/OL7353617M",
					"authors": [{"name": "Ursula K. Le Guin"}],
					"identifiers": {"goodreads": ["18423"]}
				}
			}
		}`))
	}))
	defer server.Close()

	provider := NewOpenLibrary(server.Client())
	provider.BaseURL = server.URL

	book, err := provider.ResolveByISBN(context.Background(), "9780441478125")
	require.NoError(t, err)

	assert.Equal(t, "The Left Hand of Darkness", book.Title)
	assert.Equal(t, "Ursula K. Le Guin", book.Author)
	assert.Equal(t, "9780441478125", book.ISBN)
	require.NotNil(t, book.CatalogURL)
	assert.Equal(t, server.URL+"/books/OL7353617M", *book.CatalogURL)
	require.NotNil(t, book.SocialURL)
	assert.Equal(t, "https://www.goodreads.com/book/show/18423", *book.SocialURL)
	require.NotNil(t, book.ThumbnailURL)
}

func TestOpenLibraryResolveByISBNMiss(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	provider := NewOpenLibrary(server.Client())
	provider.BaseURL = server.URL

	_, err := provider.ResolveByISBN(context.Background(), "0000000000")
	assert.ErrorIs(t, err, errcodes.NotFound("Book"))
}

func TestOpenLibrarySearchByAuthorTitle(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		w.Write([]byte(`{
			"docs": [
				{
					"title": "The Dispossessed",
					"author_name": ["Ursula K. Le Guin"],
					"isbn": ["9780061054884"],
					"key": "/works/OL59711W",
					"id_goodreads": ["13651"]
				},
				{
					"title": "No ISBN Entry",
					"author_name": ["Someone"]
				}
			]
		}`))
	}))
	defer server.Close()

	provider := NewOpenLibrary(server.Client())
	provider.BaseURL = server.URL

	books, err := provider.SearchByAuthorTitle(context.Background(), "Le Guin", "Dispossessed")
	require.NoError(t, err)
	require.Len(t, books, 2)

	first := books[0]
	assert.Equal(t, "9780061054884", first.ISBN)
	require.NotNil(t, first.SocialURL)
	assert.Equal(t, "https://www.goodreads.com/book/show/13651", *first.SocialURL)

	assert.Equal(t, "", books[1].ISBN)
}
