package providers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/bookobot/booko/pkg/errcodes"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
)

const (
	openLibraryBaseURL   = "https://openlibrary.org"
	openLibraryCoversURL = "https://covers.openlibrary.org"
)

// OpenLibrary is the secondary provider. Its catalog link and cover URLs
// are ISBN-addressable and always present; its detail record is the first
// source of the structured Goodreads identifier.
type OpenLibrary struct {
	// BaseURL and CoversURL are overridable for tests.
	BaseURL   string
	CoversURL string

	client *http.Client
}

func NewOpenLibrary(client *http.Client) *OpenLibrary {
	return &OpenLibrary{
		BaseURL:   openLibraryBaseURL,
		CoversURL: openLibraryCoversURL,
		client:    orDefaultClient(client),
	}
}

func (o *OpenLibrary) Name() string {
	return "Open Library"
}

// CatalogLink is a static ISBN-addressed URL and never requires a request.
func (o *OpenLibrary) CatalogLink(_ context.Context, isbn string) (string, error) {
	return o.BaseURL + "/isbn/" + isbn, nil
}

// Thumbnail is a static ISBN-addressed cover URL.
func (o *OpenLibrary) Thumbnail(_ context.Context, isbn string) (string, error) {
	return o.CoversURL + "/b/isbn/" + isbn + "-M.jpg", nil
}

type openLibraryBookEntry struct {
	Details openLibraryDetails `json:"details"`
}

type openLibraryDetails struct {
	Title       string              `json:"title"`
	Key         string              `json:"key"`
	Authors     []openLibraryAuthor `json:"authors"`
	Identifiers map[string][]string `json:"identifiers"`
}

type openLibraryAuthor struct {
	Name string `json:"name"`
}

// ResolveByISBN fetches the detail record for an ISBN. The structured
// Goodreads identifier, when present, becomes the social-catalog URL.
func (o *OpenLibrary) ResolveByISBN(ctx context.Context, isbn string) (*PartialBook, error) {
	key := "ISBN:" + isbn
	params := url.Values{}
	params.Set("bibkeys", key)
	params.Set("jscmd", "details")
	params.Set("format", "json")
	reqURL := o.BaseURL + "/api/books?" + params.Encode()

	logger.FromContext(ctx).Debug("querying open library", logger.Data{"isbn": isbn})

	data := map[string]openLibraryBookEntry{}
	if err := o.getJSON(ctx, reqURL, &data); err != nil {
		return nil, err
	}

	entry, ok := data[key]
	if !ok {
		return nil, errcodes.NotFound("Book")
	}
	details := entry.Details

	names := make([]string, 0, len(details.Authors))
	for _, author := range details.Authors {
		names = append(names, author.Name)
	}

	book := &PartialBook{
		Title:  details.Title,
		Author: strings.Join(names, ", "),
		ISBN:   isbn,
	}
	if details.Key != "" {
		catalogURL := o.BaseURL + details.Key
		book.CatalogURL = &catalogURL
	}
	if ids := details.Identifiers["goodreads"]; len(ids) > 0 {
		socialURL := GoodreadsBookURL(ids[0])
		book.SocialURL = &socialURL
	}
	if thumb, err := o.Thumbnail(ctx, isbn); err == nil {
		book.ThumbnailURL = &thumb
	}
	return book, nil
}

type openLibrarySearchResponse struct {
	Docs []openLibrarySearchDoc `json:"docs"`
}

type openLibrarySearchDoc struct {
	Title       string   `json:"title"`
	AuthorName  []string `json:"author_name"`
	ISBN        []string `json:"isbn"`
	Key         string   `json:"key"`
	IDGoodreads []string `json:"id_goodreads"`
}

// SearchByAuthorTitle queries search.json. Docs are returned as-is; entries
// without a usable ISBN surface with an empty ISBN for the caller to skip.
func (o *OpenLibrary) SearchByAuthorTitle(ctx context.Context, author, title string) ([]*PartialBook, error) {
	params := url.Values{}
	params.Set("author", author)
	params.Set("title", title)
	reqURL := o.BaseURL + "/search.json?" + params.Encode()

	logger.FromContext(ctx).Debug("searching open library", logger.Data{"author": author, "title": title})

	var decoded openLibrarySearchResponse
	if err := o.getJSON(ctx, reqURL, &decoded); err != nil {
		return nil, err
	}

	books := make([]*PartialBook, 0, len(decoded.Docs))
	for _, doc := range decoded.Docs {
		book := &PartialBook{
			Title:  doc.Title,
			Author: strings.Join(doc.AuthorName, ", "),
		}
		if len(doc.ISBN) > 0 {
			book.ISBN = doc.ISBN[0]
		}
		if doc.Key != "" {
			catalogURL := o.BaseURL + doc.Key
			book.CatalogURL = &catalogURL
		}
		if len(doc.IDGoodreads) > 0 {
			socialURL := GoodreadsBookURL(doc.IDGoodreads[0])
			book.SocialURL = &socialURL
		}
		if book.ISBN != "" {
			if thumb, err := o.Thumbnail(ctx, book.ISBN); err == nil {
				book.ThumbnailURL = &thumb
			}
		}
		books = append(books, book)
	}
	return books, nil
}

func (o *OpenLibrary) getJSON(ctx context.Context, reqURL string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return errors.Wrap(errcodes.ProviderUnavailable(o.Name()), err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(errcodes.ProviderUnavailable(o.Name()), "unexpected status code %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return errors.Wrap(errcodes.ProviderUnavailable(o.Name()), err.Error())
	}
	return nil
}
