package providers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bookobot/booko/pkg/errcodes"
	"github.com/bookobot/booko/pkg/identifiers"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
)

const googleBooksBaseURL = "https://www.googleapis.com/books/v1"

// GoogleBooks is the primary search provider. All queries carry the API key.
type GoogleBooks struct {
	// BaseURL is overridable for tests.
	BaseURL string

	apiKey     string
	maxResults int
	client     *http.Client
}

func NewGoogleBooks(apiKey string, client *http.Client) *GoogleBooks {
	return &GoogleBooks{
		BaseURL:    googleBooksBaseURL,
		apiKey:     apiKey,
		maxResults: 10,
		client:     orDefaultClient(client),
	}
}

func (g *GoogleBooks) Name() string {
	return "Google Books"
}

type googleVolumesResponse struct {
	TotalItems int            `json:"totalItems"`
	Items      []googleVolume `json:"items"`
}

type googleVolume struct {
	SelfLink   string           `json:"selfLink"`
	VolumeInfo googleVolumeInfo `json:"volumeInfo"`
}

type googleVolumeInfo struct {
	Title               string                  `json:"title"`
	Authors             []string                `json:"authors"`
	Language            string                  `json:"language"`
	IndustryIdentifiers []googleIdentifier      `json:"industryIdentifiers"`
	ImageLinks          *googleVolumeImageLinks `json:"imageLinks"`
}

type googleIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type googleVolumeImageLinks struct {
	Thumbnail      string `json:"thumbnail"`
	SmallThumbnail string `json:"smallThumbnail"`
}

func (g *GoogleBooks) volumes(ctx context.Context, query string) (*googleVolumesResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(g.maxResults))
	params.Set("printType", "books")
	params.Set("orderBy", "relevance")
	if g.apiKey != "" {
		params.Set("key", g.apiKey)
	}
	reqURL := g.BaseURL + "/volumes?" + params.Encode()

	logger.FromContext(ctx).Debug("querying google books", logger.Data{"query": query})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(errcodes.ProviderUnavailable(g.Name()), err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(errcodes.ProviderUnavailable(g.Name()), "unexpected status code %d", resp.StatusCode)
	}

	var decoded googleVolumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.Wrap(errcodes.ProviderUnavailable(g.Name()), err.Error())
	}
	return &decoded, nil
}

func (vi *googleVolumeInfo) partialBook() *PartialBook {
	book := &PartialBook{
		Title:    vi.Title,
		Author:   strings.Join(vi.Authors, ", "),
		Language: vi.Language,
	}

	ids := make([]identifiers.Identifier, 0, len(vi.IndustryIdentifiers))
	for _, id := range vi.IndustryIdentifiers {
		ids = append(ids, identifiers.Identifier{Type: id.Type, Value: id.Identifier})
	}
	book.ISBN = identifiers.PickISBN(ids)

	if vi.ImageLinks != nil {
		if thumb := vi.ImageLinks.best(); thumb != "" {
			book.ThumbnailURL = &thumb
		}
	}
	return book
}

func (il *googleVolumeImageLinks) best() string {
	if il.Thumbnail != "" {
		return il.Thumbnail
	}
	return il.SmallThumbnail
}

// SearchByAuthorTitle queries the volumes endpoint with intitle/inauthor
// terms. Entries are returned as-is, in relevance order; filtering (missing
// ISBN, wrong language, no authors) is the resolution pipeline's job.
func (g *GoogleBooks) SearchByAuthorTitle(ctx context.Context, author, title string) ([]*PartialBook, error) {
	decoded, err := g.volumes(ctx, "intitle:"+title+" inauthor:"+author)
	if err != nil {
		return nil, err
	}
	if decoded.TotalItems == 0 {
		return nil, nil
	}

	books := make([]*PartialBook, 0, len(decoded.Items))
	for i := range decoded.Items {
		books = append(books, decoded.Items[i].VolumeInfo.partialBook())
	}
	return books, nil
}

// ResolveByISBN returns the first volume matching the ISBN.
func (g *GoogleBooks) ResolveByISBN(ctx context.Context, isbn string) (*PartialBook, error) {
	decoded, err := g.volumes(ctx, "isbn:"+isbn)
	if err != nil {
		return nil, err
	}
	if len(decoded.Items) == 0 {
		return nil, errcodes.NotFound("Book")
	}
	book := decoded.Items[0].VolumeInfo.partialBook()
	if book.ISBN == "" {
		book.ISBN = isbn
	}
	return book, nil
}

// CatalogLink is not part of Google Books's role here; the catalog link
// comes from the secondary provider.
func (g *GoogleBooks) CatalogLink(_ context.Context, _ string) (string, error) {
	return "", errcodes.NotFound("Catalog link")
}

// Thumbnail returns the best cover image URL for an ISBN, preferring the
// full thumbnail over the small one.
func (g *GoogleBooks) Thumbnail(ctx context.Context, isbn string) (string, error) {
	decoded, err := g.volumes(ctx, "isbn:"+isbn)
	if err != nil {
		return "", err
	}
	if len(decoded.Items) == 0 || decoded.Items[0].VolumeInfo.ImageLinks == nil {
		return "", errcodes.NotFound("Thumbnail")
	}
	thumb := decoded.Items[0].VolumeInfo.ImageLinks.best()
	if thumb == "" {
		return "", errcodes.NotFound("Thumbnail")
	}
	return thumb, nil
}
