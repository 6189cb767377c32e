package providers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/bookobot/booko/pkg/errcodes"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

const goodreadsBaseURL = "https://www.goodreads.com"

// GoodreadsBookURL builds the book page URL for a structured Goodreads
// identifier.
func GoodreadsBookURL(id string) string {
	return goodreadsBaseURL + "/book/show/" + id
}

// Goodreads is the social-catalog provider. Its only real capability is the
// search-redirect lookup: querying the search endpoint with an ISBN and no
// redirect following yields the book page URL in the Location header.
type Goodreads struct {
	// BaseURL is overridable for tests.
	BaseURL string

	client *http.Client
}

func NewGoodreads(client *http.Client) *Goodreads {
	client = orDefaultClient(client)
	// The redirect target IS the result; never follow it.
	wrapped := *client
	wrapped.CheckRedirect = func(_ *http.Request, _ []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &Goodreads{
		BaseURL: goodreadsBaseURL,
		client:  &wrapped,
	}
}

func (g *Goodreads) Name() string {
	return "Goodreads"
}

// CatalogLink queries the search endpoint with the ISBN. A 302 means the
// search resolved to exactly one book; anything else is a miss.
func (g *Goodreads) CatalogLink(ctx context.Context, isbn string) (string, error) {
	params := url.Values{}
	params.Set("q", isbn)
	params.Set("ref", "nav_sb_noss_l_13")
	reqURL := g.BaseURL + "/search?" + params.Encode()

	log := logger.FromContext(ctx)
	log.Debug("querying goodreads", logger.Data{"isbn": isbn})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", errors.WithStack(err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return "", errors.Wrap(errcodes.ProviderUnavailable(g.Name()), err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		log.Debug("goodreads search did not redirect", logger.Data{"status_code": resp.StatusCode})
		return "", errcodes.NotFound("Social catalog link")
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", errcodes.NotFound("Social catalog link")
	}
	return location, nil
}

// ResolveByISBN is not supported by the social-catalog provider.
func (g *Goodreads) ResolveByISBN(_ context.Context, _ string) (*PartialBook, error) {
	return nil, errcodes.NotFound("Book")
}

// SearchByAuthorTitle is not supported by the social-catalog provider.
func (g *Goodreads) SearchByAuthorTitle(_ context.Context, _, _ string) ([]*PartialBook, error) {
	return nil, nil
}

// Thumbnail is not supported by the social-catalog provider.
func (g *Goodreads) Thumbnail(_ context.Context, _ string) (string, error) {
	return "", errcodes.NotFound("Thumbnail")
}
