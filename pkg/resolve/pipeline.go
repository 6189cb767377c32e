// Package resolve merges partial results from the three book-data providers
// into canonical candidate records.
package resolve

import (
	"context"

	"github.com/bookobot/booko/pkg/models"
	"github.com/bookobot/booko/pkg/providers"
	"github.com/robinjoseph08/golib/logger"
)

// Pipeline orchestrates the provider adapters. The primary search provider
// supplies the candidate list and its order; the other two backfill missing
// fields by ISBN.
type Pipeline struct {
	search         providers.Provider
	catalog        providers.Provider
	social         providers.Provider
	targetLanguage string
}

func NewPipeline(search, catalog, social providers.Provider, targetLanguage string) *Pipeline {
	return &Pipeline{
		search:         search,
		catalog:        catalog,
		social:         social,
		targetLanguage: targetLanguage,
	}
}

// Resolve searches by author and title and returns zero or more canonical
// candidates in the order the primary provider returned them. Entries
// missing a usable ISBN, in the wrong language, or without declared authors
// are skipped. A single candidate's enrichment failure degrades that
// candidate's optional fields to absent and never aborts the batch.
func (p *Pipeline) Resolve(ctx context.Context, author, title string, shelf models.Shelf, proposerUserID string) ([]*models.Book, error) {
	log := logger.FromContext(ctx)

	results, err := p.search.SearchByAuthorTitle(ctx, author, title)
	if err != nil {
		return nil, err
	}

	var books []*models.Book
	for _, partial := range results {
		data := logger.Data{"title": partial.Title, "author": partial.Author}
		switch {
		case partial.ISBN == "":
			log.Info("skipping search result with no usable isbn", data)
			continue
		case partial.Language != p.targetLanguage:
			data["language"] = partial.Language
			log.Info("skipping search result in wrong language", data)
			continue
		case partial.Author == "":
			log.Info("skipping search result with no declared authors", data)
			continue
		}

		book := &models.Book{
			Title:          partial.Title,
			Author:         partial.Author,
			ISBN:           partial.ISBN,
			Shelf:          shelf,
			ProposerUserID: proposerUserID,
		}
		p.enrich(ctx, book, partial)
		books = append(books, book)
	}
	return books, nil
}

// enrich backfills the optional fields of one candidate by ISBN. Failures
// leave the affected field absent.
func (p *Pipeline) enrich(ctx context.Context, book *models.Book, partial *providers.PartialBook) {
	log := logger.FromContext(ctx)

	// Thumbnail: primary-search provider first, then the secondary provider.
	book.ThumbnailURL = partial.ThumbnailURL
	if book.ThumbnailURL == nil {
		if thumb, err := p.search.Thumbnail(ctx, book.ISBN); err == nil {
			book.ThumbnailURL = &thumb
		} else if thumb, err := p.catalog.Thumbnail(ctx, book.ISBN); err == nil {
			book.ThumbnailURL = &thumb
		} else {
			log.Info("no thumbnail found", logger.Data{"isbn": book.ISBN})
		}
	}

	// Catalog link: the secondary provider's ISBN-addressed URL.
	if link, err := p.catalog.CatalogLink(ctx, book.ISBN); err == nil {
		book.CatalogURL = &link
	}

	book.SocialURL = p.socialCatalogURL(ctx, partial)
}

// socialCatalogURL tries an explicit ordered list of lookup strategies and
// stops at the first success: the structured identifier already on the
// search result, the structured identifier on the secondary provider's
// detail record, and finally the social-catalog provider's search-redirect
// endpoint.
func (p *Pipeline) socialCatalogURL(ctx context.Context, partial *providers.PartialBook) *string {
	log := logger.FromContext(ctx)

	strategies := []func() *string{
		func() *string {
			return partial.SocialURL
		},
		func() *string {
			detail, err := p.catalog.ResolveByISBN(ctx, partial.ISBN)
			if err != nil {
				log.Debug("secondary detail lookup failed", logger.Data{"isbn": partial.ISBN, "error": err.Error()})
				return nil
			}
			return detail.SocialURL
		},
		func() *string {
			link, err := p.social.CatalogLink(ctx, partial.ISBN)
			if err != nil {
				log.Debug("social search-redirect lookup failed", logger.Data{"isbn": partial.ISBN, "error": err.Error()})
				return nil
			}
			return &link
		},
	}

	for _, strategy := range strategies {
		if socialURL := strategy(); socialURL != nil {
			return socialURL
		}
	}
	return nil
}
