// Package providers implements the adapters for the three book-data
// providers: Google Books (primary search), Open Library (secondary
// catalog), and Goodreads (social catalog). Adapters return best-effort
// fields and normalize nothing; missing fields are explicit absences, never
// errors. Only transport failures and explicit misses surface as errors,
// classified through errcodes.
package providers

import (
	"context"
	"net/http"
	"time"
)

// PartialBook carries whatever subset of fields a provider could supply.
// Pointer fields are absent when nil; ISBN and Language are empty strings
// when the provider had nothing usable.
type PartialBook struct {
	Title        string
	Author       string
	ISBN         string
	Language     string
	CatalogURL   *string
	SocialURL    *string
	ThumbnailURL *string
}

// Provider is the capability surface shared by the fixed set of adapters.
// Operations a provider does not support return errcodes.NotFound.
type Provider interface {
	Name() string
	// ResolveByISBN fetches one book's detail record by ISBN.
	ResolveByISBN(ctx context.Context, isbn string) (*PartialBook, error)
	// SearchByAuthorTitle queries by author and title, possibly returning
	// an empty list.
	SearchByAuthorTitle(ctx context.Context, author, title string) ([]*PartialBook, error)
	// CatalogLink returns the provider's catalog page URL for an ISBN.
	CatalogLink(ctx context.Context, isbn string) (string, error)
	// Thumbnail returns a cover image URL for an ISBN.
	Thumbnail(ctx context.Context, isbn string) (string, error)
}

// orDefaultClient is used by the adapter constructors so callers can inject
// a client (tests, custom timeouts) without every call site building one.
func orDefaultClient(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: 10 * time.Second}
}
