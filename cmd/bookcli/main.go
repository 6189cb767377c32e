package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bookobot/booko/pkg/config"
	"github.com/bookobot/booko/pkg/providers"
	"github.com/jessevdk/go-flags"
	"github.com/robinjoseph08/golib/logger"
)

const usage = `go run ./cmd/bookcli [options] <api> <command> <args...>

  api:      google_books | open_library | goodreads
  commands:
    title <title> -by <author>   search by author and title
    isbn <isbn>                  resolve a detail record by ISBN
    link <isbn>                  print the catalog link for an ISBN
    thumbnail <isbn>             print the cover URL for an ISBN`

func main() {
	log := logger.New()

	var opts struct {
		GoogleBooksKey string        `long:"google-books-key" default:"data/books_api" description:"Path to the Google Books API key file"`
		Author         string        `short:"b" long:"by" description:"Author for a title search"`
		Timeout        time.Duration `long:"timeout" default:"10s" description:"Provider HTTP timeout"`
		Verbose        bool          `short:"v" long:"verbose" description:"Log every provider request"`
	}

	args, err := flags.Parse(&opts)
	if err != nil {
		log.Err(err).Fatal("flags parse error")
	}
	if len(args) < 3 {
		fmt.Println(usage)
		os.Exit(1)
	}

	client := providers.NewClient(opts.Timeout, opts.Verbose)

	var provider providers.Provider
	switch args[0] {
	case "google_books":
		key, err := config.ReadCredentialFile(opts.GoogleBooksKey)
		if err != nil {
			log.Err(err).Fatal("google books key error")
		}
		provider = providers.NewGoogleBooks(key, client)
	case "open_library":
		provider = providers.NewOpenLibrary(client)
	case "goodreads":
		provider = providers.NewGoodreads(client)
	default:
		fmt.Printf("unrecognized api: %s\n", args[0])
		os.Exit(1)
	}

	ctx := context.Background()
	command, rest := args[1], args[2:]

	switch command {
	case "title":
		if opts.Author == "" {
			fmt.Println(usage)
			os.Exit(1)
		}
		results, err := provider.SearchByAuthorTitle(ctx, opts.Author, strings.Join(rest, " "))
		if err != nil {
			log.Err(err).Fatal("search error")
		}
		for _, partial := range results {
			printPartial(partial)
		}
	case "isbn":
		partial, err := provider.ResolveByISBN(ctx, rest[0])
		if err != nil {
			log.Err(err).Fatal("resolve error")
		}
		printPartial(partial)
	case "link":
		link, err := provider.CatalogLink(ctx, rest[0])
		if err != nil {
			log.Err(err).Fatal("catalog link error")
		}
		fmt.Println(link)
	case "thumbnail":
		url, err := provider.Thumbnail(ctx, rest[0])
		if err != nil {
			log.Err(err).Fatal("thumbnail error")
		}
		fmt.Println(url)
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func printPartial(partial *providers.PartialBook) {
	fmt.Printf("%s by %s (isbn=%s, language=%s)\n", partial.Title, partial.Author, partial.ISBN, partial.Language)
	for label, value := range map[string]*string{
		"catalog":   partial.CatalogURL,
		"social":    partial.SocialURL,
		"thumbnail": partial.ThumbnailURL,
	} {
		if value != nil {
			fmt.Printf("  %s: %s\n", label, *value)
		}
	}
}
