package records

import (
	"fmt"
	"strings"

	"github.com/bookobot/booko/pkg/models"
	"github.com/bookobot/booko/pkg/platform"
)

const starEmoji = "⭐"

// ratingEmojis index 0 is the emoji for a rating of 1.
var ratingEmojis = []string{"🤮", "🤢", "🤔", "🙂", "😍"}

// RatingControlKey is the stable control key for one rating button. It only
// depends on persisted state so a restarted process can keep serving clicks.
func RatingControlKey(bookID, value int) string {
	return fmt.Sprintf("rating:%d:%d", bookID, value)
}

// Summary builds the rich summary of a book: labeled fields, thumbnail, and
// the per-user rating breakdown. It carries no controls; callers attach the
// controls of their own surface.
func Summary(book *models.Book) platform.Message {
	msg := platform.Message{
		Fields: []platform.Field{
			{Label: "Title", Value: "*" + book.Title + "*"},
			{Label: "Author", Value: book.Author},
			{Label: "ISBN", Value: book.ISBN},
		},
		AuthorID: book.ProposerUserID,
	}
	if book.SocialURL != nil {
		msg.Fields = append(msg.Fields, platform.Field{Label: "Goodreads", Value: *book.SocialURL})
	}
	if book.ThumbnailURL != nil {
		msg.ThumbnailURL = *book.ThumbnailURL
	}

	if len(book.Ratings) > 0 {
		users := make([]string, 0, len(book.Ratings))
		stars := make([]string, 0, len(book.Ratings))
		for _, rating := range book.Ratings {
			users = append(users, rating.UserID)
			stars = append(stars, strings.Repeat(starEmoji, rating.Value))
		}
		msg.Fields = append(msg.Fields,
			platform.Field{Label: "User", Value: strings.Join(users, "\n")},
			platform.Field{Label: "Rating", Value: strings.Join(stars, "\n")},
		)
	}

	return msg
}

// renderBook is the finalized-record rendering: the summary plus, on the
// Read shelf only, the five rating controls.
func renderBook(book *models.Book) platform.Message {
	msg := Summary(book)
	if book.Shelf == models.ShelfRead {
		for value := models.RatingMin; value <= models.RatingMax; value++ {
			msg.Controls = append(msg.Controls, platform.Control{
				Key:   RatingControlKey(book.ID, value),
				Label: fmt.Sprintf("%d", value),
				Emoji: ratingEmojis[value-1],
			})
		}
	}
	return msg
}
