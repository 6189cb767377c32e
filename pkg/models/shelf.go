package models

// Shelf is the curation category a book was proposed into. It is fixed at
// creation from the channel of origin and never changes afterwards.
type Shelf string

const (
	ShelfRecommended Shelf = "recommended"
	ShelfRead        Shelf = "read"
	ShelfSmut        Shelf = "smut"
)

// Valid reports whether s is one of the known shelves.
func (s Shelf) Valid() bool {
	switch s {
	case ShelfRecommended, ShelfRead, ShelfSmut:
		return true
	}
	return false
}

// DisplayName returns the shelf name as shown in channel messages.
func (s Shelf) DisplayName() string {
	switch s {
	case ShelfRecommended:
		return "Recommended"
	case ShelfRead:
		return "Read"
	case ShelfSmut:
		return "Smut"
	}
	return string(s)
}
