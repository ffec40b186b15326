// Package store holds the durable state of the bot: the seen-set of
// already-reported listing URLs and the user-editable keyword list.
package store

// Seen-set bounds. When the set grows past HighWaterMark it is pruned
// down to PruneTarget, evicting the oldest entries first.
const (
	HighWaterMark = 5000
	PruneTarget   = 3000
)

// SeenStore is a durable set of previously encountered listing URLs.
// Implementations must be safe for concurrent use and must persist
// every mutation before returning.
type SeenStore interface {
	// Has reports whether url has been seen
	Has(url string) (bool, error)

	// Add marks url as seen, durable before returning
	Add(url string) error

	// Len returns the current size of the set
	Len() (int, error)
}

// KeywordStore is the ordered, user-editable list of search terms.
// It is independent of the seen-set's lifecycle.
type KeywordStore interface {
	// List returns the keywords in order. A read failure degrades to
	// the built-in default list.
	List() []string

	// Add appends a keyword; duplicates are rejected
	Add(keyword string) error

	// Remove deletes a keyword by exact string match
	Remove(keyword string) error

	// RemoveAt deletes the keyword at the given zero-based position
	// and returns it
	RemoveAt(index int) (string, error)
}

// DefaultKeywords is the built-in monitoring list used when the
// keyword document is missing or unreadable.
var DefaultKeywords = []string{
	"komiks PRL",
	"Relax komiks",
	"Kapitan Żbik",
	"figurka Ćmielów",
	"porcelana PRL",
	"zegarek Błonie",
	"zegarek Rakieta",
	"zegarek Wostok",
	"obraz olejny",
	"szabla",
	"bagnet",
	"Lem pierwsze wydanie",
	"Sapkowski wydanie",
	"ikona prawosławna",
	"sztućce srebrne",
	"kordelas",
}
