package types

// Table provides keyed, insertion-ordered storage for one entity type.
// Keys are entity names. Implementations serialize writers against readers,
// so a slice returned by All or Filter is a consistent snapshot.
type Table[T any] interface {
	// Get returns the entity stored under key, or ErrNotFound.
	Get(key string) (T, error)

	// Set stores item under key. An existing key keeps its position in the
	// iteration order; a new key is appended.
	Set(key string, item T) error

	// Delete removes key. Returns ErrNotFound if absent.
	Delete(key string) error

	// Rename moves the entity stored under key to item's own key in one
	// step, appending it to the iteration order. Returns ErrNotFound if key
	// is absent and ErrAlreadyExists if the new key is taken.
	Rename(key string, item T) error

	// Has reports whether key is stored.
	Has(key string) (bool, error)

	// All returns every entity in insertion order.
	All() ([]T, error)

	// Filter returns the entities, in insertion order, for which keep
	// returns true.
	Filter(keep func(T) bool) ([]T, error)

	// Replace discards the table contents and stores items in order.
	Replace(items []T) error
}

// Standard table names.
const (
	ContactsTable = "contacts"
	NotesTable    = "notes"
)

// StandardTableNames lists all standard table names for enumeration.
var StandardTableNames = []string{
	ContactsTable,
	NotesTable,
}
