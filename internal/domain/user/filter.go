package user

// SortField is a column the user list can be ordered by.
type SortField string

const (
	SortByID    SortField = "id"
	SortByName  SortField = "name"
	SortByEmail SortField = "email"
)

// SortOrder is the direction of the list ordering.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Default list parameters
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListFilter selects, orders and pages users. Empty Email, Name or Search
// disable that filter; supplied filters combine with AND.
type ListFilter struct {
	Email     string // exact match
	Name      string // exact match
	Search    string // case-insensitive substring of name or email
	SortBy    SortField
	SortOrder SortOrder
	Limit     int
	Offset    int
}

// DefaultListFilter returns the filter used when no query parameters are supplied.
func DefaultListFilter() ListFilter {
	return ListFilter{
		SortBy:    SortByID,
		SortOrder: SortAsc,
		Limit:     DefaultLimit,
		Offset:    0,
	}
}
