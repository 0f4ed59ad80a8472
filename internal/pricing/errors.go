package pricing

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a focus item id does not resolve to a record.
	ErrNotFound = errors.New("catalog item not found")
	// ErrMalformedCategoryFetch is returned when a peer fetch yields something other than a list.
	ErrMalformedCategoryFetch = errors.New("malformed category fetch")
)

type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("catalog item %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

type MalformedCategoryFetchError struct {
	Category string
	// Got describes what arrived instead of a list, e.g. "object" or "string".
	Got string
}

func (e *MalformedCategoryFetchError) Error() string {
	return fmt.Sprintf("category %q: expected a list of items, got %s", e.Category, e.Got)
}

func (e *MalformedCategoryFetchError) Is(target error) bool {
	return target == ErrMalformedCategoryFetch
}
