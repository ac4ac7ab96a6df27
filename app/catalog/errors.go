package catalog

import "fmt"

// ParseError marks a feed body that could not be turned into a product list.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse catalog: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
