package deck

import "errors"

var (
	ErrInvalidIdentifier = errors.New("invalid deck identifier")
	ErrResolveFailed     = errors.New("could not resolve deck")
)
