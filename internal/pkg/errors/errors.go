package errors

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrInvalid   = errors.New("invalid")
	ErrNoContent = errors.New("no text content")
	ErrProvider  = errors.New("provider error")
	ErrInternal  = errors.New("internal")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsProvider(err error) bool {
	return errors.Is(err, ErrProvider)
}
