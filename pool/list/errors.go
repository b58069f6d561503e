package list

import "errors"

var (
	// ErrIndexOutOfRange indicates a position outside the list. The list is
	// left unchanged.
	ErrIndexOutOfRange = errors.New("list: index out of range")

	// ErrEmpty indicates Front, Back or a pop on an empty list.
	ErrEmpty = errors.New("list: empty list")

	// ErrClosed indicates use of a list after Close.
	ErrClosed = errors.New("list: list closed")
)
