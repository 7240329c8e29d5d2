package party

import "errors"

var (
	ErrInvalidCode    = errors.New("invalid party code")
	ErrNotFound       = errors.New("party not found")
	ErrFull           = errors.New("party is full")
	ErrNotInParty     = errors.New("not in a party")
	ErrMemberNotFound = errors.New("member not found in party")
)
