package gacha

import "errors"

var (
	// ErrNotFound covers both an unknown series name and a known series
	// with no cards. Callers present the two identically, so they are not
	// distinguished here.
	ErrNotFound = errors.New("gacha: series not found or empty")

	ErrInvalidUsername = errors.New("gacha: username must be 3-15 characters of letters, digits or underscore")
	ErrUsernameTaken   = errors.New("gacha: username already taken")
	ErrUsernameSet     = errors.New("gacha: username already set and cannot be changed")

	ErrAssetUnavailable = errors.New("gacha: card image unavailable")
)
