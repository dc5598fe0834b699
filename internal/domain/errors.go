package domain

import "errors"

var (
	// ErrNotFound reports a missing room or participant.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists reports a room id collision on create.
	ErrAlreadyExists = errors.New("already exists")
	// ErrStoreUnavailable wraps store timeouts and connection failures.
	ErrStoreUnavailable = errors.New("store unavailable")

	ErrRoomIDEmpty     = errors.New("room id empty")
	ErrRoomNameEmpty   = errors.New("room name empty")
	ErrSubjectEmpty    = errors.New("subject empty")
	ErrUsernameEmpty   = errors.New("username empty")
	ErrUsernameTooLong = errors.New("username too long")
)
