package service

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrAlreadyCompleted   = errors.New("task already completed today")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidTask        = errors.New("invalid task")
	ErrInvalidQuote       = errors.New("invalid quote")
	ErrNoQuote            = errors.New("no quotes available")
	ErrReflectionNotFound = errors.New("reflection not found")
)
