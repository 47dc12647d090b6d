package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound            = errors.New("entity not found")
	ErrAlreadyExists       = errors.New("entity already exists")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrOperationFailed     = errors.New("operation failed")
	ErrOutOfRange          = errors.New("target number out of range")
	ErrNumberPassed        = errors.New("target number already passed")
	ErrNotSubscribed       = errors.New("no watch registered for this user")
	ErrUpstreamUnavailable = errors.New("current number unavailable")
	ErrReplyTargetMissing  = errors.New("reply target message missing")
	ErrPollClosed          = errors.New("poll already closed")
	ErrNoOpenPoll          = errors.New("no open poll in this chat")
	ErrRateLimited         = errors.New("rate limit exceeded")
)
