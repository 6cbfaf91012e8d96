package session

import "errors"

var (
	// ErrSessionActive is returned by Start while a session is running.
	ErrSessionActive = errors.New("search session already active")

	// ErrNoSession is returned by operations on a session that has ended.
	ErrNoSession = errors.New("no active search session")
)
