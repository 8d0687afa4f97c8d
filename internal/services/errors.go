package services

import "errors"

// Service errors
var (
	// ErrEmptyArchive means no archive bytes were supplied
	ErrEmptyArchive = errors.New("archive is empty")
)
