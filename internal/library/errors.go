package library

import (
	"errors"
	"fmt"
)

// ErrLibraryEmpty means no template survived loading. Fatal at startup.
var ErrLibraryEmpty = errors.New("library: no situation templates loaded")

// ParseError describes one skipped source or entry. Loading continues past it.
type ParseError struct {
	Source string
	Entry  string // situation id, variable category, or "" for a whole source
	Err    error
}

func (e *ParseError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("%s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Entry, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
