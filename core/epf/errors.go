package epf

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoGroups is returned when a panel is requested for an empty group list.
var ErrNoGroups = errors.New("no groups requested")

// UnknownGroupError reports a group name missing from the registry.
type UnknownGroupError struct {
	Name string
}

func (e *UnknownGroupError) Error() string {
	return fmt.Sprintf("unknown group %q (allowed: %s)", e.Name, strings.Join(Groups(), ", "))
}

// DownloadError reports a failed fetch of a raw dataset file.
type DownloadError struct {
	Group string
	URL   string
	Err   error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s from %s: %v", e.Group, e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// ParseError reports a malformed cell. Line is 1-based and counts the header.
type ParseError struct {
	Path   string
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("parse %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s:%d: column %s: value %q: %v", e.Path, e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IOError reports a filesystem failure.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
