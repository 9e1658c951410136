package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a recipe, user, catalog entry or relation is absent
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a membership or subscription is already present
	ErrAlreadyExists = errors.New("already exists")
	// ErrSelfFollow is returned when a user tries to subscribe to themselves
	ErrSelfFollow = errors.New("cannot subscribe to yourself")
	// ErrForbidden is returned when the principal does not own the recipe
	ErrForbidden = errors.New("forbidden")
	// ErrLinkGenerationExhausted is returned when every short link attempt collided
	ErrLinkGenerationExhausted = errors.New("short link generation exhausted")
)

// ValidationError collects field level problems found before any write.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Err returns e as an error when at least one field failed, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e.Fields[f], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
