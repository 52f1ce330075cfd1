package wfc

import (
	"errors"
	"fmt"
)

var (
	ErrLoad                = errors.New("wfc: unable to load tileset")
	ErrUnresolvedReference = errors.New("wfc: unresolved reference")
	ErrContradiction       = errors.New("wfc: contradiction - no valid tiles for cell")
	ErrOccupiedSector      = errors.New("wfc: sector location already occupied")
	ErrNoSector            = errors.New("wfc: no sector at location")
	ErrInvalidSize         = errors.New("wfc: invalid grid size")
	ErrNoSolution          = errors.New("wfc: failed to find valid solution")
)

// LoadError reports a tileset definition that could not be read or parsed.
type LoadError struct {
	Path string // empty when parsing from memory
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v: %v", ErrLoad, e.Err)
	}
	return fmt.Sprintf("%v %s: %v", ErrLoad, e.Path, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrLoad, e.Err}
}

// UnresolvedReferenceError reports a rule or weight naming an unknown id.
// These are collected as catalog warnings and never fail construction.
type UnresolvedReferenceError struct {
	Kind string // "rule" or "weight"
	ID   string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("%v: %s references unknown id %q", ErrUnresolvedReference, e.Kind, e.ID)
}

func (e *UnresolvedReferenceError) Unwrap() error {
	return ErrUnresolvedReference
}

// ContradictionError reports the cell, in sector-local coordinates, whose
// candidate set ran out.
type ContradictionError struct {
	X, Y int
}

func (e *ContradictionError) Error() string {
	return fmt.Sprintf("%v at cell (%d, %d)", ErrContradiction, e.X, e.Y)
}

func (e *ContradictionError) Unwrap() error {
	return ErrContradiction
}

// OccupiedSectorError reports an attempt to add a sector over an existing one.
type OccupiedSectorError struct {
	X, Y int32
}

func (e *OccupiedSectorError) Error() string {
	return fmt.Sprintf("%v: (%d, %d)", ErrOccupiedSector, e.X, e.Y)
}

func (e *OccupiedSectorError) Unwrap() error {
	return ErrOccupiedSector
}
