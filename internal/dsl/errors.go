package dsl

import (
	"errors"
	"fmt"
)

var (
	ErrNumericName      = errors.New("dsl: numeric literal where a name is expected")
	ErrNegativeValue    = errors.New("dsl: negative value where a non-negative one is required")
	ErrDuplicateName    = errors.New("dsl: duplicate chemical name")
	ErrUnknownChemical  = errors.New("dsl: unknown chemical")
	ErrInvalidRate      = errors.New("dsl: missing or non-positive rate constant")
	ErrMissingField     = errors.New("dsl: missing required field")
	ErrUnexpectedToken  = errors.New("dsl: unexpected token")
	ErrMissingSection   = errors.New("dsl: missing section")
	ErrDuplicateSection = errors.New("dsl: duplicate section")
)

// Block names one of the three declaration blocks.
type Block int

const (
	Chemicals Block = iota
	Reactions
	Additions
)

// String is the noun used for one declaration of the block in messages.
func (b Block) String() string {
	switch b {
	case Chemicals:
		return "chemical"
	case Reactions:
		return "reaction"
	case Additions:
		return "addition"
	default:
		return "declaration"
	}
}

// ParseError reports the first invalid declaration of a block. Index is the
// 1-based position of the declaration among the block's non-blank lines.
type ParseError struct {
	Block Block
	Index int
	Cause string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s #%d %s.", e.Block, e.Index, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseErr(b Block, index int, err error, format string, args ...any) *ParseError {
	return &ParseError{Block: b, Index: index, Cause: fmt.Sprintf(format, args...), Err: err}
}
