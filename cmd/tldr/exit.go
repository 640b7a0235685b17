package main

import (
	"errors"

	"github.com/ZebulonRouseFrantzich/tldr/internal/config"
	"github.com/ZebulonRouseFrantzich/tldr/internal/page"
)

// Exit statuses.
const (
	exitOK     = 0
	exitError  = 1
	exitUsage  = 2
	exitConfig = 3
	exitUpdate = 4
	exitSyntax = 5
)

// usageError marks invalid command-line arguments.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// updateError marks a cache update failure that left no usable page.
type updateError struct {
	err error
}

func (e *updateError) Error() string { return "cache update failed: " + e.err.Error() }
func (e *updateError) Unwrap() error { return e.err }

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	var (
		usage   *usageError
		parse   *config.ParseError
		invalid *config.ValidationError
		update  *updateError
	)

	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &usage):
		return exitUsage
	case errors.As(err, &parse), errors.As(err, &invalid):
		return exitConfig
	case errors.As(err, &update):
		return exitUpdate
	default:
		if _, ok := page.AsSyntaxErrors(err); ok {
			return exitSyntax
		}
		return exitError
	}
}
