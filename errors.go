package stitch

import (
	"errors"

	"github.com/tsawler/stitch/merge"
	"github.com/tsawler/stitch/pagerange"
	"github.com/tsawler/stitch/reader"
)

// ErrParseFailure is returned when an input is not a readable PDF. The
// underlying reader error is wrapped alongside it.
var ErrParseFailure = errors.New("stitch: input is not a readable document")

// Errors returned by the merge and split entry points. Match them with
// errors.Is.
var (
	ErrCatalogNotFound         = merge.ErrCatalogNotFound
	ErrPagesNotFound           = merge.ErrPagesNotFound
	ErrSpecEmpty               = pagerange.ErrSpecEmpty
	ErrInvalidPageNumbers      = pagerange.ErrInvalidPageNumbers
	ErrPageNumberOverflow      = pagerange.ErrPageNumberOverflow
	ErrFixedPageNumberOverflow = pagerange.ErrFixedPageNumberOverflow
	ErrEncrypted               = reader.ErrEncrypted
)
