package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Constructors and inspection helpers re-exported from cockroachdb/errors so
// callers need a single errors import.
var (
	New    = crdb.New
	Newf   = crdb.Newf
	Wrap   = crdb.Wrap
	Wrapf  = crdb.Wrapf
	Mark   = crdb.Mark
	Is     = crdb.Is
	As     = crdb.As
	Unwrap = crdb.Unwrap
)
