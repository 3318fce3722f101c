// Package family manages pseudopotential families and their parameters.
//
// A Family is a labeled group in the backing store holding at most one
// pseudopotential record per element. Families come in two kinds:
// KindSSSP, whose label must be the label of a valid Configuration, and
// KindUPF, whose label is free. CreateFromFolder validates a whole
// directory before storing anything.
//
// Parameters attach per-element cutoffs and checksums to a family by
// label. They are immutable once stored.
//
// All failures are *Error values with a Code. Use errors.Is with the
// sentinels (ErrDuplicateLabel, ErrNotFound, ...) to test for a code.
//
// The package performs no logging.
package family
