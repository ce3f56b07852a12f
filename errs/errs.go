// Package errs collects the sentinel errors shared across the build and
// decode paths (spec error-kinds table). Callers branch on these with
// errors.Is; implementations attach context with fmt.Errorf's %w, following
// the teacher's plain wrapping style rather than a dedicated wrap helper.
package errs

import "errors"

var (
	// ErrInvalidCoordinate is returned when the builder is asked to
	// quantize a non-finite (NaN/Inf) coordinate. The runtime side never
	// returns this: it clamps instead (spec policy).
	ErrInvalidCoordinate = errors.New("invalid coordinate: lat/lon is not finite")

	// ErrOracleFailure wraps an error raised by the oracle during a build;
	// it always aborts the build, no artifact is produced.
	ErrOracleFailure = errors.New("oracle failure")

	// ErrDepthLimit is reported (not fatal) when recursion would exceed
	// max_depth; the builder falls back to forced brute force.
	ErrDepthLimit = errors.New("recursion depth limit reached")

	// ErrDecode is returned for any malformed, truncated, or
	// version-mismatched serialized blob.
	ErrDecode = errors.New("decode error")

	// ErrCancelled is returned when a build's context is cancelled; no
	// partial tree is returned.
	ErrCancelled = errors.New("build cancelled")
)
