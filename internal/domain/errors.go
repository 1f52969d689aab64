package domain

import (
	"fmt"
	"strings"
)

// AmbiguousJoinError aborts a join whose right side carries duplicate keys.
// Duplicate population rows for one municipality cannot be summed silently;
// the offending keys are surfaced so the source data can be fixed.
type AmbiguousJoinError struct {
	Keys []CanonicalID
}

func (e *AmbiguousJoinError) Error() string {
	keys := make([]string, len(e.Keys))
	for i, k := range e.Keys {
		keys[i] = string(k)
	}
	return fmt.Sprintf("join: %d duplicate key(s) on right side: %s", len(e.Keys), strings.Join(keys, ", "))
}

// ColumnResolutionError halts the run when the geometry source's code column
// cannot be identified unambiguously. Candidates lists every column that
// matched (or none); Columns lists everything the source offered so an
// explicit override can be configured.
type ColumnResolutionError struct {
	Candidates []string
	Columns    []string
}

func (e *ColumnResolutionError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("geometry: no code column found among %s; set an explicit column override", strings.Join(e.Columns, ", "))
	}
	return fmt.Sprintf("geometry: ambiguous code column, candidates %s; set an explicit column override", strings.Join(e.Candidates, ", "))
}

// GeometryValidityError records a feature excluded from a dissolve because
// its geometry was malformed. It is a diagnostic, not a fatal condition.
type GeometryValidityError struct {
	ID     CanonicalID
	Group  string
	Reason error
}

func (e *GeometryValidityError) Error() string {
	return fmt.Sprintf("geometry %s (group %s) excluded from dissolve: %v", e.ID, e.Group, e.Reason)
}

func (e *GeometryValidityError) Unwrap() error { return e.Reason }

// DegenerateScaleError reports a logarithmic color scale requested over a
// domain that includes zero or negative values. Recoverable: the caller falls
// back to a linear scale and rendering proceeds.
type DegenerateScaleError struct {
	Min float64
}

func (e *DegenerateScaleError) Error() string {
	return fmt.Sprintf("log scale undefined for minimum value %g; falling back to linear", e.Min)
}
