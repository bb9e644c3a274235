package events

import "fmt"

// SchemaError reports a required column missing from an input table. It is
// fatal: the run aborts without writing partial output.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("required column %q is missing", e.Column)
}

// TooFewEvents reports that a partition (typically a telescope type or
// particle population) has no usable rows after filtering.
type TooFewEvents struct {
	Partition string
	Reason    string
}

func (e *TooFewEvents) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("too few events for %s", e.Partition)
	}
	return fmt.Sprintf("too few events for %s: %s", e.Partition, e.Reason)
}

// ConfigurationError reports an inconsistent or underspecified setup:
// unknown columns in quality criteria, missing field-of-view offset bins
// for point-like reweighting, a single-class training target, and similar.
// It is surfaced before any data processing or model fitting where
// detectable.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string { return e.Reason }

// Configf builds a ConfigurationError from a format string.
func Configf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}
