package ai

import "fmt"

// AnalysisErrorKind distinguishes why a model call failed. Timeouts are a
// separate kind from provider-reported failures so callers can apply
// different retry policies.
type AnalysisErrorKind string

const (
	ErrKindProvider AnalysisErrorKind = "provider"
	ErrKindTimeout  AnalysisErrorKind = "timeout"
	ErrKindParse    AnalysisErrorKind = "parse"
	ErrKindSchema   AnalysisErrorKind = "schema"
)

// AnalysisError is fatal for the call that produced it: a response that does
// not parse or does not match the schema is never silently patched.
type AnalysisError struct {
	Kind AnalysisErrorKind
	Err  error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis %s error: %v", e.Kind, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}
