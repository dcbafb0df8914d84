package hl7

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrMalformedPath indicates a field path does not match SEG[.F[.C[.S]]].
	ErrMalformedPath = errors.New("malformed path")

	// ErrSegmentNotFound indicates the addressed segment does not exist.
	ErrSegmentNotFound = errors.New("segment not found")

	// ErrMissingHeader indicates input lacks a leading MSH segment or its
	// encoding characters are malformed.
	ErrMissingHeader = errors.New("missing MSH header")

	// ErrMalformedSegment indicates a line whose segment name is not valid.
	ErrMalformedSegment = errors.New("malformed segment")

	// ErrDelimitersLocked indicates an attempt to change delimiters that were
	// established from parsed input.
	ErrDelimitersLocked = errors.New("delimiters locked")

	// ErrInvalidValue indicates a mapping value that is neither scalar nor composite,
	// or a wire value holding a delimiter above the level it is written to.
	ErrInvalidValue = errors.New("invalid value")

	// ErrInvalidPolicy indicates a processing policy entry is malformed.
	ErrInvalidPolicy = errors.New("invalid policy")

	// ErrMissingEncryptor indicates a required encryptor was not registered.
	ErrMissingEncryptor = errors.New("missing encryptor")

	// ErrMissingHasher indicates a required hasher was not registered.
	ErrMissingHasher = errors.New("missing hasher")

	// ErrMissingMasker indicates a required masker was not registered.
	ErrMissingMasker = errors.New("missing masker")

	// ErrUnmarshal indicates the codec failed to unmarshal input data.
	ErrUnmarshal = errors.New("unmarshal failed")

	// ErrMarshal indicates the codec failed to marshal output data.
	ErrMarshal = errors.New("marshal failed")

	// ErrEncrypt indicates encryption of a field failed.
	ErrEncrypt = errors.New("encrypt failed")

	// ErrDecrypt indicates decryption of a field failed.
	ErrDecrypt = errors.New("decrypt failed")

	// ErrHash indicates hashing of a field failed.
	ErrHash = errors.New("hash failed")
)

// PathError reports a path that could not be resolved.
type PathError struct {
	Path   string // Offending path as given
	Reason string // Why the path was rejected
}

func (e *PathError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %q: %s", ErrMalformedPath.Error(), e.Path, e.Reason)
	}
	return fmt.Sprintf("%s %q", ErrMalformedPath.Error(), e.Path)
}

func (e *PathError) Unwrap() error {
	return ErrMalformedPath
}

// SegmentError reports a segment selector with no matching segment.
type SegmentError struct {
	Selector string
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSegmentNotFound.Error(), e.Selector)
}

func (e *SegmentError) Unwrap() error {
	return ErrSegmentNotFound
}

// ParseError represents a failure while decoding wire text.
// Line is 1-based and counts only non-blank segment lines.
type ParseError struct {
	Err    error // Underlying sentinel (ErrMissingHeader, ErrMalformedSegment)
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (segment %d): %s", e.Err.Error(), e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ConfigError represents a processor configuration error.
// It wraps a sentinel error with additional context about the path and algorithm.
type ConfigError struct {
	Err       error  // Underlying sentinel error (ErrMissingEncryptor, etc.)
	Path      string // Field path that triggered the error
	Algorithm string // Algorithm or type that was missing/invalid
}

func (e *ConfigError) Error() string {
	if e.Path != "" && e.Algorithm != "" {
		return fmt.Sprintf("%s for algorithm %q (path %s)", e.Err.Error(), e.Algorithm, e.Path)
	}
	if e.Algorithm != "" {
		return fmt.Sprintf("%s for algorithm %q", e.Err.Error(), e.Algorithm)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s (path %s)", e.Err.Error(), e.Path)
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// TransformError represents an error during field transformation.
type TransformError struct {
	Err       error  // Underlying sentinel error (ErrEncrypt, ErrDecrypt, ErrHash)
	Path      string // Field path that failed
	Operation string // encrypt, decrypt, hash
	Cause     error  // Original error from the underlying operation
}

func (e *TransformError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", e.Operation, e.Path, e.Cause)
	}
	return fmt.Sprintf("%s %s", e.Operation, e.Path)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// CodecError represents a marshal/unmarshal error.
type CodecError struct {
	Err   error // Underlying sentinel error (ErrMarshal, ErrUnmarshal)
	Cause error // Original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

func newPathError(path, reason string) error {
	return &PathError{Path: path, Reason: reason}
}

func newParseError(sentinel error, line int, reason string) error {
	return &ParseError{Err: sentinel, Line: line, Reason: reason}
}

func newConfigError(sentinel error, algorithm, path string) error {
	return &ConfigError{
		Err:       sentinel,
		Algorithm: algorithm,
		Path:      path,
	}
}

func newTransformError(sentinel error, operation, path string, cause error) error {
	return &TransformError{
		Err:       sentinel,
		Path:      path,
		Operation: operation,
		Cause:     cause,
	}
}

func newCodecError(sentinel, cause error) error {
	return &CodecError{
		Err:   sentinel,
		Cause: cause,
	}
}
