package core

import (
	"context"
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Canonical error codes. Every failure leaving a provider resolves to exactly
// one entry of this table.
const (
	ErrorCodeValidation      = "E001"
	ErrorCodeInternal        = "E002"
	ErrorCodeInvalidBin      = "E011"
	ErrorCodeUnreachable     = "E027"
	ErrorCodeUnsupported     = "E028"
	ErrorCodeProcessorConfig = "E228"
	ErrorCodeProcessorFault  = "E500"
	ErrorCodeRestricted      = "E801"
	ErrorCodeDeclined        = "K006"
)

type errorEntry struct {
	message    string
	httpStatus int
	category   goerrors.Category
}

var errorCatalog = map[string]errorEntry{
	ErrorCodeValidation:      {"Invalid request body", http.StatusBadRequest, goerrors.CategoryValidation},
	ErrorCodeInternal:        {"Unexpected internal error", http.StatusInternalServerError, goerrors.CategoryInternal},
	ErrorCodeInvalidBin:      {"Invalid bin information", http.StatusBadRequest, goerrors.CategoryBadInput},
	ErrorCodeUnreachable:     {"Processor unreachable", http.StatusInternalServerError, goerrors.CategoryExternal},
	ErrorCodeUnsupported:     {"Operation not supported by processor", http.StatusBadRequest, goerrors.CategoryOperation},
	ErrorCodeProcessorConfig: {"Invalid processor configuration", http.StatusInternalServerError, goerrors.CategoryInternal},
	ErrorCodeProcessorFault:  {"Processor failure", http.StatusBadGateway, goerrors.CategoryExternal},
	ErrorCodeRestricted:      {"Transaction restricted by issuer", http.StatusBadRequest, goerrors.CategoryExternal},
	ErrorCodeDeclined:        {"Transaction declined by processor", http.StatusBadRequest, goerrors.CategoryExternal},
}

// NewError builds the canonical error envelope for a catalog code. Unknown
// codes fold into the internal entry so an unclassified failure can never
// escape.
func NewError(code string, metadata map[string]any) *goerrors.Error {
	entry, ok := errorCatalog[code]
	if !ok {
		code = ErrorCodeInternal
		entry = errorCatalog[ErrorCodeInternal]
	}
	err := goerrors.New(entry.message, entry.category).
		WithCode(entry.httpStatus).
		WithTextCode(code)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// WrapError attaches a source error to the canonical envelope for code.
func WrapError(source error, code string, metadata map[string]any) *goerrors.Error {
	entry, ok := errorCatalog[code]
	if !ok {
		code = ErrorCodeInternal
		entry = errorCatalog[ErrorCodeInternal]
	}
	if source == nil {
		return NewError(code, metadata)
	}
	err := goerrors.Wrap(source, entry.category, entry.message).
		WithCode(entry.httpStatus).
		WithTextCode(code)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// ValidationError fails a request before any remote call is made.
func ValidationError(message string, metadata map[string]any) *goerrors.Error {
	err := NewError(ErrorCodeValidation, metadata)
	if strings.TrimSpace(message) != "" {
		err.Message = message
	}
	return err
}

// DeclinedError reports an explicit processor rejection, carrying the
// processor message and raw response metadata.
func DeclinedError(processor, nativeCode, nativeText string, raw map[string]any) *goerrors.Error {
	metadata := map[string]any{
		"processor":             processor,
		"processor_code":        nativeCode,
		"processor_description": nativeText,
	}
	for key, value := range raw {
		metadata[key] = value
	}
	err := NewError(ErrorCodeDeclined, metadata)
	if strings.TrimSpace(nativeText) != "" {
		err.Message = nativeText
	}
	return err
}

// RestrictedError is a decline against the restricted/blocked subset.
func RestrictedError(processor, nativeCode, nativeText string) *goerrors.Error {
	err := NewError(ErrorCodeRestricted, map[string]any{
		"processor":             processor,
		"processor_code":        nativeCode,
		"processor_description": nativeText,
		"restricted":            true,
	})
	if strings.TrimSpace(nativeText) != "" {
		err.Message = nativeText
	}
	return err
}

// UnreachableError is the canonical timeout failure for a processor call.
func UnreachableError(processor string) *goerrors.Error {
	return NewError(ErrorCodeUnreachable, map[string]any{"processor": processor})
}

// UnsupportedOperationError reports an operation the processor does not
// implement.
func UnsupportedOperationError(processor, operation string) *goerrors.Error {
	return NewError(ErrorCodeUnsupported, map[string]any{
		"processor": processor,
		"operation": operation,
	})
}

// ProcessorConfigError reports a processor configuration that cannot build a
// valid request, such as a missing mandatory soft descriptor.
func ProcessorConfigError(message string, metadata map[string]any) *goerrors.Error {
	err := NewError(ErrorCodeProcessorConfig, metadata)
	if strings.TrimSpace(message) != "" {
		err.Message = message
	}
	return err
}

// InternalError folds an arbitrary failure into the canonical internal entry.
func InternalError(source error, processor string) *goerrors.Error {
	return WrapError(source, ErrorCodeInternal, map[string]any{"processor": processor})
}

// ErrorCode extracts the canonical code from an error, empty when the error
// does not carry the canonical envelope.
func ErrorCode(err error) string {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.TextCode
	}
	return ""
}

// IsErrorCode reports whether err resolves to the given canonical code.
func IsErrorCode(err error, code string) bool {
	return ErrorCode(err) == code
}

// NativeCodeSet is a processor-owned set of native response codes.
type NativeCodeSet map[string]struct{}

func NewNativeCodeSet(codes ...string) NativeCodeSet {
	set := make(NativeCodeSet, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		set[code] = struct{}{}
	}
	return set
}

func (s NativeCodeSet) Contains(code string) bool {
	if len(s) == 0 {
		return false
	}
	_, ok := s[strings.TrimSpace(code)]
	return ok
}

// ProcessorErrorTable is the per-processor classification input: the codes
// the processor documents as declines and the restricted/blocked subset.
type ProcessorErrorTable struct {
	Processor  string
	Declined   NativeCodeSet
	Restricted NativeCodeSet
}

// Classify folds a processor-native failure into the canonical taxonomy.
// Order: known-declined set, canonical timeout, restricted subset, internal.
// Re-entrant canonical errors pass through unchanged so nested calls keep
// their classification.
func (t ProcessorErrorTable) Classify(nativeCode, nativeText string, raw map[string]any, source error) *goerrors.Error {
	if t.Declined.Contains(nativeCode) {
		return DeclinedError(t.Processor, nativeCode, nativeText, raw)
	}
	if isTimeoutError(source) {
		return UnreachableError(t.Processor)
	}
	if t.Restricted.Contains(nativeCode) {
		return RestrictedError(t.Processor, nativeCode, nativeText)
	}
	var rich *goerrors.Error
	if goerrors.As(source, &rich) && rich.TextCode != "" {
		if _, known := errorCatalog[rich.TextCode]; known {
			return rich
		}
	}
	return InternalError(source, t.Processor)
}

func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return IsErrorCode(err, ErrorCodeUnreachable)
}
