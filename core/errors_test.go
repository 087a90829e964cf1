package core

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func testTable() ProcessorErrorTable {
	return ProcessorErrorTable{
		Processor:  "kushki",
		Declined:   NewNativeCodeSet("005", "051"),
		Restricted: NewNativeCodeSet("036", "059"),
	}
}

func TestClassifyDeclinedCode(t *testing.T) {
	err := testTable().Classify("051", "Insufficient funds", map[string]any{"ticket": "t1"}, nil)
	if !IsErrorCode(err, ErrorCodeDeclined) {
		t.Fatalf("expected %s, got %v", ErrorCodeDeclined, err)
	}
	if err.Message != "Insufficient funds" {
		t.Fatalf("processor text should survive, got %q", err.Message)
	}
	if err.Metadata["processor_code"] != "051" {
		t.Fatalf("missing native code metadata: %v", err.Metadata)
	}
	if err.Metadata["ticket"] != "t1" {
		t.Fatalf("raw response metadata dropped: %v", err.Metadata)
	}
}

func TestClassifyDeclinedWinsOverRestricted(t *testing.T) {
	table := ProcessorErrorTable{
		Processor:  "kushki",
		Declined:   NewNativeCodeSet("036"),
		Restricted: NewNativeCodeSet("036"),
	}
	err := table.Classify("036", "", nil, nil)
	if !IsErrorCode(err, ErrorCodeDeclined) {
		t.Fatalf("declined set is checked first, got %v", err)
	}
}

func TestClassifyTimeout(t *testing.T) {
	err := testTable().Classify("", "", nil, context.DeadlineExceeded)
	if !IsErrorCode(err, ErrorCodeUnreachable) {
		t.Fatalf("expected %s, got %v", ErrorCodeUnreachable, err)
	}
}

func TestClassifyRestricted(t *testing.T) {
	err := testTable().Classify("059", "Suspected fraud", nil, nil)
	if !IsErrorCode(err, ErrorCodeRestricted) {
		t.Fatalf("expected %s, got %v", ErrorCodeRestricted, err)
	}
	if err.Metadata["restricted"] != true {
		t.Fatalf("restricted metadata flag missing: %v", err.Metadata)
	}
}

func TestClassifyCanonicalErrorPassesThrough(t *testing.T) {
	source := UnreachableError("fis")
	err := testTable().Classify("999", "", nil, source)
	if !IsErrorCode(err, ErrorCodeUnreachable) {
		t.Fatalf("canonical errors must pass through, got %v", err)
	}
}

func TestClassifyUnknownFoldsToInternal(t *testing.T) {
	err := testTable().Classify("999", "weird", nil, errors.New("boom"))
	if !IsErrorCode(err, ErrorCodeInternal) {
		t.Fatalf("expected %s, got %v", ErrorCodeInternal, err)
	}
}

func TestNewErrorUnknownCodeFoldsToInternal(t *testing.T) {
	err := NewError("E999", nil)
	if err.TextCode != ErrorCodeInternal {
		t.Fatalf("expected fold to %s, got %s", ErrorCodeInternal, err.TextCode)
	}
	if err.Code != 500 {
		t.Fatalf("expected http 500, got %d", err.Code)
	}
}

func TestCanonicalEnvelopeShape(t *testing.T) {
	cases := []struct {
		code   string
		status int
	}{
		{ErrorCodeValidation, 400},
		{ErrorCodeInternal, 500},
		{ErrorCodeInvalidBin, 400},
		{ErrorCodeUnreachable, 500},
		{ErrorCodeUnsupported, 400},
		{ErrorCodeProcessorConfig, 500},
		{ErrorCodeProcessorFault, 502},
		{ErrorCodeRestricted, 400},
		{ErrorCodeDeclined, 400},
	}
	for _, tc := range cases {
		err := NewError(tc.code, nil)
		if err.TextCode != tc.code {
			t.Fatalf("%s: text code %s", tc.code, err.TextCode)
		}
		if err.Code != tc.status {
			t.Fatalf("%s: expected http %d, got %d", tc.code, tc.status, err.Code)
		}
		if err.Message == "" {
			t.Fatalf("%s: message is empty", tc.code)
		}
	}
}

func TestWrapErrorKeepsSource(t *testing.T) {
	source := errors.New("socket closed")
	err := WrapError(source, ErrorCodeProcessorFault, nil)
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatal("expected rich error")
	}
	if rich.TextCode != ErrorCodeProcessorFault {
		t.Fatalf("expected %s, got %s", ErrorCodeProcessorFault, rich.TextCode)
	}
}
