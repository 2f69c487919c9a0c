package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := ValidationError{Field: "lat", Message: "must be a finite number"}
	if !strings.Contains(err.Error(), "lat") {
		t.Errorf("error message should contain field name: %s", err.Error())
	}
}

func TestFeedParseError_Unwrap(t *testing.T) {
	inner := errors.New("unexpected EOF")
	err := FeedParseError{Source: "NSW RFS", Err: inner}
	if !errors.Is(err, inner) {
		t.Errorf("expected FeedParseError to unwrap to inner error")
	}
	if !strings.Contains(err.Error(), "NSW RFS") {
		t.Errorf("error message should contain source: %s", err.Error())
	}
}

func TestDatasetFetchError_Unwrap(t *testing.T) {
	inner := errors.New("HTTP 503")
	err := DatasetFetchError{Dataset: "worldbank", Err: inner}
	if !errors.Is(err, inner) {
		t.Errorf("expected DatasetFetchError to unwrap to inner error")
	}
}

func TestDatabaseError_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := DatabaseError{Operation: "upsert", Err: inner}
	if !errors.Is(err, inner) {
		t.Errorf("expected DatabaseError to unwrap to inner error")
	}
}

func TestPipelineError(t *testing.T) {
	inner := errors.New("boom")
	err := PipelineError{Source: "NSW RFS", Stage: "parse", Err: inner}
	if !errors.Is(err, inner) {
		t.Errorf("expected PipelineError to unwrap to inner error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "parse") || !strings.Contains(msg, "NSW RFS") {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestConfigurationError(t *testing.T) {
	err := ConfigurationError{Key: "SAFE_THRESHOLD", Message: "not set"}
	if !strings.Contains(err.Error(), "SAFE_THRESHOLD") {
		t.Errorf("unexpected message: %s", err.Error())
	}
}
