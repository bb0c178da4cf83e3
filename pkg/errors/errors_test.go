package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorInvalid, "invalid"},
		{ErrorMissing, "missing"},
		{ErrorTransient, "transient"},
		{ErrorParse, "parse"},
		{ErrorFatal, "fatal"},
		{ErrorClass(99), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			assert.Equal(t, test.expected, test.class.String())
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"empty key", ErrEmptyKey, ErrorInvalid},
		{"out of range wrapped", fmt.Errorf("intensity 120: %w", ErrOutOfRange), ErrorInvalid},
		{"unknown position", ErrUnknownPosition, ErrorInvalid},
		{"pattern missing", ErrPatternNotFound, ErrorMissing},
		{"unknown family", ErrUnknownFamily, ErrorMissing},
		{"parse", ErrParsingFailed, ErrorParse},
		{"config", ErrInvalidConfig, ErrorFatal},
		{"plain error", fmt.Errorf("dial tcp: refused"), ErrorTransient},
		{"classified overrides sentinel", WrapParse(ErrEmptyKey, "player", "decode"), ErrorParse},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, Classify(test.err))
		})
	}
}

func TestWrapHelpers(t *testing.T) {
	assert.Nil(t, WrapInvalid(nil, "player", "submit"))

	err := WrapMissing(ErrPatternNotFound, "pattern", "parse")
	assert.True(t, IsMissing(err))
	assert.False(t, IsInvalid(err))
	assert.True(t, Is(err, ErrPatternNotFound))
	assert.Equal(t, "pattern.parse: pattern file not found", err.Error())

	var ce *ClassifiedError
	assert.True(t, As(err, &ce))
	assert.Equal(t, "pattern", ce.Component)
	assert.Equal(t, "parse", ce.Operation)

	assert.True(t, IsTransient(WrapTransient(ErrNoConnection, "connection", "send")))
	assert.True(t, IsFatal(WrapFatal(New("boom"), "config", "load")))
	assert.False(t, IsParse(nil))
}
