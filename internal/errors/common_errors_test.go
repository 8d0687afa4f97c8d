package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "with cause",
			err:  NewParsingError("bad quantity", errors.New("not a number")),
			want: "[PARSING] bad quantity: not a number",
		},
		{
			name: "without cause",
			err:  NewNoDataError("no data", nil),
			want: "[NO_DATA] no data",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := NewArchiveError("cannot read upload", fmt.Errorf("wrapped: %w", sentinel))

	assert.True(t, errors.Is(err, sentinel))

	outer := fmt.Errorf("request: %w", err)
	var appErr *AppError
	require.True(t, errors.As(outer, &appErr))
	assert.Equal(t, ErrTypeArchive, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := NewParsingError("bad cell", nil).
		WithContext("file", "a.xlsx").
		WithContext("row", 4)

	assert.Equal(t, "a.xlsx", err.Context["file"])
	assert.Equal(t, 4, err.Context["row"])

	bare := &AppError{Type: ErrTypeStorage, Message: "disk"}
	bare.WithContext("path", "/tmp")
	assert.Equal(t, "/tmp", bare.Context["path"])
}

func TestConstructorsSetType(t *testing.T) {
	tests := []struct {
		err  *AppError
		want ErrorType
	}{
		{NewParsingError("m", nil), ErrTypeParsing},
		{NewAppValidationError("m", nil), ErrTypeValidation},
		{NewNoDataError("m", nil), ErrTypeNoData},
		{NewArchiveError("m", nil), ErrTypeArchive},
		{NewStorageError("m", nil), ErrTypeStorage},
		{NewConfigError("m", nil), ErrTypeConfig},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Type)
			assert.Equal(t, "m", tt.err.Message)
			assert.NotNil(t, tt.err.Context)
		})
	}
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrTypeNoData, TypeOf(fmt.Errorf("run: %w", NewNoDataError("none", nil))))
	assert.Equal(t, ErrorType(""), TypeOf(errors.New("plain")))
	assert.Equal(t, ErrorType(""), TypeOf(nil))
}
