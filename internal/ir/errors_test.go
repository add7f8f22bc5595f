package ir

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodesMatchThroughWrapping(t *testing.T) {
	base := NewDuplicateKey("DISPATCHLOAD", errors.New("UNIQUE constraint failed"))
	wrapped := fmt.Errorf("ingest DISPATCHLOAD: %w", base)

	assert.True(t, IsDuplicateKey(wrapped))
	assert.True(t, errors.Is(wrapped, ErrDuplicateKey))
	assert.False(t, IsSourceUnavailable(wrapped))
	assert.Equal(t, CodeDuplicateKey, CodeOf(wrapped))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "source unavailable",
			err:  NewSourceUnavailable("DUDETAIL", 2020, 1, errors.New("status 404")),
			want: "SOURCE_UNAVAILABLE: no archive for 2020-01 (table=DUDETAIL): status 404",
		},
		{
			name: "unknown column",
			err:  NewUnknownColumn("EXAMPLE", "NOPE", "not in schema catalog"),
			want: "UNKNOWN_COLUMN: not in schema catalog (table=EXAMPLE, column=NOPE)",
		},
		{
			name: "unmapped",
			err:  NewUnmappedEnumValue("service", "RAISE1SEC"),
			want: `UNMAPPED_ENUM_VALUE: value outside vocabulary (column=service) value="RAISE1SEC"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewSourceUnavailable("X", 2020, 2, cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsSourceUnavailable(err))
	assert.True(t, IsUnmappedEnumValue(NewUnmappedEnumValue("v", "x")))
	assert.True(t, IsUnknownColumn(NewUnknownColumn("t", "c", "m")))
}
