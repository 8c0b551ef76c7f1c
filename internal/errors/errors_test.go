package errors

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := MissingColumn("ESPECIE")

	assert.True(t, Is(err, ErrMissingColumn))
	assert.False(t, Is(err, ErrJoinMismatch))

	wrapped := fmt.Errorf("section especies: %w", err)
	assert.True(t, Is(wrapped, ErrMissingColumn))
}

func TestError_WithCause(t *testing.T) {
	err := ErrUnavailable.WithCause(io.ErrUnexpectedEOF)

	assert.Equal(t, "source unavailable: unexpected EOF", err.Error())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.True(t, Is(err, ErrUnavailable))
	// The sentinel itself must stay untouched.
	assert.Nil(t, ErrUnavailable.Unwrap())
}

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeValidation, http.StatusBadRequest},
		{CodeMissingColumn, http.StatusUnprocessableEntity},
		{CodeJoinMismatch, http.StatusUnprocessableEntity},
		{CodeMalformedValue, http.StatusUnprocessableEntity},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestJoinMismatch_Details(t *testing.T) {
	err := JoinMismatch([]string{"BOGOTA D.C."}, []string{"META", "VICHADA"})

	details, ok := err.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []string{"BOGOTA D.C."}, details["unmatched_keys"])
	assert.Equal(t, []string{"META", "VICHADA"}, details["unmatched_entities"])
	assert.Contains(t, err.Error(), "1 aggregated keys and 2 geographic entities")
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))

	derr := NoData("empty")
	assert.Same(t, derr, From(derr))

	foreign := From(io.EOF)
	assert.Equal(t, CodeInternal, foreign.Code)
	assert.ErrorIs(t, foreign, io.EOF)

	assert.Equal(t, CodeMalformedValue, CodeOf(MalformedValue("VOLUMEN_M3", "abc")))
}
