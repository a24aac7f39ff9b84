package pokemon

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCount(t *testing.T) {
	tcs := []struct {
		total, size, want int
	}{
		{0, 5, 1},
		{1, 5, 1},
		{5, 5, 1},
		{6, 5, 2},
		{10, 5, 2},
		{11, 5, 3},
		{-3, 5, 1},
		{7, 0, 1},
	}
	for _, tc := range tcs {
		t.Run(fmt.Sprintf("%d/%d", tc.total, tc.size), func(t *testing.T) {
			assert.Equal(t, tc.want, PageCount(tc.total, tc.size))
		})
	}
}

func TestParseID(t *testing.T) {
	id, err := ParseID(" 25 ")
	require.NoError(t, err)
	assert.Equal(t, int64(25), id)

	for _, raw := range []string{"", "pikachu", "2.5", "0", "-4"} {
		_, err := ParseID(raw)
		assert.True(t, IsValidation(err), "raw %q", raw)
	}
}

func TestErrorClassification(t *testing.T) {
	transport := fmt.Errorf("load: %w", &TransportError{Op: "list pokemon", StatusCode: 503})
	assert.True(t, IsUpstream(transport))
	assert.False(t, IsValidation(transport))
	assert.Contains(t, transport.Error(), "503")

	inner := errors.New("unexpected EOF")
	parse := &ParseError{Op: "list pokemon", Wrapping: inner}
	assert.True(t, IsUpstream(parse))
	assert.ErrorIs(t, parse, inner)

	assert.False(t, IsUpstream(&ValidationError{Field: "id", Message: "nope"}))
	assert.False(t, IsUpstream(errors.New("boom")))
}
