package httperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsCarryStatus(t *testing.T) {
	cases := map[int]*Error{
		http.StatusBadRequest:          NewBadRequest("bad"),
		http.StatusUnauthorized:        NewUnauthorized("no"),
		http.StatusForbidden:           NewForbidden("nope"),
		http.StatusNotFound:            NewNotFound("gone"),
		http.StatusConflict:            NewConflict("clash"),
		http.StatusTooManyRequests:     NewTooManyRequests("slow down"),
		http.StatusInternalServerError: NewInternalServerError("boom"),
	}
	for code, err := range cases {
		assert.Equal(t, code, err.Code)
		assert.Equal(t, code, StatusOf(err))
	}
}

func TestMessageFormatting(t *testing.T) {
	assert.Equal(t, "Ride unavailable (Status: drafted).", NewConflict("Ride unavailable (Status: %s).", "drafted").Message)
	assert.Equal(t, "100% sure", NewBadRequest("100% sure").Message)
	assert.Equal(t, http.StatusText(http.StatusNotFound), NewNotFound("").Message)

	dynamic := "Email already exists: 100%d@btc.in"
	assert.Equal(t, dynamic, NewConflict("%s", dynamic).Message)
	assert.Equal(t, dynamic, NewBadRequest("%s", dynamic).Message)
}

func TestAsUnwrapsChain(t *testing.T) {
	wrapped := fmt.Errorf("accept ride: %w", NewConflict("taken"))
	httpErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "taken", httpErr.Message)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("plain")))
}
