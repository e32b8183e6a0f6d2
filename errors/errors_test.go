package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapToHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", fmt.Errorf("%w: text is empty", ErrValidation), http.StatusUnprocessableEntity},
		{"conflict", ErrConflict, http.StatusConflict},
		{"not found", fmt.Errorf("message 42: %w", ErrNotFound), http.StatusNotFound},
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusUnauthorized},
		{"store", Store(fmt.Errorf("disk full")), http.StatusInternalServerError},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, MapToHTTPStatus(c.err))
		})
	}
}

func TestStore_KeepsDomainErrors(t *testing.T) {
	req := require.New(t)
	req.Nil(Store(nil))
	req.ErrorIs(Store(ErrNotFound), ErrNotFound)
	req.NotErrorIs(Store(ErrNotFound), ErrStore)

	err := Store(fmt.Errorf("connection reset"))
	req.ErrorIs(err, ErrStore)
	req.Contains(err.Error(), "connection reset")
}
