package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapAndInspect(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(CodeStore, "failed to load consultations", cause)

	require.True(t, IsCode(err, CodeStore))
	require.Equal(t, "failed to load consultations", MessageOf(err))
	require.ErrorIs(t, err, cause)
	require.Equal(t, "failed to load consultations: connection reset", err.Error())

	outer := fmt.Errorf("reload: %w", err)
	require.Equal(t, CodeStore, CodeOf(outer))
}

func TestPlainErrors(t *testing.T) {
	require.Equal(t, "", CodeOf(errors.New("x")))
	require.Equal(t, "x", MessageOf(errors.New("x")))
	require.Equal(t, "", MessageOf(nil))
}
