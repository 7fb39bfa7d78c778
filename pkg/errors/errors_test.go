package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	err := FromError(fmt.Errorf("boom"))

	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Nil(t, FromError(nil))
}

func TestCloneMatchesOriginalCode(t *testing.T) {
	cloned := Clone(ErrGenerationExhausted, "no timetable after 8 attempts")
	wrapped := fmt.Errorf("generate: %w", cloned)

	assert.True(t, errors.Is(wrapped, ErrGenerationExhausted))
	assert.False(t, errors.Is(wrapped, ErrValidation))
	assert.Equal(t, http.StatusUnprocessableEntity, FromError(wrapped).Status)
	assert.Equal(t, "could not generate a conflict-free timetable", ErrGenerationExhausted.Message)
}
