package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"sentinel", ErrUnauthorized, ErrCodeUnauthorized},
		{"wrapped", fmt.Errorf("%w: bad timestamp", ErrValidation), ErrCodeValidation},
		{"not found family", ErrTaskNotFound, ErrCodeNotFound},
		{"plain error", errors.New("disk full"), ErrCodeInternalError},
		{"nil", nil, ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrTaskNotFound, ErrProjectNotFound))
	assert.True(t, errors.Is(fmt.Errorf("%w: 42", ErrTaskNotFound), ErrTaskNotFound))
	assert.True(t, IsNotFound(ErrProjectNotFound))
}

func TestIsBenign(t *testing.T) {
	assert.True(t, IsBenign(ErrAlreadyMember))
	assert.True(t, IsBenign(fmt.Errorf("%w: bob", ErrNotMember)))
	assert.True(t, IsBenign(ErrAlreadyExists))
	assert.False(t, IsBenign(ErrCannotRemoveLeader))
	assert.False(t, IsBenign(errors.New("write failed")))
}
