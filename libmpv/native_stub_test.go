//go:build !cgo || !libmpv

package libmpv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStubCreate(t *testing.T) {
	h, err := Create()
	assert.Nil(t, h)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, Available())
	assert.ErrorIs(t, CheckABI(), ErrUnavailable)
}

func TestStubErrorStringAndFree(t *testing.T) {
	assert.Equal(t, "unknown error", ErrorString(-99))
	assert.Equal(t, "invalid parameter", ErrorString(ErrInvalidParameter))
	assert.NotPanics(t, func() { Free(nil) })
}
