package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateTokenID(t *testing.T) {
	a, err := GenerateTokenID()
	assert.NoError(t, err)
	b, err := GenerateTokenID()
	assert.NoError(t, err)

	assert.Len(t, a, 19)
	assert.NotEqual(t, a, b)
}
