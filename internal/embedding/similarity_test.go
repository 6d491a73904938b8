package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 0}, []float32{1, 0}), 0.0001)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 0.0001)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 0.0001)
}

func TestCosine_ZeroNorm(t *testing.T) {
	assert.Zero(t, Cosine([]float32{0, 0}, []float32{1, 2}))
	assert.Zero(t, Cosine([]float32{1, 2}, []float32{0, 0}))
	assert.Zero(t, Cosine([]float32{0, 0}, []float32{0, 0}))
}

func TestCosine_MismatchedOrEmpty(t *testing.T) {
	assert.Zero(t, Cosine([]float32{1, 2}, []float32{1, 2, 3}))
	assert.Zero(t, Cosine(nil, nil))
}
