package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "identical", a: "grilledchickensalad", b: "grilledchickensalad", want: 1.0},
		{name: "both empty", a: "", b: "", want: 1.0},
		{name: "one empty", a: "chicken", b: "", want: 0.0},
		{name: "kitten sitting", a: "kitten", b: "sitting", want: 1.0 - 3.0/7.0},
		{name: "single substitution", a: "aaaaaaaaaa", b: "aaaaaaaaab", want: 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"tomato soup", "tomato stew"},
		{"egg", "eggs"},
		{"abc", "xyz"},
	}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]))
	}
}

func TestSimilarityRange(t *testing.T) {
	s := Similarity("completely", "different")
	assert.GreaterOrEqual(t, s, 0.0)
	assert.LessOrEqual(t, s, 1.0)
}
