package raytracer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccumulatorSequence(t *testing.T) {
	tests := []struct {
		name    string
		changed []bool
		want    []uint32
	}{
		{"static", []bool{false, false, false, false, false}, []uint32{0, 1, 2, 3, 4}},
		{"change resets", []bool{false, false, true, false, false}, []uint32{0, 1, 0, 1, 2}},
		{"first frame ignores change", []bool{true, false}, []uint32{0, 1}},
		{"every frame changes", []bool{true, true, true}, []uint32{0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAccumulator(DefaultCeiling, 1)
			got := make([]uint32, 0, len(tt.changed))
			for _, c := range tt.changed {
				n, _ := a.Advance(c)
				got = append(got, n)
				assert.Equal(t, n, a.Count())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAccumulatorSeeds(t *testing.T) {
	a := NewAccumulator(DefaultCeiling, 42)
	b := NewAccumulator(DefaultCeiling, 42)
	c := NewAccumulator(DefaultCeiling, 43)

	differs := false
	for range 64 {
		_, sa := a.Advance(false)
		_, sb := b.Advance(false)
		_, sc := c.Advance(false)
		for _, v := range sa {
			assert.GreaterOrEqual(t, v, float32(0))
			assert.Less(t, v, float32(1))
		}
		assert.Equal(t, sa, sb, "equal seeds give equal sequences")
		if sa != sc {
			differs = true
		}
	}
	assert.True(t, differs, "different seeds give different sequences")
}

func TestAccumulatorConverged(t *testing.T) {
	a := NewAccumulator(3, 7)
	assert.Equal(t, uint32(3), a.Ceiling())

	var converged []bool
	for range 6 {
		a.Advance(false)
		converged = append(converged, a.Converged())
	}
	assert.Equal(t, []bool{false, false, false, false, true, true}, converged)

	a.Advance(true)
	assert.False(t, a.Converged())
}
