package light

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// seconds converts fractional seconds to a duration.
func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func TestDefaults(t *testing.T) {
	l := NewDirectional()
	assert.Equal(t, [3]float32{0, 1, 0.2}, l.Direction())

	l.SetDirection(1, 2, 3)
	assert.Equal(t, [3]float32{1, 2, 3}, l.Direction())
}

func TestAnimateOrbits(t *testing.T) {
	l := NewDirectional(WithDirection(0, 0, 1))

	l.Animate(0)
	assert.Equal(t, [3]float32{0, 1, 0.2}, l.Direction())

	l.Animate(seconds(math.Pi / 2))
	d := l.Direction()
	assert.InDelta(t, 1, d[0], 1e-5)
	assert.InDelta(t, 0, d[1], 1e-5)
	assert.Equal(t, float32(0.2), d[2])
}

func TestOrbitOptions(t *testing.T) {
	l := NewDirectional(WithOrbitHeight(0.5), WithOrbitSpeed(2))
	l.Animate(seconds(math.Pi / 4))
	d := l.Direction()
	assert.InDelta(t, 1, d[0], 1e-5)
	assert.InDelta(t, 0, d[1], 1e-5)
	assert.Equal(t, float32(0.5), d[2])
}
