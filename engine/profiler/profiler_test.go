package profiler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/oxy-trace/engine/raytracer"
)

func TestTickAggregates(t *testing.T) {
	p := NewProfiler(time.Second)
	clock := p.lastTime
	p.now = func() time.Time { return clock }

	reports := []raytracer.FrameReport{
		{Dispatched: true, Uploads: 5, BytesUploaded: 1000, Stage: 4 * time.Millisecond},
		{Dispatched: true, Stage: 2 * time.Millisecond},
		{Dispatched: false, StaleView: true},
	}
	for _, r := range reports {
		assert.False(t, p.Tick(r, nil), "interval has not elapsed")
	}
	p.Tick(raytracer.FrameReport{}, errors.New("device lost"))

	clock = clock.Add(2 * time.Second)
	assert.True(t, p.Tick(raytracer.FrameReport{Dispatched: true}, nil))
	assert.Equal(t, Stats{}, p.window, "window resets after logging")

	total := p.Total()
	assert.Equal(t, 5, total.Frames)
	assert.Equal(t, 3, total.Dispatched)
	assert.Equal(t, 1, total.Skipped)
	assert.Equal(t, 1, total.Failed)
	assert.Equal(t, 5, total.Uploads)
	assert.Equal(t, uint64(1000), total.BytesUploaded)
	assert.Equal(t, 1, total.StaleViews)
	assert.Equal(t, 6*time.Millisecond, total.Stage)
	assert.Equal(t, 1200*time.Microsecond, total.Mean().Stage)
}

func TestRecordDoesNotLog(t *testing.T) {
	p := NewProfiler(0)
	assert.Equal(t, time.Second, p.updateInterval)
	p.Record(raytracer.FrameReport{Dispatched: true}, nil)
	assert.Equal(t, 1, p.Total().Frames)
	assert.Equal(t, 1, p.window.Frames)
	assert.Equal(t, Stats{}, Stats{}.Mean())
}
