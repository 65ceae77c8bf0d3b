package raytracer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-trace/engine/kernel"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/material"
)

var errDeviceFull = errors.New("device full")

// failingDevice fails CreateBuffer once failAfter buffers have been created.
type failingDevice struct {
	renderer.RecordingDevice
	failAfter int
	created   int
}

func (d *failingDevice) CreateBuffer(label string, usage renderer.BufferUsage, contents []byte) (renderer.Buffer, error) {
	if d.failAfter >= 0 && d.created >= d.failAfter {
		return nil, errDeviceFull
	}
	d.created++
	return d.RecordingDevice.CreateBuffer(label, usage, contents)
}

func extractFixture(t *testing.T) (*fixture, Extractor) {
	t.Helper()
	f := newFixture(t)
	e := NewExtractor()
	_, err := e.Extract(f.publish())
	require.NoError(t, err)
	return f, e
}

func TestStageEverything(t *testing.T) {
	_, e := extractFixture(t)
	device := renderer.NewRecordingDevice()
	s := NewStager(device, 4)
	defer s.Release()

	report, err := s.Stage(e.Tables(), Changes{Geometry: true, Materials: true, Instances: true})
	require.NoError(t, err)
	assert.Equal(t, 5, report.Uploads)
	assert.Equal(t, device.Stats().BytesUploaded, report.Bytes)

	tables := e.Tables()
	buffers := s.Buffers()
	checks := []struct {
		buf   renderer.Buffer
		label string
		want  []byte
	}{
		{buffers.Vertices, "raytrace/vertices", marshalVertices(tables.Vertices)},
		{buffers.Indices, "raytrace/indices", marshalIndices(tables.Indices)},
		{buffers.Materials, "raytrace/materials", marshalMaterials(tables.Materials)},
		{buffers.Instances, "raytrace/instances", marshalInstances(tables.Instances)},
		{buffers.InstanceCount, "raytrace/instance_count", (&kernel.GPUCounter{Value: 3}).Marshal()},
	}
	for _, c := range checks {
		require.NotNil(t, c.buf, c.label)
		assert.Equal(t, c.label, c.buf.Label())
		got, ok := device.Contents(c.buf)
		require.True(t, ok)
		assert.Equal(t, c.want, got, c.label)
		assert.Zero(t, len(got)%16, "%s is 16-byte padded", c.label)
	}
	assert.Equal(t, renderer.BufferUsageUniform, buffers.InstanceCount.Usage())
}

func TestStageEmptyTables(t *testing.T) {
	device := renderer.NewRecordingDevice()
	s := NewStager(device, 2)
	defer s.Release()

	_, err := s.Stage(emptyTables(), Changes{Geometry: true, Materials: true, Instances: true})
	require.NoError(t, err)

	buffers := s.Buffers()
	sizes := map[string]uint64{
		"vertices":  buffers.Vertices.Size(),
		"indices":   buffers.Indices.Size(),
		"materials": buffers.Materials.Size(),
		"instances": buffers.Instances.Size(),
	}
	assert.Equal(t, map[string]uint64{"vertices": 32, "indices": 16, "materials": 48, "instances": 80}, sizes)

	got, _ := device.Contents(buffers.Vertices)
	assert.Equal(t, make([]byte, 32), got)
	count, _ := device.Contents(buffers.InstanceCount)
	assert.Equal(t, make([]byte, 16), count)
}

func TestStageOnlyChangedTables(t *testing.T) {
	f, e := extractFixture(t)
	device := renderer.NewRecordingDevice()
	s := NewStager(device, 4)
	defer s.Release()

	_, err := s.Stage(e.Tables(), Changes{Geometry: true, Materials: true, Instances: true})
	require.NoError(t, err)
	before := s.Buffers()

	require.NoError(t, f.scene.UpdateMaterial(f.m1, material.NewMaterial("m1", material.WithRoughness(0.9))))
	changes, err := e.Extract(f.publish())
	require.NoError(t, err)

	report, err := s.Stage(e.Tables(), changes)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Uploads, "materials plus the instance pair")

	after := s.Buffers()
	assert.Same(t, before.Vertices, after.Vertices)
	assert.Same(t, before.Indices, after.Indices)
	assert.NotSame(t, before.Materials, after.Materials)
	assert.NotSame(t, before.Instances, after.Instances)
	assert.Equal(t, 5, device.Live(), "superseded buffers are released")

	report, err = s.Stage(e.Tables(), Changes{})
	require.NoError(t, err)
	assert.Zero(t, report.Uploads)
}

func TestStageFailureKeepsBuffers(t *testing.T) {
	_, e := extractFixture(t)
	device := &failingDevice{RecordingDevice: renderer.NewRecordingDevice(), failAfter: -1}
	s := NewStager(device, 2)
	defer s.Release()

	_, err := s.Stage(e.Tables(), Changes{Geometry: true, Materials: true, Instances: true})
	require.NoError(t, err)
	before := s.Buffers()

	device.failAfter = device.created + 2
	_, err = s.Stage(e.Tables(), Changes{Geometry: true, Materials: true, Instances: true})
	assert.ErrorIs(t, err, errDeviceFull)
	assert.Equal(t, before, s.Buffers())
	assert.Equal(t, 5, device.Live(), "partial uploads are released")
}

func TestReleaseStopsWorkers(t *testing.T) {
	_, e := extractFixture(t)
	device := renderer.NewRecordingDevice()
	s := NewStager(device, 2)

	_, err := s.Stage(e.Tables(), Changes{Geometry: true, Materials: true, Instances: true})
	require.NoError(t, err)

	s.Release()
	assert.Nil(t, s.(*stager).pool)
	assert.Zero(t, device.Live())
	assert.NotPanics(t, s.Release)

	_, err = s.Stage(e.Tables(), Changes{Instances: true})
	assert.ErrorIs(t, err, ErrReleased)
	assert.Zero(t, device.Live())

	report, err := s.Stage(e.Tables(), Changes{})
	require.NoError(t, err)
	assert.Zero(t, report.Uploads)
}

func TestNewStagerNilDevice(t *testing.T) {
	assert.Panics(t, func() { NewStager(nil, 1) })
}
