package raytracer

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/kernel"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
)

// Buffers are the GPU buffers derived from the current Tables.
type Buffers struct {
	Vertices      renderer.Buffer
	Indices       renderer.Buffer
	Instances     renderer.Buffer
	InstanceCount renderer.Buffer
	Materials     renderer.Buffer
}

// StageReport summarizes one Stage call.
type StageReport struct {
	Uploads int
	Bytes   uint64
	Marshal time.Duration
}

// stager is the implementation of the Stager interface.
type stager struct {
	device  renderer.Device
	pool    worker.DynamicWorkerPool
	buffers Buffers
}

// Stager uploads rebuilt tables into fresh GPU buffers. It never writes into an existing buffer:
// a dirty table gets a new buffer and the superseded one is released, leaving its memory to the
// device's in-flight tracking. Not safe for concurrent use.
type Stager interface {
	// Stage uploads every table flagged in changes. Tables are marshalled in parallel, then the
	// buffers are created in order. If any creation fails no held buffer is replaced.
	//
	// Parameters:
	//   - tables: the current tables
	//   - changes: which tables were rebuilt
	//
	// Returns:
	//   - StageReport: the uploads performed
	//   - error: an error from the device
	Stage(tables *Tables, changes Changes) (StageReport, error)

	// Buffers returns the held buffers. Fields are nil until the first Stage.
	//
	// Returns:
	//   - Buffers: the held buffers
	Buffers() Buffers

	// Release releases every held buffer and stops the marshalling workers. Staging afterwards
	// fails with ErrReleased.
	Release()
}

var _ Stager = &stager{}

// NewStager creates a Stager uploading through device with a pool of marshalling workers.
//
// Parameters:
//   - device: the device buffers are created on
//   - workers: the maximum number of marshalling goroutines
//
// Returns:
//   - Stager: the stager
func NewStager(device renderer.Device, workers int) Stager {
	if device == nil {
		panic("raytracer: stager needs a device")
	}
	return &stager{
		device: device,
		pool:   worker.NewDynamicWorkerPool(max(workers, 1), 256, 1*time.Second),
	}
}

func (s *stager) Buffers() Buffers {
	return s.buffers
}

// upload is one buffer to create this frame.
type upload struct {
	label   string
	usage   renderer.BufferUsage
	marshal func() []byte
	target  *renderer.Buffer
	old     renderer.Buffer
	data    []byte
}

func (s *stager) Stage(tables *Tables, changes Changes) (StageReport, error) {
	var uploads []*upload
	next := s.buffers
	if changes.Geometry {
		uploads = append(uploads,
			&upload{label: "raytrace/vertices", usage: renderer.BufferUsageStorage, target: &next.Vertices, old: s.buffers.Vertices,
				marshal: func() []byte { return marshalVertices(tables.Vertices) }},
			&upload{label: "raytrace/indices", usage: renderer.BufferUsageStorage, target: &next.Indices, old: s.buffers.Indices,
				marshal: func() []byte { return marshalIndices(tables.Indices) }},
		)
	}
	if changes.Materials {
		uploads = append(uploads,
			&upload{label: "raytrace/materials", usage: renderer.BufferUsageStorage, target: &next.Materials, old: s.buffers.Materials,
				marshal: func() []byte { return marshalMaterials(tables.Materials) }},
		)
	}
	if changes.Instances {
		uploads = append(uploads,
			&upload{label: "raytrace/instances", usage: renderer.BufferUsageStorage, target: &next.Instances, old: s.buffers.Instances,
				marshal: func() []byte { return marshalInstances(tables.Instances) }},
			&upload{label: "raytrace/instance_count", usage: renderer.BufferUsageUniform, target: &next.InstanceCount, old: s.buffers.InstanceCount,
				marshal: func() []byte {
					c := kernel.GPUCounter{Value: uint32(len(tables.Instances))}
					return c.Marshal()
				}},
		)
	}

	var report StageReport
	if len(uploads) == 0 {
		return report, nil
	}
	if s.pool == nil {
		return report, ErrReleased
	}

	// Tables are disjoint and read-only, so marshalling fans out; the WaitGroup is the per-frame
	// barrier before any buffer is created.
	start := time.Now()
	var wg sync.WaitGroup
	for i, u := range uploads {
		wg.Add(1)
		s.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				u.data = u.marshal()
				return nil, nil
			},
		})
	}
	wg.Wait()
	report.Marshal = time.Since(start)

	created := make([]renderer.Buffer, 0, len(uploads))
	for _, u := range uploads {
		b, err := s.device.CreateBuffer(u.label, u.usage, u.data)
		if err != nil {
			for _, c := range created {
				c.Release()
			}
			return StageReport{}, fmt.Errorf("raytracer: staging %s: %w", u.label, err)
		}
		created = append(created, b)
		*u.target = b
		report.Uploads++
		report.Bytes += uint64(len(u.data))
	}

	for _, u := range uploads {
		if u.old != nil {
			u.old.Release()
		}
	}
	s.buffers = next
	logger.Debugf("staged %d buffers, %d bytes", report.Uploads, report.Bytes)
	return report, nil
}

func (s *stager) Release() {
	if s.pool != nil {
		s.pool.Stop()
		s.pool = nil
	}
	for _, b := range []renderer.Buffer{s.buffers.Vertices, s.buffers.Indices, s.buffers.Materials, s.buffers.Instances, s.buffers.InstanceCount} {
		if b != nil {
			b.Release()
		}
	}
	s.buffers = Buffers{}
}

// padTable pads a marshalled table to 16 bytes. An empty table becomes one zeroed record so the
// binding stays valid.
func padTable(data []byte, recordSize int) []byte {
	if len(data) == 0 {
		return make([]byte, common.AlignUp(max(recordSize, common.GPUAlignment), common.GPUAlignment))
	}
	return common.PadTo16(data)
}

func marshalVertices(vertices []kernel.GPUVertex) []byte {
	var rec kernel.GPUVertex
	buf := make([]byte, 0, len(vertices)*rec.Size())
	for i := range vertices {
		buf = append(buf, vertices[i].Marshal()...)
	}
	return padTable(buf, rec.Size())
}

func marshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return padTable(buf, 4)
}

func marshalMaterials(materials []kernel.GPUMaterial) []byte {
	var rec kernel.GPUMaterial
	buf := make([]byte, 0, len(materials)*rec.Size())
	for i := range materials {
		buf = append(buf, materials[i].Marshal()...)
	}
	return padTable(buf, rec.Size())
}

func marshalInstances(instances []kernel.GPUInstance) []byte {
	var rec kernel.GPUInstance
	buf := make([]byte, 0, len(instances)*rec.Size())
	for i := range instances {
		buf = append(buf, instances[i].Marshal()...)
	}
	return padTable(buf, rec.Size())
}
