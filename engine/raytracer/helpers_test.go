package raytracer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/model"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-trace/engine/scene"
)

// fixture is the two-mesh, two-material, three-instance scene: two instances of mesh A with
// material M1 and one of mesh B with material M2.
type fixture struct {
	scene    scene.Scene
	meshA    common.AssetID
	meshB    common.AssetID
	m1       common.AssetID
	m2       common.AssetID
	entities []common.EntityID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := scene.NewScene(scene.WithName("fixture"))
	f := &fixture{scene: s}
	f.meshA = s.AddMesh(model.NewCube(1))
	f.meshB = s.AddMesh(model.NewUVSphere(0.5, 8, 6))
	f.m1 = s.AddMaterial(material.NewMaterial("m1", material.WithBaseColor(material.ColorBeige)))
	f.m2 = s.AddMaterial(material.NewMaterial("m2", material.WithBaseColor(material.ColorRed), material.WithMetallic(0.3)))
	f.entities = []common.EntityID{
		s.Spawn(scene.IdentityTransform(), f.meshA, f.m1),
		s.Spawn(scene.Translated(2, 0, 0), f.meshA, f.m1),
		s.Spawn(scene.Translated(0, 2, 0), f.meshB, f.m2),
	}
	return f
}

func (f *fixture) publish() *scene.Snapshot {
	return f.scene.Publish()
}

func (f *fixture) move(t *testing.T, i int, x float32) {
	t.Helper()
	require.NoError(t, f.scene.SetTransform(f.entities[i], scene.Translated(x, 0, 0)))
}
