package scene

import (
	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/model"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/material"
)

// Demo populates s with the built-in scene: one unit UV sphere instanced twice, a beige one at
// the origin and a red one offset below and to the right.
//
// Parameters:
//   - s: the scene to populate; it is cleared first
//
// Returns:
//   - *Loaded: the IDs of the created assets and entities
func Demo(s Scene) *Loaded {
	s.Clear()

	sphere := model.NewUVSphere(1, 16, 16)
	sphere.Name = "sphere"
	meshID := s.AddMesh(sphere)

	beige := material.NewMaterial("beige",
		material.WithBaseColor(material.ColorBeige),
		material.WithMetallic(0.3),
		material.WithRoughness(0.3),
	)
	red := beige.With(material.WithName("red"), material.WithBaseColor(material.ColorRed))
	beigeID := s.AddMaterial(beige)
	redID := s.AddMaterial(red)

	first := s.Spawn(IdentityTransform(), meshID, beigeID)
	second := s.Spawn(Translated(1, -1, 0.2), meshID, redID)

	return &Loaded{
		Meshes:    map[string]common.AssetID{"sphere": meshID},
		Materials: map[string]common.AssetID{"beige": beigeID, "red": redID},
		Entities:  []common.EntityID{first, second},
		Light:     &LightSpec{Direction: [3]float32{0, 1, 0.2}, Animate: true},
	}
}
