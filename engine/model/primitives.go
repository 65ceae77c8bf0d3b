package model

import "cogentcore.org/core/math32"

// NewUVSphere builds a sphere centered on the origin from latitude stacks and longitude sectors.
// Seams are duplicated so every vertex has exactly one normal.
//
// Parameters:
//   - radius: the sphere radius
//   - sectors: the number of longitude subdivisions (minimum 3)
//   - stacks: the number of latitude subdivisions (minimum 2)
//
// Returns:
//   - *Mesh: the generated mesh with (stacks+1)*(sectors+1) vertices
func NewUVSphere(radius float32, sectors, stacks int) *Mesh {
	sectors = max(sectors, 3)
	stacks = max(stacks, 2)

	sectorStep := 2 * math32.Pi / float32(sectors)
	stackStep := math32.Pi / float32(stacks)
	invRadius := 1 / radius

	vertexCount := (stacks + 1) * (sectors + 1)
	m := &Mesh{
		Name:      "uv_sphere",
		Positions: make([][3]float32, 0, vertexCount),
		Normals:   make([][3]float32, 0, vertexCount),
		Indices:   make([]uint32, 0, stacks*sectors*6),
	}

	for i := 0; i <= stacks; i++ {
		stackAngle := math32.Pi/2 - float32(i)*stackStep
		xy := radius * math32.Cos(stackAngle)
		z := radius * math32.Sin(stackAngle)

		for j := 0; j <= sectors; j++ {
			sectorAngle := float32(j) * sectorStep
			x := xy * math32.Cos(sectorAngle)
			y := xy * math32.Sin(sectorAngle)
			m.Positions = append(m.Positions, [3]float32{x, y, z})
			m.Normals = append(m.Normals, [3]float32{x * invRadius, y * invRadius, z * invRadius})
		}
	}

	// The first and last stacks are fans, so they contribute one triangle per sector.
	for i := 0; i < stacks; i++ {
		k1 := uint32(i * (sectors + 1))
		k2 := k1 + uint32(sectors) + 1
		for j := 0; j < sectors; j++ {
			if i != 0 {
				m.Indices = append(m.Indices, k1, k2, k1+1)
			}
			if i != stacks-1 {
				m.Indices = append(m.Indices, k1+1, k2, k2+1)
			}
			k1++
			k2++
		}
	}

	return m
}

// NewCube builds an axis-aligned cube centered on the origin with flat per-face normals.
//
// Parameters:
//   - size: the edge length
//
// Returns:
//   - *Mesh: the generated mesh with 24 vertices and 36 indices
func NewCube(size float32) *Mesh {
	h := size / 2
	faces := []struct {
		normal  [3]float32
		corners [4][3]float32
	}{
		{[3]float32{0, 0, 1}, [4][3]float32{{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{h, -h, -h}, {-h, -h, -h}, {-h, h, -h}, {h, h, -h}}},
		{[3]float32{1, 0, 0}, [4][3]float32{{h, -h, h}, {h, -h, -h}, {h, h, -h}, {h, h, h}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-h, -h, -h}, {-h, -h, h}, {-h, h, h}, {-h, h, -h}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-h, h, h}, {h, h, h}, {h, h, -h}, {-h, h, -h}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-h, -h, -h}, {h, -h, -h}, {h, -h, h}, {-h, -h, h}}},
	}

	m := &Mesh{
		Name:      "cube",
		Positions: make([][3]float32, 0, 24),
		Normals:   make([][3]float32, 0, 24),
		Indices:   make([]uint32, 0, 36),
	}
	for _, f := range faces {
		base := uint32(len(m.Positions))
		for _, c := range f.corners {
			m.Positions = append(m.Positions, c)
			m.Normals = append(m.Normals, f.normal)
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}
