package raw

import "go.uber.org/zap"

// Condense drops every vertex, material, texture and surface no triangle can
// reach and renumbers the survivors into contiguous ranges. Survivors keep
// their relative order and are re-interned, so entries that became identical
// through in-place transforms collapse. All tables are rebuilt aside and
// swapped in at the end.
func (m *Model) Condense() {
	next := NewModel()

	// Surfaces reachable from triangles.
	usedSurfaces := make([]bool, len(m.surfaces))
	usedMaterials := make([]bool, len(m.materials))
	usedVertices := make([]bool, len(m.vertices))
	var triangles []Triangle
	dropped := 0
	for _, t := range m.triangles {
		if !m.triangleInRange(t) {
			dropped++
			continue
		}
		triangles = append(triangles, t)
		usedSurfaces[t.SurfaceIndex] = true
		usedMaterials[t.MaterialIndex] = true
		for _, v := range t.Verts {
			usedVertices[v] = true
		}
	}

	surfaceRemap := remapUsed(usedSurfaces, func(i int) int {
		return next.AddSurface(m.surfaces[i])
	})

	// Nodes keep their surface only if it survived.
	surviving := make(map[uint64]bool, len(next.surfaces))
	for i := range next.surfaces {
		surviving[next.surfaces[i].ID] = true
	}
	nodes := make([]Node, len(m.nodes))
	copy(nodes, m.nodes)
	for i := range nodes {
		if nodes[i].SurfaceID != 0 && !surviving[nodes[i].SurfaceID] {
			nodes[i].SurfaceID = 0
		}
	}

	// Textures reachable from surviving materials.
	usedTextures := make([]bool, len(m.textures))
	for i, used := range usedMaterials {
		if !used {
			continue
		}
		for _, tex := range m.materials[i].Textures {
			if tex >= 0 && tex < len(m.textures) {
				usedTextures[tex] = true
			}
		}
	}
	textureRemap := remapUsed(usedTextures, func(i int) int {
		return next.internTexture(m.textures[i])
	})

	materialRemap := remapUsed(usedMaterials, func(i int) int {
		mat := m.materials[i]
		for u, tex := range mat.Textures {
			if tex >= 0 && tex < len(m.textures) {
				mat.Textures[u] = textureRemap[tex]
			} else {
				mat.Textures[u] = -1
			}
		}
		return next.AddMaterial(mat)
	})

	vertexRemap := remapUsed(usedVertices, func(i int) int {
		v := m.vertices[i]
		if v.BlendSurfaceIx >= 0 {
			if v.BlendSurfaceIx < len(surfaceRemap) && surfaceRemap[v.BlendSurfaceIx] >= 0 {
				v.BlendSurfaceIx = surfaceRemap[v.BlendSurfaceIx]
			} else {
				v.BlendSurfaceIx, v.Blends = -1, nil
			}
		}
		return next.AddVertex(v)
	})

	for i := range triangles {
		t := &triangles[i]
		for j, v := range t.Verts {
			t.Verts[j] = vertexRemap[v]
		}
		t.MaterialIndex = materialRemap[t.MaterialIndex]
		t.SurfaceIndex = surfaceRemap[t.SurfaceIndex]
	}

	if dropped > 0 {
		m.log.Warn("condense dropped malformed triangles", zap.Int("count", dropped))
	}
	m.log.Debug("condensed model",
		zap.Int("vertices", len(next.vertices)),
		zap.Int("materials", len(next.materials)),
		zap.Int("textures", len(next.textures)),
		zap.Int("surfaces", len(next.surfaces)))

	m.index = next.index
	m.vertices = next.vertices
	m.triangles = triangles
	m.textureIndex = next.textureIndex
	m.textures = next.textures
	m.materials = next.materials
	m.surfaces = next.surfaces
	m.nodes = nodes
}

// remapUsed visits used entries in ascending order and records the new index
// intern returns for each; unused entries map to -1.
func remapUsed(used []bool, intern func(i int) int) []int {
	remap := make([]int, len(used))
	for i, ok := range used {
		if ok {
			remap[i] = intern(i)
		} else {
			remap[i] = -1
		}
	}
	return remap
}
