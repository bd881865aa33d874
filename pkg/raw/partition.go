package raw

import (
	"sort"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"
)

// MaxShortIndexVertices is the vertex count a sub-model may reach when its
// indices must fit in 16 bits.
const MaxShortIndexVertices = 0xFFFF

// CreateMaterialModels splits the model into one sub-model per material.
// Non-discrete surfaces sharing a material are merged; a discrete surface
// (every surface when forceDiscrete is set) always gets a sub-model of its
// own. With shortIndices no sub-model holds more than MaxShortIndexVertices
// vertices. Attributes outside keepAttribs are reset to zero in the emitted
// vertices; pass AttribAll to keep everything.
//
// Sub-model materials share their MatProps with this model and their texture
// slots index this model's texture table.
func (m *Model) CreateMaterialModels(shortIndices bool, keepAttribs VertexAttribute, forceDiscrete bool) []*Model {
	groupOf := func(t Triangle) int {
		if forceDiscrete || m.surfaces[t.SurfaceIndex].Discrete {
			return t.SurfaceIndex
		}
		return -1
	}

	var opaque, transparent []Triangle
	for _, t := range m.triangles {
		if !m.triangleInRange(t) {
			continue
		}
		if m.isTransparent(t) {
			transparent = append(transparent, t)
		} else {
			opaque = append(opaque, t)
		}
	}

	sortTriangles := func(tris []Triangle, descending bool) {
		sort.SliceStable(tris, func(i, j int) bool {
			a, b := tris[i], tris[j]
			if a.MaterialIndex != b.MaterialIndex {
				return a.MaterialIndex < b.MaterialIndex
			}
			if ga, gb := groupOf(a), groupOf(b); ga != gb {
				return ga < gb
			}
			if a.SurfaceIndex != b.SurfaceIndex {
				return a.SurfaceIndex < b.SurfaceIndex
			}
			if descending {
				return a.Verts[0] > b.Verts[0]
			}
			return a.Verts[0] < b.Verts[0]
		})
	}
	sortTriangles(opaque, false)
	// Transparent triangles go last, back to front.
	sortTriangles(transparent, true)
	sorted := append(opaque, transparent...)

	var models []*Model
	var sub *Model
	for i, t := range sorted {
		if i == 0 ||
			t.MaterialIndex != sorted[i-1].MaterialIndex ||
			groupOf(t) != groupOf(sorted[i-1]) ||
			(shortIndices && sub.VertexCount() > MaxShortIndexVertices-3) {
			sub = m.newSubModel()
			models = append(models, sub)
		}
		m.emitTriangle(sub, t, keepAttribs)
	}

	m.log.Debug("created material models",
		zap.Int("triangles", len(sorted)),
		zap.Int("models", len(models)),
		zap.Bool("shortIndices", shortIndices),
		zap.Stringer("keep", keepAttribs))
	return models
}

func (m *Model) newSubModel() *Model {
	sub := NewModel()
	sub.log = m.log
	sub.rootNodeID = m.rootNodeID
	return sub
}

func (m *Model) emitTriangle(sub *Model, t Triangle, keepAttribs VertexAttribute) {
	materialIndex := sub.AddMaterial(m.materials[t.MaterialIndex])

	surfaceIndex := sub.SurfaceByID(m.surfaces[t.SurfaceIndex].ID)
	if surfaceIndex < 0 {
		surfaceIndex = sub.AddSurface(deepCopy(m.log, m.surfaces[t.SurfaceIndex]))
		for _, jointID := range sub.surfaces[surfaceIndex].JointIDs {
			if ix := m.NodeByID(jointID); ix >= 0 {
				sub.AddNode(deepCopy(m.log, m.nodes[ix]))
			}
		}
		sub.surfaces[surfaceIndex].Bounds.Clear()
	}
	surface := &sub.surfaces[surfaceIndex]

	keep := effectiveKeep(keepAttribs, &sub.materials[materialIndex])
	if keep == AttribAll {
		sub.vertexAttributes = m.vertexAttributes
	} else {
		sub.vertexAttributes = m.vertexAttributes & keep
	}

	var verts [3]int
	for j, vi := range t.Verts {
		v := m.vertices[vi]
		if keep != AttribAll {
			v = v.Masked(keep)
		}
		verts[j] = sub.AddVertex(v)
		surface.Bounds.AddPoint(sub.vertices[verts[j]].Position)
	}
	sub.appendTriangle(Triangle{Verts: verts, MaterialIndex: materialIndex, SurfaceIndex: surfaceIndex})
}

// effectiveKeep expands the POSITION and AUTO bits of a keep mask.
func effectiveKeep(keep VertexAttribute, mat *Material) VertexAttribute {
	if keep == AttribAll {
		return keep
	}
	if keep&AttribPosition != 0 {
		keep |= AttribJointIndices | AttribJointWeights
	}
	if keep&AttribAuto != 0 {
		keep |= AttribPosition
		if mat.Textures[TextureUsageDiffuse] >= 0 {
			keep |= AttribUV0
		}
		if mat.Textures[TextureUsageNormal] >= 0 {
			keep |= AttribNormal | AttribTangent | AttribBinormal | AttribUV0
		}
		if mat.Textures[TextureUsageSpecular] >= 0 {
			keep |= AttribNormal | AttribUV0
		}
		if mat.Textures[TextureUsageEmissive] >= 0 {
			keep |= AttribUV1
		}
	}
	return keep
}

func (m *Model) triangleInRange(t Triangle) bool {
	for _, v := range t.Verts {
		if v < 0 || v >= len(m.vertices) {
			return false
		}
	}
	return t.MaterialIndex >= 0 && t.MaterialIndex < len(m.materials) &&
		t.SurfaceIndex >= 0 && t.SurfaceIndex < len(m.surfaces)
}

// isTransparent classifies a triangle by its diffuse texture, or by vertex
// alpha when the material has no diffuse texture.
func (m *Model) isTransparent(t Triangle) bool {
	texIx := m.materials[t.MaterialIndex].Textures[TextureUsageDiffuse]
	if texIx >= 0 && texIx < len(m.textures) {
		return m.textures[texIx].Occlusion == OcclusionTransparent
	}
	if m.vertexAttributes&AttribColor == 0 {
		return false
	}
	for _, v := range t.Verts {
		if m.vertices[v].Color.W < 1 {
			return true
		}
	}
	return false
}

// deepCopy returns a copy of src that shares no slices with it.
func deepCopy[T any](log *zap.Logger, src T) T {
	var dst T
	if err := copier.CopyWithOption(&dst, &src, copier.Option{DeepCopy: true}); err != nil {
		log.Warn("deep copy failed, sharing source value", zap.Error(err))
		return src
	}
	return dst
}
