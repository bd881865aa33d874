package raw

import "strings"

// VertexAttribute is a bitmask naming the per-vertex attributes a model carries.
type VertexAttribute uint32

const (
	AttribPosition VertexAttribute = 1 << iota
	AttribNormal
	AttribTangent
	AttribBinormal
	AttribColor
	AttribUV0
	AttribUV1
	AttribJointIndices
	AttribJointWeights

	// AttribAuto asks the partitioner to pick attributes from each material's bound textures.
	AttribAuto VertexAttribute = 1 << 31

	// AttribAll keeps every attribute untouched.
	AttribAll VertexAttribute = ^VertexAttribute(0)
)

var attributeNames = []struct {
	attr VertexAttribute
	name string
}{
	{AttribPosition, "position"},
	{AttribNormal, "normal"},
	{AttribTangent, "tangent"},
	{AttribBinormal, "binormal"},
	{AttribColor, "color"},
	{AttribUV0, "uv0"},
	{AttribUV1, "uv1"},
	{AttribJointIndices, "joint_indices"},
	{AttribJointWeights, "joint_weights"},
	{AttribAuto, "auto"},
}

// Has reports whether every bit of attr is set.
func (a VertexAttribute) Has(attr VertexAttribute) bool {
	return a&attr == attr
}

// String returns the attribute names joined with '|'.
func (a VertexAttribute) String() string {
	if a == AttribAll {
		return "all"
	}
	var parts []string
	for _, n := range attributeNames {
		if a&n.attr != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// ParseVertexAttribute converts a single attribute name (as used in config files)
// into its bit. "all" yields AttribAll.
func ParseVertexAttribute(name string) (VertexAttribute, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "all" {
		return AttribAll, true
	}
	for _, n := range attributeNames {
		if n.name == name {
			return n.attr, true
		}
	}
	return 0, false
}
