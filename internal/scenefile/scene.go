// Package scenefile reads YAML scene descriptions. It is a small ingestion
// driver: it walks the node hierarchy, resolves materials through a
// materials.Binder and feeds vertices and polygons into a raw.Model.
package scenefile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/rawscene/pkg/materials"
)

var (
	ErrDuplicateID   = errors.New("duplicate id")
	ErrUnknownParent = errors.New("unknown parent node")
	ErrCycle         = errors.New("node hierarchy has a cycle")
)

// Scene is the decoded document.
type Scene struct {
	Root       uint64                `yaml:"root"`
	Materials  []*materials.Material `yaml:"materials"`
	Nodes      []Node                `yaml:"nodes"`
	Surfaces   []Surface             `yaml:"surfaces"`
	Lights     []Light               `yaml:"lights"`
	Cameras    []Camera              `yaml:"cameras"`
	Animations []Animation           `yaml:"animations"`
}

// Node is one element of the hierarchy.
type Node struct {
	ID             uint64    `yaml:"id"`
	Name           string    `yaml:"name"`
	Parent         uint64    `yaml:"parent"`
	Joint          bool      `yaml:"joint"`
	Translation    []float32 `yaml:"translation"`
	Rotation       []float32 `yaml:"rotation"` // quaternion x, y, z, w
	Scale          []float32 `yaml:"scale"`
	Surface        uint64    `yaml:"surface"`
	Light          string    `yaml:"light"`
	UserProperties []string  `yaml:"user_properties"`
}

// Surface is a mesh with its vertex arrays and polygons.
type Surface struct {
	ID            uint64         `yaml:"id"`
	Name          string         `yaml:"name"`
	Discrete      bool           `yaml:"discrete"`
	SkeletonRoot  uint64         `yaml:"skeleton_root"`
	Joints        []uint64       `yaml:"joints"`
	BlendChannels []BlendChannel `yaml:"blend_channels"`
	Vertices      Vertices       `yaml:"vertices"`
	Polygons      []Polygon      `yaml:"polygons"`
}

// BlendChannel is a blend shape target with per-vertex deltas.
type BlendChannel struct {
	Name          string      `yaml:"name"`
	DefaultDeform float32     `yaml:"default_deform"`
	Positions     [][]float32 `yaml:"positions"`
	Normals       [][]float32 `yaml:"normals"`
	Tangents      [][]float32 `yaml:"tangents"`
}

// Vertices holds parallel attribute arrays indexed by polygon corners.
type Vertices struct {
	Positions    [][]float32 `yaml:"positions"`
	Normals      [][]float32 `yaml:"normals"`
	Tangents     [][]float32 `yaml:"tangents"`
	Binormals    [][]float32 `yaml:"binormals"`
	Colors       [][]float32 `yaml:"colors"`
	UV0          [][]float32 `yaml:"uv0"`
	UV1          [][]float32 `yaml:"uv1"`
	JointIndices [][]int32   `yaml:"joint_indices"`
	JointWeights [][]float32 `yaml:"joint_weights"`
}

// Polygon is a convex polygon, fan-triangulated on load.
type Polygon struct {
	Material uint64 `yaml:"material"` // 0 binds the default material
	Indices  []int  `yaml:"indices"`
}

// Light is a punctual light referenced by name from nodes.
type Light struct {
	Name      string    `yaml:"name"`
	Type      string    `yaml:"type"` // directional, point, spot
	Color     []float32 `yaml:"color"`
	Intensity float32   `yaml:"intensity"`
	InnerCone float32   `yaml:"inner_cone"`
	OuterCone float32   `yaml:"outer_cone"`
}

// Camera is attached to a node.
type Camera struct {
	Name   string  `yaml:"name"`
	Node   uint64  `yaml:"node"`
	Type   string  `yaml:"type"` // perspective, orthographic
	Aspect float32 `yaml:"aspect"`
	FovX   float32 `yaml:"fov_x"`
	FovY   float32 `yaml:"fov_y"`
	MagX   float32 `yaml:"mag_x"`
	MagY   float32 `yaml:"mag_y"`
	Near   float32 `yaml:"near"`
	Far    float32 `yaml:"far"`
}

// Animation is a set of node channels sampled at shared times.
type Animation struct {
	Name     string    `yaml:"name"`
	Times    []float32 `yaml:"times"`
	Channels []Channel `yaml:"channels"`
}

// Channel holds the keys of one node.
type Channel struct {
	Node         uint64      `yaml:"node"`
	Translations [][]float32 `yaml:"translations"`
	Rotations    [][]float32 `yaml:"rotations"`
	Scales       [][]float32 `yaml:"scales"`
	Weights      []float32   `yaml:"weights"`
}

// Decode reads a scene document and checks its id references.
func Decode(r io.Reader) (*Scene, error) {
	var s Scene
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	if err := s.check(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile reads a scene document from path.
func LoadFile(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

func (s *Scene) check() error {
	nodes := make(map[uint64]*Node, len(s.Nodes))
	for i := range s.Nodes {
		n := &s.Nodes[i]
		if _, dup := nodes[n.ID]; dup {
			return fmt.Errorf("node %d: %w", n.ID, ErrDuplicateID)
		}
		nodes[n.ID] = n
	}
	for _, n := range s.Nodes {
		if n.Parent != 0 {
			if _, ok := nodes[n.Parent]; !ok {
				return fmt.Errorf("node %d parent %d: %w", n.ID, n.Parent, ErrUnknownParent)
			}
		}
		// Walk up; a chain longer than the node count must loop.
		steps, id := 0, n.Parent
		for id != 0 {
			if steps++; steps > len(nodes) {
				return fmt.Errorf("node %d: %w", n.ID, ErrCycle)
			}
			p, ok := nodes[id]
			if !ok {
				break
			}
			id = p.Parent
		}
	}

	surfaces := make(map[uint64]bool, len(s.Surfaces))
	for _, sf := range s.Surfaces {
		if surfaces[sf.ID] {
			return fmt.Errorf("surface %d: %w", sf.ID, ErrDuplicateID)
		}
		surfaces[sf.ID] = true
	}
	materialIDs := make(map[uint64]bool, len(s.Materials))
	for i, m := range s.Materials {
		if m == nil {
			return fmt.Errorf("material %d: empty entry", i)
		}
		if materialIDs[m.MaterialID] {
			return fmt.Errorf("material %d: %w", m.MaterialID, ErrDuplicateID)
		}
		materialIDs[m.MaterialID] = true
	}
	return nil
}
