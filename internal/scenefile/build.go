package scenefile

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/rawscene/pkg/diag"
	"github.com/Faultbox/rawscene/pkg/materials"
	"github.com/Faultbox/rawscene/pkg/math"
	"github.com/Faultbox/rawscene/pkg/raw"
)

// Options are the collaborators Build feeds the model through. Every field
// may be left nil.
type Options struct {
	Binder *materials.Binder
	Prober raw.ImageProber
	Diags  *diag.Collector
	Log    *zap.Logger
}

type builder struct {
	scene *Scene
	opts  Options
	model *raw.Model
	log   *zap.Logger

	materials map[uint64]*materials.Material
	nodes     map[uint64]*Node
	world     map[uint64]math.Mat4
	visiting  map[uint64]bool
}

// Build converts the scene into a new raw.Model. Malformed polygons are
// skipped and reported to opts.Diags; only a failed material binding aborts.
func (s *Scene) Build(opts Options) (*raw.Model, error) {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Binder == nil {
		opts.Binder = materials.NewBinder(materials.DefaultChain(), nil, nil, opts.Diags)
	}
	b := &builder{
		scene:     s,
		opts:      opts,
		model:     raw.NewModel(),
		log:       opts.Log,
		materials: make(map[uint64]*materials.Material, len(s.Materials)),
		nodes:     make(map[uint64]*Node, len(s.Nodes)),
		world:     make(map[uint64]math.Mat4, len(s.Nodes)),
		visiting:  make(map[uint64]bool),
	}
	b.model.SetLogger(opts.Log)
	if opts.Prober != nil {
		b.model.SetImageProber(opts.Prober)
	}
	for _, m := range s.Materials {
		b.materials[m.MaterialID] = m
	}
	for i := range s.Nodes {
		b.nodes[s.Nodes[i].ID] = &s.Nodes[i]
	}

	b.model.SetRootNode(s.Root)
	lights := b.addLights()
	b.addNodes(lights)
	for i := range s.Surfaces {
		if err := b.addSurface(&s.Surfaces[i]); err != nil {
			return nil, err
		}
	}
	b.addCameras()
	b.addAnimations()

	b.log.Debug("scene built",
		zap.Int("nodes", b.model.NodeCount()),
		zap.Int("surfaces", b.model.SurfaceCount()),
		zap.Int("vertices", b.model.VertexCount()),
		zap.Int("triangles", b.model.TriangleCount()),
		zap.Int("materials", b.model.MaterialCount()))
	return b.model, nil
}

func (b *builder) addLights() map[string]int {
	byName := make(map[string]int, len(b.scene.Lights))
	for _, l := range b.scene.Lights {
		light := raw.Light{
			Name:           l.Name,
			Color:          vec3(l.Color, math.Splat3(1)),
			Intensity:      l.Intensity,
			InnerConeAngle: l.InnerCone,
			OuterConeAngle: l.OuterCone,
		}
		switch strings.ToLower(l.Type) {
		case "point":
			light.Type = raw.LightPoint
		case "spot":
			light.Type = raw.LightSpot
		default:
			light.Type = raw.LightDirectional
		}
		byName[l.Name] = b.model.AddLight(light)
	}
	return byName
}

func (b *builder) addNodes(lights map[string]int) {
	children := make(map[uint64][]uint64)
	for _, n := range b.scene.Nodes {
		if n.Parent != 0 {
			children[n.Parent] = append(children[n.Parent], n.ID)
		}
	}
	surfaces := make(map[uint64]bool, len(b.scene.Surfaces))
	for _, s := range b.scene.Surfaces {
		surfaces[s.ID] = true
	}

	for _, n := range b.scene.Nodes {
		node := raw.NewNode(n.ID, n.Name, n.Parent)
		node.IsJoint = n.Joint
		node.ChildIDs = children[n.ID]
		node.Translation = vec3(n.Translation, math.Vec3{})
		node.Rotation = quat(n.Rotation)
		node.Scale = vec3(n.Scale, math.Splat3(1))
		node.UserProperties = n.UserProperties
		if n.Surface != 0 {
			if surfaces[n.Surface] {
				node.SurfaceID = n.Surface
			} else {
				b.log.Warn("node references unknown surface", zap.Uint64("node", n.ID), zap.Uint64("surface", n.Surface))
			}
		}
		if n.Light != "" {
			if ix, ok := lights[n.Light]; ok {
				node.LightIx = ix
			}
		}
		b.model.AddNode(node)
	}
}

// worldMatrix returns the node's transform relative to the scene root. A
// parent cycle is cut at the node that closes it.
func (b *builder) worldMatrix(id uint64) math.Mat4 {
	if m, ok := b.world[id]; ok {
		return m
	}
	ix := b.model.NodeByID(id)
	if ix < 0 {
		return math.Identity()
	}
	if b.visiting[id] {
		b.log.Warn("node hierarchy has a cycle", zap.Uint64("node", id))
		b.opts.Diags.Warn(diag.MalformedGeometry, b.model.Node(ix).Name, "parent cycle through node %d", id)
		return math.Identity()
	}
	b.visiting[id] = true
	defer delete(b.visiting, id)

	node := b.model.Node(ix)
	m := node.LocalMatrix()
	if node.ParentID != 0 {
		m = b.worldMatrix(node.ParentID).Mul(m)
	}
	b.world[id] = m
	return m
}

func (b *builder) addSurface(s *Surface) error {
	surface := raw.NewSurface(s.Name, s.ID)
	surface.Discrete = s.Discrete
	surface.SkeletonRootID = s.SkeletonRoot
	for _, c := range s.BlendChannels {
		surface.BlendChannels = append(surface.BlendChannels, raw.BlendChannel{
			Name:          c.Name,
			DefaultDeform: c.DefaultDeform,
			HasNormals:    len(c.Normals) > 0,
			HasTangents:   len(c.Tangents) > 0,
		})
	}
	for _, jointID := range s.Joints {
		surface.JointIDs = append(surface.JointIDs, jointID)
		surface.InverseBindMatrices = append(surface.InverseBindMatrices, b.worldMatrix(jointID).Inverse())
	}
	surface.JointGeometryMins, surface.JointGeometryMaxs = jointBounds(s, surface.InverseBindMatrices)
	surfaceIx := b.model.AddSurface(surface)

	b.model.AddVertexAttribute(s.Vertices.attributes())

	for pi, poly := range s.Polygons {
		if len(poly.Indices) < 3 {
			b.opts.Diags.Warn(diag.MalformedGeometry, s.Name, "polygon %d has %d corners", pi, len(poly.Indices))
			continue
		}
		var mat materials.NativeMaterial
		if m, ok := b.materials[poly.Material]; ok {
			mat = m
		} else if poly.Material != 0 {
			b.log.Debug("polygon references unknown material", zap.String("surface", s.Name), zap.Int("polygon", pi), zap.Uint64("material", poly.Material))
		}
		materialIx, err := b.opts.Binder.Bind(b.model, mat)
		if err != nil {
			return fmt.Errorf("surface %q polygon %d: %w", s.Name, pi, err)
		}

		corners := make([]int, len(poly.Indices))
		ok := true
		for ci, vi := range poly.Indices {
			v, err := s.vertex(vi, surfaceIx)
			if err != nil {
				b.opts.Diags.Warn(diag.MalformedGeometry, s.Name, "polygon %d: %v", pi, err)
				ok = false
				break
			}
			corners[ci] = b.model.AddVertex(v)
		}
		if !ok {
			continue
		}
		for i := 1; i+1 < len(corners); i++ {
			if _, err := b.model.AddTriangle(corners[0], corners[i], corners[i+1], materialIx, surfaceIx); err != nil {
				b.opts.Diags.Warn(diag.MalformedGeometry, s.Name, "polygon %d: %v", pi, err)
			}
		}
	}
	return nil
}

func (b *builder) addCameras() {
	for _, c := range b.scene.Cameras {
		if strings.EqualFold(c.Type, "orthographic") {
			b.model.AddCameraOrthographic(c.Name, c.Node, raw.OrthographicParams{
				MagX: c.MagX, MagY: c.MagY, NearZ: c.Near, FarZ: c.Far,
			})
			continue
		}
		b.model.AddCameraPerspective(c.Name, c.Node, raw.PerspectiveParams{
			AspectRatio: c.Aspect, FovDegreesX: c.FovX, FovDegreesY: c.FovY, NearZ: c.Near, FarZ: c.Far,
		})
	}
}

func (b *builder) addAnimations() {
	for _, a := range b.scene.Animations {
		anim := raw.Animation{Name: a.Name, Times: a.Times}
		for _, c := range a.Channels {
			ch := raw.Channel{NodeIndex: b.model.NodeByID(c.Node), Weights: c.Weights}
			if ch.NodeIndex < 0 {
				b.log.Warn("animation channel for unknown node", zap.String("animation", a.Name), zap.Uint64("node", c.Node))
				continue
			}
			for _, t := range c.Translations {
				ch.Translations = append(ch.Translations, vec3(t, math.Vec3{}))
			}
			for _, r := range c.Rotations {
				ch.Rotations = append(ch.Rotations, quat(r))
			}
			for _, s := range c.Scales {
				ch.Scales = append(ch.Scales, vec3(s, math.Splat3(1)))
			}
			anim.Channels = append(anim.Channels, ch)
		}
		b.model.AddAnimation(anim)
	}
}
