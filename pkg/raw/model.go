package raw

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"go.uber.org/zap"
)

// ImageInfo is what an ImageProber reports about a texture file.
type ImageInfo struct {
	Width       int
	Height      int
	Transparent bool
}

// ImageProber inspects texture files when they are first interned.
type ImageProber interface {
	Probe(path string) (ImageInfo, error)
}

type textureKey struct {
	usage TextureUsage
	name  string
}

// Model is the intermediate scene. It is not safe for concurrent use; callers
// serialize every Add, transform and Condense call.
type Model struct {
	rootNodeID       uint64
	vertexAttributes VertexAttribute

	index     vertexIndex
	vertices  []Vertex
	triangles []Triangle

	textureIndex map[textureKey]int
	textures     []Texture
	materials    []Material

	lights     []Light
	surfaces   []Surface
	animations []Animation
	cameras    []Camera
	nodes      []Node

	prober ImageProber
	log    *zap.Logger
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{
		index:        newVertexIndex(),
		textureIndex: make(map[textureKey]int),
		log:          zap.NewNop(),
	}
}

// SetLogger installs the logger used by transform passes. nil disables logging.
func (m *Model) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	m.log = log
}

// SetImageProber installs the prober AddTexture uses to fill in image properties.
func (m *Model) SetImageProber(p ImageProber) {
	m.prober = p
}

// SetRootNode records the id of the scene root.
func (m *Model) SetRootNode(id uint64) { m.rootNodeID = id }

// RootNode returns the id of the scene root.
func (m *Model) RootNode() uint64 { return m.rootNodeID }

// AddVertexAttribute marks attr as populated by the ingestion driver.
func (m *Model) AddVertexAttribute(attr VertexAttribute) {
	m.vertexAttributes |= attr
}

// VertexAttributes returns the populated attribute mask.
func (m *Model) VertexAttributes() VertexAttribute { return m.vertexAttributes }

// AddVertex returns the index of a structurally identical vertex when one is
// stored already; otherwise it appends v and returns the new index.
func (m *Model) AddVertex(v Vertex) int {
	ix, key := m.index.find(m.vertices, &v)
	if ix >= 0 {
		return ix
	}
	ix = len(m.vertices)
	m.vertices = append(m.vertices, v.clone())
	m.index.insert(key, ix)
	return ix
}

// AddTriangle appends a triangle after checking every index against the
// current tables. A rejected triangle leaves the model untouched.
func (m *Model) AddTriangle(v0, v1, v2, materialIndex, surfaceIndex int) (int, error) {
	for i, v := range [3]int{v0, v1, v2} {
		if v < 0 || v >= len(m.vertices) {
			return -1, fmt.Errorf("vertex %d (%d of %d): %w", i, v, len(m.vertices), ErrIndexOutOfRange)
		}
	}
	if materialIndex < 0 || materialIndex >= len(m.materials) {
		return -1, fmt.Errorf("material %d of %d: %w", materialIndex, len(m.materials), ErrIndexOutOfRange)
	}
	if surfaceIndex < 0 || surfaceIndex >= len(m.surfaces) {
		return -1, fmt.Errorf("surface %d of %d: %w", surfaceIndex, len(m.surfaces), ErrIndexOutOfRange)
	}
	return m.appendTriangle(Triangle{Verts: [3]int{v0, v1, v2}, MaterialIndex: materialIndex, SurfaceIndex: surfaceIndex}), nil
}

func (m *Model) appendTriangle(t Triangle) int {
	m.triangles = append(m.triangles, t)
	return len(m.triangles) - 1
}

// AddTexture interns a texture by usage and case-folded name. An empty name
// yields -1. New textures are probed through the installed ImageProber.
func (m *Model) AddTexture(name, fileName, fileLocation string, usage TextureUsage) int {
	if name == "" {
		return -1
	}
	if ix, ok := m.textureIndex[textureKey{usage, strings.ToLower(name)}]; ok {
		return ix
	}

	tex := Texture{
		Name:         name,
		Usage:        usage,
		FileName:     fileName,
		FileLocation: fileLocation,
	}
	if m.prober != nil {
		path := fileLocation
		if path == "" {
			path = fileName
		}
		info, err := m.prober.Probe(path)
		if err != nil {
			m.log.Debug("texture probe failed", zap.String("texture", name), zap.String("path", path), zap.Error(err))
		} else {
			tex.Width, tex.Height = info.Width, info.Height
			tex.MipLevels = mipLevels(info.Width, info.Height)
			if info.Transparent {
				tex.Occlusion = OcclusionTransparent
			}
		}
	}
	return m.internTexture(tex)
}

func (m *Model) internTexture(tex Texture) int {
	key := textureKey{tex.Usage, strings.ToLower(tex.Name)}
	if ix, ok := m.textureIndex[key]; ok {
		return ix
	}
	m.textures = append(m.textures, tex)
	m.textureIndex[key] = len(m.textures) - 1
	return len(m.textures) - 1
}

func mipLevels(width, height int) int {
	size := max(width, height)
	if size <= 0 {
		return 0
	}
	return int(math32.Ceil(math32.Log2(float32(size))))
}

// AddMaterial returns the index of an equal material (same name, canonical
// properties, texture slots and user properties) or appends mat.
func (m *Model) AddMaterial(mat Material) int {
	for i := range m.materials {
		if m.materials[i].equal(&mat) {
			return i
		}
	}
	m.materials = append(m.materials, mat)
	return len(m.materials) - 1
}

// AddMaterialProps is AddMaterial with the fields spelled out.
func (m *Model) AddMaterialProps(id uint64, name string, textures TextureSlots, info MatProps, userProperties []string) int {
	return m.AddMaterial(Material{ID: id, Name: name, Info: info, Textures: textures, UserProperties: userProperties})
}

// AddLight returns the index of an identical light or appends l.
func (m *Model) AddLight(l Light) int {
	for i := range m.lights {
		if m.lights[i] == l {
			return i
		}
	}
	m.lights = append(m.lights, l)
	return len(m.lights) - 1
}

// AddSurface returns the index of the surface with the same id or appends s.
func (m *Model) AddSurface(s Surface) int {
	if ix := m.SurfaceByID(s.ID); ix >= 0 {
		return ix
	}
	m.surfaces = append(m.surfaces, s)
	return len(m.surfaces) - 1
}

// AddAnimation appends an animation.
func (m *Model) AddAnimation(a Animation) int {
	m.animations = append(m.animations, a)
	return len(m.animations) - 1
}

// AddCamera appends a camera.
func (m *Model) AddCamera(c Camera) int {
	m.cameras = append(m.cameras, c)
	return len(m.cameras) - 1
}

// AddCameraPerspective appends a perspective camera.
func (m *Model) AddCameraPerspective(name string, nodeID uint64, p PerspectiveParams) int {
	return m.AddCamera(Camera{Name: name, NodeID: nodeID, Mode: CameraPerspective, Perspective: p})
}

// AddCameraOrthographic appends an orthographic camera.
func (m *Model) AddCameraOrthographic(name string, nodeID uint64, o OrthographicParams) int {
	return m.AddCamera(Camera{Name: name, NodeID: nodeID, Mode: CameraOrthographic, Orthographic: o})
}

// AddNode returns the index of the node with the same id or appends n.
func (m *Model) AddNode(n Node) int {
	if ix := m.NodeByID(n.ID); ix >= 0 {
		return ix
	}
	m.nodes = append(m.nodes, n)
	return len(m.nodes) - 1
}

// SurfaceByID returns the index of the surface with the given id, or -1.
func (m *Model) SurfaceByID(id uint64) int {
	for i := range m.surfaces {
		if m.surfaces[i].ID == id {
			return i
		}
	}
	return -1
}

// NodeByID returns the index of the node with the given id, or -1.
func (m *Model) NodeByID(id uint64) int {
	for i := range m.nodes {
		if m.nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// Read-only indexed access. Values are returned by copy except surfaces and
// nodes, which external passes edit in place. Vertex copies its blend deltas
// too, so a caller cannot change a stored vertex.

func (m *Model) VertexCount() int          { return len(m.vertices) }
func (m *Model) Vertex(i int) Vertex       { return m.vertices[i].clone() }
func (m *Model) TriangleCount() int        { return len(m.triangles) }
func (m *Model) Triangle(i int) Triangle   { return m.triangles[i] }
func (m *Model) TextureCount() int         { return len(m.textures) }
func (m *Model) Texture(i int) Texture     { return m.textures[i] }
func (m *Model) MaterialCount() int        { return len(m.materials) }
func (m *Model) Material(i int) Material   { return m.materials[i] }
func (m *Model) LightCount() int           { return len(m.lights) }
func (m *Model) Light(i int) Light         { return m.lights[i] }
func (m *Model) SurfaceCount() int         { return len(m.surfaces) }
func (m *Model) Surface(i int) *Surface    { return &m.surfaces[i] }
func (m *Model) AnimationCount() int       { return len(m.animations) }
func (m *Model) Animation(i int) Animation { return m.animations[i] }
func (m *Model) CameraCount() int          { return len(m.cameras) }
func (m *Model) Camera(i int) Camera       { return m.cameras[i] }
func (m *Model) NodeCount() int            { return len(m.nodes) }
func (m *Model) Node(i int) *Node          { return &m.nodes[i] }

// AttributeArray extracts one attribute of every vertex into a parallel slice,
// ready for flat buffer construction.
func AttributeArray[T any](m *Model, attr func(v *Vertex) T) []T {
	out := make([]T, len(m.vertices))
	for i := range m.vertices {
		out[i] = attr(&m.vertices[i])
	}
	return out
}
