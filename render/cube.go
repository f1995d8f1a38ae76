// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"math"
	"sort"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/drawsurface/internal/logx"
)

const (
	// Radians per second of automatic rotation.
	cubeSpinRate = math.Pi / 4

	// Coefficients for converting pointer drag distance to rotation.
	dragSensitivityX = 0.005
	dragSensitivityY = 0.005

	// Camera distance from the cube center, in cube half-extents.
	cameraDistance = 3.5
)

// Midnight blue, the clear color of the classic cube sample.
var cubeBackground = gg.RGB(0.098, 0.098, 0.439)

type vec3 [3]float64

func (a vec3) sub(b vec3) vec3 { return vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

func (a vec3) cross(b vec3) vec3 {
	return vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func (a vec3) dot(b vec3) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func (a vec3) normalize() vec3 {
	l := math.Sqrt(a.dot(a))
	if l == 0 {
		return a
	}
	return vec3{a[0] / l, a[1] / l, a[2] / l}
}

// Unit cube corners.
var cubeVertices = [8]vec3{
	{-1, -1, -1}, {-1, -1, 1}, {-1, 1, -1}, {-1, 1, 1},
	{1, -1, -1}, {1, -1, 1}, {1, 1, -1}, {1, 1, 1},
}

// Faces wound counter-clockwise when seen from outside.
var cubeFaces = [6]struct {
	idx   [4]int
	color gg.RGBA
}{
	{[4]int{0, 1, 3, 2}, gg.RGB(0.9, 0.2, 0.2)}, // -x
	{[4]int{4, 6, 7, 5}, gg.RGB(0.2, 0.8, 0.2)}, // +x
	{[4]int{0, 4, 5, 1}, gg.RGB(0.2, 0.3, 0.9)}, // -y
	{[4]int{2, 3, 7, 6}, gg.RGB(0.9, 0.9, 0.2)}, // +y
	{[4]int{0, 2, 6, 4}, gg.RGB(0.9, 0.5, 0.1)}, // -z
	{[4]int{1, 5, 7, 3}, gg.RGB(0.6, 0.2, 0.8)}, // +z
}

// Direction the light travels: into the screen and down.
var lightDir = vec3{0.4, -0.6, 1}.normalize()

// CubeRenderer draws a shaded cube spinning about its vertical axis.
// Dragging a pointer across the surface adds yaw and pitch.
type CubeRenderer struct {
	mu sync.Mutex

	dc          *gg.Context
	texture     *PixmapTexture
	initialized bool
	closed      bool

	boundsW, boundsH float32
	resW, resH       float32

	spin       float64
	yaw, pitch float64

	dragging bool
	dragID   int
	lastX    float64
	lastY    float64
}

var _ Renderer = (*CubeRenderer)(nil)
var _ PointerInput = (*CubeRenderer)(nil)

// NewCubeRenderer creates a cube renderer. Call Initialize before use.
func NewCubeRenderer() *CubeRenderer {
	return &CubeRenderer{}
}

// Initialize marks the renderer ready. The drawing context is created
// when the render resolution is known.
func (r *CubeRenderer) Initialize() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	r.initialized = true
	return nil
}

// UpdateForWindowSizeChange records the window bounds used to scale drags.
func (r *CubeRenderer) UpdateForWindowSizeChange(width, height float32) {
	r.mu.Lock()
	r.boundsW, r.boundsH = width, height
	r.mu.Unlock()
}

// UpdateForRenderResolutionChange resizes the drawing context.
func (r *CubeRenderer) UpdateForRenderResolutionChange(width, height float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.resW, r.resH = width, height
	w, h := pixelSize(width, height)
	if r.dc == nil {
		r.dc = gg.NewContext(w, h)
	} else if err := r.dc.Resize(w, h); err != nil {
		logx.Logger().Warn("render: cube resize failed", "width", w, "height", h, "err", err)
		return
	}
	r.texture = NewPixmapTexture(r.dc.ResizeTarget())
}

// Update advances the spin angle by the clamped delta.
func (r *CubeRenderer) Update(total, delta float64) {
	r.mu.Lock()
	r.spin = math.Mod(r.spin+clampDelta(delta)*cubeSpinRate, 2*math.Pi)
	r.mu.Unlock()
}

// Render draws the cube.
func (r *CubeRenderer) Render() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case r.closed:
		return ErrClosed
	case !r.initialized:
		return ErrNotInitialized
	case r.dc == nil:
		return ErrNoResolution
	}

	dc := r.dc
	dc.ClearWithColor(cubeBackground)

	w, h := float64(dc.Width()), float64(dc.Height())
	scale := math.Min(w, h) * 0.9
	cx, cy := w/2, h/2

	rot := rotation(r.spin+r.yaw, r.pitch)
	var world [8]vec3
	var screen [8][2]float64
	for i, v := range cubeVertices {
		p := rot(v)
		world[i] = p
		z := p[2] + cameraDistance
		screen[i] = [2]float64{cx + p[0]/z*scale, cy - p[1]/z*scale}
	}

	type visibleFace struct {
		face  int
		depth float64
		shade float64
	}
	faces := make([]visibleFace, 0, 3)
	for i, f := range cubeFaces {
		a, b, c := world[f.idx[0]], world[f.idx[1]], world[f.idx[2]]
		n := b.sub(a).cross(c.sub(a)).normalize()
		center := vec3{}
		for _, vi := range f.idx {
			for k := range 3 {
				center[k] += world[vi][k] / 4
			}
		}
		view := center.sub(vec3{0, 0, -cameraDistance})
		if n.dot(view) >= 0 {
			continue
		}
		faces = append(faces, visibleFace{
			face:  i,
			depth: center[2],
			shade: 0.35 + 0.65*math.Max(0, -n.dot(lightDir)),
		})
	}
	// Far faces first.
	sort.Slice(faces, func(i, j int) bool { return faces[i].depth > faces[j].depth })

	for _, vf := range faces {
		f := cubeFaces[vf.face]
		dc.SetRGB(f.color.R*vf.shade, f.color.G*vf.shade, f.color.B*vf.shade)
		for k, vi := range f.idx {
			if k == 0 {
				dc.MoveTo(screen[vi][0], screen[vi][1])
			} else {
				dc.LineTo(screen[vi][0], screen[vi][1])
			}
		}
		dc.ClosePath()
		if err := dc.Fill(); err != nil {
			return err
		}
	}
	return dc.FlushGPU()
}

// Texture returns the pixmap of the last frame, or nil before the render
// resolution is set.
func (r *CubeRenderer) Texture() Texture {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.texture == nil {
		return nil
	}
	return r.texture
}

// HandlePointer rotates the cube while the primary pointer is held down.
func (r *CubeRenderer) HandlePointer(ev gpucontext.PointerEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Type {
	case gpucontext.PointerDown:
		if r.dragging {
			return
		}
		r.dragging = true
		r.dragID = ev.PointerID
		r.lastX, r.lastY = ev.X, ev.Y
	case gpucontext.PointerMove:
		if !r.dragging || ev.PointerID != r.dragID {
			return
		}
		sx, sy := r.pointerScale()
		dx := (ev.X - r.lastX) * sx
		dy := (ev.Y - r.lastY) * sy
		r.lastX, r.lastY = ev.X, ev.Y
		r.yaw += dx * dragSensitivityX
		r.pitch = clampPitch(r.pitch + dy*dragSensitivityY)
	case gpucontext.PointerUp, gpucontext.PointerCancel:
		if ev.PointerID == r.dragID {
			r.dragging = false
		}
	}
}

// Angles returns the current spin, yaw and pitch in radians.
func (r *CubeRenderer) Angles() (spin, yaw, pitch float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.spin, r.yaw, r.pitch
}

// Close releases the drawing context. It is idempotent.
func (r *CubeRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.texture = nil
	if r.dc != nil {
		err := r.dc.Close()
		r.dc = nil
		return err
	}
	return nil
}

// pointerScale converts window points to render pixels.
func (r *CubeRenderer) pointerScale() (float64, float64) {
	sx, sy := 1.0, 1.0
	if r.boundsW > 0 && r.resW > 0 {
		sx = float64(r.resW / r.boundsW)
	}
	if r.boundsH > 0 && r.resH > 0 {
		sy = float64(r.resH / r.boundsH)
	}
	return sx, sy
}

func clampPitch(p float64) float64 {
	const limit = math.Pi / 2
	return math.Max(-limit, math.Min(limit, p))
}

// rotation returns a transform applying yaw about Y, then pitch about X.
func rotation(yaw, pitch float64) func(vec3) vec3 {
	sy, cy := math.Sincos(yaw)
	sp, cp := math.Sincos(pitch)
	return func(v vec3) vec3 {
		x := v[0]*cy + v[2]*sy
		z := -v[0]*sy + v[2]*cy
		y := v[1]*cp - z*sp
		z = v[1]*sp + z*cp
		return vec3{x, y, z}
	}
}
