/*
NAME
  vbap.go

DESCRIPTION
  vbap.go implements VBAP object rendering for one sub-block: the
  pyramid-mesa unit-cube <-> spherical conversion, snap-to-speaker
  detection, extended-source generation from an aperture angle, and the
  3-speaker VBAP triangle gain solve via gonum's linear solver.

  The pyramid-mesa transform's matrices aren't reproduced here from any
  external reference; this package implements the textbook
  central-projection cube<->sphere mapping consistent with the
  transform's documented properties (flat "mesa" top face, dome-shaped
  corners), recorded as a design decision in DESIGN.md.

  The engine-per-worker, per-call solve shape keeps no shared mutable
  state: one lookup per call, matching a quantizer's "one lookup per
  sample" structure.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package render

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/immaudio/iab/element"
)

// ErrVBAPFailure is returned when no triangle in the configured
// triangulation admits a non-negative gain solution for a source
// direction.
var ErrVBAPFailure = errors.New("render: vbap solver could not place source")

// ErrConfigInvalid reports a structurally unusable renderer configuration.
var ErrConfigInvalid = errors.New("render: configuration invalid")

const vbapGainEpsilon = -1e-6 // tolerance for "non-negative" under FP error.

// extendedSourceCacheLimit bounds each Engine's extended-source gain
// cache; the cache is dropped wholesale once it grows past this.
const extendedSourceCacheLimit = 250

// cartesianToSpherical converts a listener-space cartesian vector (x
// right, y front, z up) to azimuth/elevation/radius, matching the
// convention used by CubeToSphere below so that physical-speaker
// positions and object positions compare directly.
func cartesianToSpherical(xyz [3]float64) (azimuth, elevation, radius float64) {
	x, y, z := xyz[0], xyz[1], xyz[2]
	radius = math.Sqrt(x*x + y*y + z*z)
	if radius == 0 {
		return 0, 0, 0
	}
	azimuth = math.Atan2(x, y)
	elevation = math.Atan2(z, math.Hypot(x, y))
	return azimuth, elevation, radius
}

func sphericalToUnitVector(azimuth, elevation float64) [3]float64 {
	ce := math.Cos(elevation)
	return [3]float64{
		math.Sin(azimuth) * ce,
		math.Cos(azimuth) * ce,
		math.Sin(elevation),
	}
}

func maxAbs3(a, b, c float64) float64 {
	m := math.Abs(a)
	if v := math.Abs(b); v > m {
		m = v
	}
	if v := math.Abs(c); v > m {
		m = v
	}
	return m
}

// CubeToSphere implements the pyramid-mesa forward transform: a unit-cube authoring position is centred, projected
// outward by its L-infinity norm onto the surrounding cube's surface
// (the "pyramid" radial projection), and that surface point's direction
// is read off as azimuth/elevation. Flat faces of the cube become the
// dome's flattened "mesa" regions; corners reach full elevation only at
// the exact corner direction. The cube centre is the degenerate case:
// defined reports false there, since the zero vector has no direction
// (PanGains renders it diffusely rather than panning it).
func CubeToSphere(p element.Position) (azimuth, elevation float64, defined bool) {
	cx, cy, cz := 2*p.X-1, 2*p.Y-1, 2*p.Z-1
	m := maxAbs3(cx, cy, cz)
	if m == 0 {
		return 0, 0, false
	}
	nx, ny, nz := cx/m, cy/m, cz/m
	azimuth = math.Atan2(nx, ny)
	elevation = math.Atan2(nz, math.Hypot(nx, ny))
	return azimuth, elevation, true
}

// SphereToCube implements the pyramid-mesa inverse transform used by
// snap detection: a direction is projected onto the cube's
// surface (every physical speaker is assumed wall/ceiling/floor-mounted,
// i.e. already on that surface) and read back as a unit-cube position.
func SphereToCube(azimuth, elevation float64) element.Position {
	d := sphericalToUnitVector(azimuth, elevation)
	m := maxAbs3(d[0], d[1], d[2])
	if m == 0 {
		return element.Position{X: 0.5, Y: 0.5, Z: 0.5}
	}
	cx, cy, cz := d[0]/m, d[1]/m, d[2]/m
	return element.Position{X: (cx + 1) / 2, Y: (cy + 1) / 2, Z: (cz + 1) / 2}
}

// Engine holds the per-worker VBAP solving context: the loudspeaker
// triangulation, the unit direction vectors derived from the
// configuration's physical speakers, and the extended-source gain cache.
// An Engine is worker-local and its cache is lock-free; it must not be
// shared between concurrently rendering goroutines.
type Engine struct {
	cfg        *Config
	unitVector [][3]float64 // one per physical speaker, cfg.PhysicalSpeakers index-aligned.
	cache      map[sourceKey][]float64
}

// sourceKey quantizes a (position, aperture) pair for cache lookup. The
// position codes are already 16-bit on the wire, so keying on the raw
// quantized axes loses nothing.
type sourceKey struct {
	x, y, z  uint16
	aperture uint16
}

// NewEngine builds an Engine bound to cfg. One Engine per worker goroutine.
func NewEngine(cfg *Config) *Engine {
	e := &Engine{
		cfg:        cfg,
		unitVector: make([][3]float64, len(cfg.PhysicalSpeakers)),
		cache:      make(map[sourceKey][]float64),
	}
	for i, s := range cfg.PhysicalSpeakers {
		_, _, radius := cartesianToSpherical(s.VBAPXYZ)
		if radius == 0 {
			continue
		}
		e.unitVector[i] = [3]float64{s.VBAPXYZ[0] / radius, s.VBAPXYZ[1] / radius, s.VBAPXYZ[2] / radius}
	}
	return e
}

// FindSnapSpeaker scans speakers for one whose pyramid-mesa unit-cube
// position is within the object's L-infinity tolerance of pos; ties
// broken by smallest L2 distance. The returned index is into
// cfg.PhysicalSpeakers, same as a PanGains gain-vector index.
func (e *Engine) FindSnapSpeaker(pos element.Position, tolerance float64) (speakerIndex int, ok bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, s := range e.cfg.PhysicalSpeakers {
		az, el, radius := cartesianToSpherical(s.VBAPXYZ)
		if radius == 0 {
			continue
		}
		speakerCube := SphereToCube(az, el)
		if !withinLInf(pos, speakerCube, tolerance) {
			continue
		}
		d := l2Distance(pos, speakerCube)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

func withinLInf(a, b element.Position, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

func l2Distance(a, b element.Position) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// PanGains computes the per-physical-speaker gain vector for an object at
// pos with the given aperture (spread) angle: one or more extended
// sources are generated around (azimuth, elevation), solved against the
// triangulation, each normalised to unit energy, and summed. The cube
// centre has no defined direction, so it is not panned through a single
// triangle: unit energy is spread equally over the ear-level speakers
// instead (centreGains). Solutions are memoised per quantized
// (position, aperture); the cache is dropped once it exceeds
// extendedSourceCacheLimit entries.
func (e *Engine) PanGains(pos element.Position, aperture float64) ([]float64, error) {
	qx, qy, qz := element.QuantizePosition(pos)
	key := sourceKey{x: qx, y: qy, z: qz, aperture: element.QuantizePosAxis(aperture / math.Pi)}
	if cached, ok := e.cache[key]; ok {
		return append([]float64(nil), cached...), nil
	}

	az, el, defined := CubeToSphere(pos)
	if !defined {
		return e.centreGains()
	}
	sources := extendedSourceDirections(az, el, aperture)

	out := make([]float64, len(e.cfg.PhysicalSpeakers))
	placed := 0
	for _, src := range sources {
		g, err := e.solveTriangle(src)
		if err != nil {
			continue
		}
		placed++
		for i, v := range g {
			out[i] += v
		}
	}
	if placed == 0 {
		return nil, ErrVBAPFailure
	}
	if len(e.cache) > extendedSourceCacheLimit {
		e.cache = make(map[sourceKey][]float64)
	}
	e.cache[key] = append([]float64(nil), out...)
	return out, nil
}

// centreGains renders the directionless cube-centre source: unit energy
// spread equally across every ear-level physical speaker (the middle
// elevation band of the zone grid, read off each speaker's pyramid-mesa
// cube position), with height and floor speakers left at zero.
func (e *Engine) centreGains() ([]float64, error) {
	out := make([]float64, len(e.cfg.PhysicalSpeakers))
	var earLevel []int
	for i, s := range e.cfg.PhysicalSpeakers {
		az, el, radius := cartesianToSpherical(s.VBAPXYZ)
		if radius == 0 {
			continue
		}
		if gridCell(SphereToCube(az, el).Z) == 1 {
			earLevel = append(earLevel, i)
		}
	}
	if len(earLevel) == 0 {
		return nil, ErrVBAPFailure
	}
	g := 1.0 / math.Sqrt(float64(len(earLevel)))
	for _, i := range earLevel {
		out[i] = g
	}
	return out, nil
}

// extendedSourceDirections converts a 1D spread aperture angle (a 3D
// spread averages into a 1D value before reaching here) into source
// generation: a single centre source when aperture is (near) zero, else
// a centre source plus four sources offset by aperture along each
// cardinal azimuth/elevation direction (MDAP-style cross pattern).
func extendedSourceDirections(azimuth, elevation, aperture float64) [][2]float64 {
	if aperture <= 1e-6 {
		return [][2]float64{{azimuth, elevation}}
	}
	return [][2]float64{
		{azimuth, elevation},
		{azimuth + aperture, elevation},
		{azimuth - aperture, elevation},
		{azimuth, elevation + aperture},
		{azimuth, elevation - aperture},
	}
}

// solveTriangle finds the first triangulation facet admitting a
// non-negative gain solution for direction (azimuth, elevation) and
// returns that solution normalised to unit energy.
func (e *Engine) solveTriangle(direction [2]float64) ([]float64, error) {
	p := sphericalToUnitVector(direction[0], direction[1])
	b := mat.NewDense(3, 1, []float64{p[0], p[1], p[2]})

	for _, tri := range e.cfg.Triangulation {
		if tri[0] < 0 || tri[0] >= len(e.unitVector) ||
			tri[1] < 0 || tri[1] >= len(e.unitVector) ||
			tri[2] < 0 || tri[2] >= len(e.unitVector) {
			continue
		}
		l1, l2, l3 := e.unitVector[tri[0]], e.unitVector[tri[1]], e.unitVector[tri[2]]
		a := mat.NewDense(3, 3, []float64{
			l1[0], l2[0], l3[0],
			l1[1], l2[1], l3[1],
			l1[2], l2[2], l3[2],
		})
		var g mat.Dense
		if err := g.Solve(a, b); err != nil {
			continue
		}
		g0, g1, g2 := g.At(0, 0), g.At(1, 0), g.At(2, 0)
		if g0 < vbapGainEpsilon || g1 < vbapGainEpsilon || g2 < vbapGainEpsilon {
			continue
		}
		if g0 < 0 {
			g0 = 0
		}
		if g1 < 0 {
			g1 = 0
		}
		if g2 < 0 {
			g2 = 0
		}
		energy := math.Sqrt(g0*g0 + g1*g1 + g2*g2)
		if energy == 0 {
			continue
		}
		out := make([]float64, len(e.unitVector))
		out[tri[0]] = g0 / energy
		out[tri[1]] = g1 / energy
		out[tri[2]] = g2 / energy
		return out, nil
	}
	return nil, ErrVBAPFailure
}

// ApplyZoneMask multiplies the gain vector by a
// 9-zone mask, one zone per speaker as determined by its unit-cube
// octant grid cell. Each 2-bit code (0..3) scales linearly to
// {0, 1/3, 2/3, 1}.
func (e *Engine) ApplyZoneMask(gains []float64, zones element.ZoneGains9) {
	if !zones.Enabled {
		return
	}
	for i, s := range e.cfg.PhysicalSpeakers {
		if i >= len(gains) {
			continue
		}
		az, el, radius := cartesianToSpherical(s.VBAPXYZ)
		if radius == 0 {
			continue
		}
		cube := SphereToCube(az, el)
		zone := zoneIndex(cube)
		gains[i] *= float64(zones.Gains[zone]) / 3.0
	}
}

// zoneIndex maps a unit-cube position onto one of the nine zones: a 3x3
// grid over (left/centre/right) x (back/mid/front).
func zoneIndex(p element.Position) int {
	col := gridCell(p.X)
	row := gridCell(p.Y)
	return row*3 + col
}

func gridCell(v float64) int {
	switch {
	case v < 1.0/3.0:
		return 0
	case v < 2.0/3.0:
		return 1
	default:
		return 2
	}
}
