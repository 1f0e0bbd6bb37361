package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MaxVisibleSectorRadius bounds the sector cube scanned by VisibleSectors.
const MaxVisibleSectorRadius = 16

// Sector indices at or beyond these bounds do not fit an int64.
const (
	minSectorIndex = -(1 << 63)
	maxSectorIndex = 1 << 63
)

var axisNames = [3]string{"x", "y", "z"}

// Sector is the integer address of a cube of space.
type Sector struct {
	X, Y, Z int64
}

func (s Sector) Add(o Sector) Sector {
	return Sector{s.X + o.X, s.Y + o.Y, s.Z + o.Z}
}

func (s Sector) Sub(o Sector) Sector {
	return Sector{s.X - o.X, s.Y - o.Y, s.Z - o.Z}
}

// Adjacent reports whether o touches s by a face, edge or corner.
func (s Sector) Adjacent(o Sector) bool {
	if s == o {
		return false
	}
	d := s.Sub(o)
	return abs64(d.X) <= 1 && abs64(d.Y) <= 1 && abs64(d.Z) <= 1
}

// DistanceTo is measured in sectors.
func (s Sector) DistanceTo(o Sector) float64 {
	d := s.Sub(o)
	return math.Sqrt(float64(d.X)*float64(d.X) + float64(d.Y)*float64(d.Y) + float64(d.Z)*float64(d.Z))
}

// SectorPosition is a sector address plus an offset from the sector's lower
// corner. A normalized offset lies in [0, size) on every axis.
type SectorPosition struct {
	Sector Sector
	Offset mgl64.Vec3
}

func (p SectorPosition) SameSector(o SectorPosition) bool {
	return p.Sector == o.Sector
}

// SectorMapper converts between absolute positions and sector positions for
// one sector size.
type SectorMapper struct {
	size float64
}

func NewSectorMapper(size float64) (SectorMapper, error) {
	if err := validatePositive("sector size", size); err != nil {
		return SectorMapper{}, err
	}
	return SectorMapper{size: size}, nil
}

func (m SectorMapper) Size() float64 {
	return m.size
}

// ToSector splits pos into a sector and offset using floor semantics: a
// coordinate exactly on a boundary belongs to the sector starting there.
func (m SectorMapper) ToSector(pos mgl64.Vec3) (SectorPosition, error) {
	var sp SectorPosition
	var index [3]int64
	for axis, v := range pos {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return SectorPosition{}, SectorRangeError{Axis: axisNames[axis], Value: v}
		}
		q, off, ok := m.split(v, 0)
		if !ok {
			return SectorPosition{}, SectorRangeError{Axis: axisNames[axis], Value: v}
		}
		index[axis] = q
		sp.Offset[axis] = off
	}
	sp.Sector = Sector{index[0], index[1], index[2]}
	return sp, nil
}

// ToWorld recombines a sector position into an absolute position.
func (m SectorMapper) ToWorld(sp SectorPosition) mgl64.Vec3 {
	return mgl64.Vec3{
		float64(sp.Sector.X)*m.size + sp.Offset[0],
		float64(sp.Sector.Y)*m.size + sp.Offset[1],
		float64(sp.Sector.Z)*m.size + sp.Offset[2],
	}
}

// Normalize carries any offset outside [0, size) into the sector address.
func (m SectorMapper) Normalize(sp SectorPosition) (SectorPosition, error) {
	base := [3]int64{sp.Sector.X, sp.Sector.Y, sp.Sector.Z}
	var out SectorPosition
	var index [3]int64
	for axis, off := range sp.Offset {
		if math.IsNaN(off) || math.IsInf(off, 0) {
			return SectorPosition{}, SectorRangeError{Axis: axisNames[axis], Value: off}
		}
		q, rest, ok := m.split(off, base[axis])
		if !ok {
			return SectorPosition{}, SectorRangeError{Axis: axisNames[axis], Value: off}
		}
		index[axis] = q
		out.Offset[axis] = rest
	}
	out.Sector = Sector{index[0], index[1], index[2]}
	return out, nil
}

func (m SectorMapper) Translate(sp SectorPosition, delta mgl64.Vec3) (SectorPosition, error) {
	sp.Offset = sp.Offset.Add(delta)
	return m.Normalize(sp)
}

// Relative returns the vector from origin to sp. The sector difference is
// taken in integers before scaling, so nearby positions stay precise far from
// the world origin.
func (m SectorMapper) Relative(sp, origin SectorPosition) mgl64.Vec3 {
	d := sp.Sector.Sub(origin.Sector)
	return mgl64.Vec3{
		float64(d.X)*m.size + (sp.Offset[0] - origin.Offset[0]),
		float64(d.Y)*m.size + (sp.Offset[1] - origin.Offset[1]),
		float64(d.Z)*m.size + (sp.Offset[2] - origin.Offset[2]),
	}
}

func (m SectorMapper) Distance(a, b SectorPosition) float64 {
	return m.Relative(a, b).Len()
}

// VisibleSectors lists the sectors with any point within renderDistance of
// camera, in x, then y, then z order.
func (m SectorMapper) VisibleSectors(camera SectorPosition, renderDistance float64) ([]Sector, error) {
	if err := validatePositive("render distance", renderDistance); err != nil {
		return nil, err
	}
	radius := math.Ceil(renderDistance / m.size)
	if radius > MaxVisibleSectorRadius {
		return nil, ConfigurationError{
			Field:  "render distance",
			Value:  renderDistance,
			Reason: "spans too many sectors",
		}
	}
	r := int64(radius)
	var visible []Sector
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			for dz := -r; dz <= r; dz++ {
				d := [3]int64{dx, dy, dz}
				var gap mgl64.Vec3
				for axis := range gap {
					lo := float64(d[axis]) * m.size
					hi := lo + m.size
					o := camera.Offset[axis]
					gap[axis] = math.Max(0, math.Max(lo-o, o-hi))
				}
				if gap.Len() <= renderDistance {
					visible = append(visible, camera.Sector.Add(Sector{dx, dy, dz}))
				}
			}
		}
	}
	return visible, nil
}

// split returns base plus floor(v/size) and the remainder in [0, size).
func (m SectorMapper) split(v float64, base int64) (int64, float64, bool) {
	q := math.Floor(v / m.size)
	rest := v - q*m.size
	// Division rounding can leave the remainder just outside the sector.
	if rest < 0 {
		q--
		rest += m.size
		if rest >= m.size {
			rest = math.Nextafter(m.size, 0)
		}
	} else if rest >= m.size {
		q++
		rest -= m.size
	}
	total := q + float64(base)
	if q < minSectorIndex || q >= maxSectorIndex || total < minSectorIndex || total >= maxSectorIndex {
		return 0, 0, false
	}
	return base + int64(q), rest, true
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
