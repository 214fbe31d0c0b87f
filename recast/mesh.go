package recast

import "github.com/gorustyt/navcontour/common"

const (
	/// An value which indicates an invalid index within a mesh.
	RC_MESH_NULL_IDX = 0xffff
)

// / Represents a simple, non-overlapping contour in field space.
type Contour struct {
	Verts   []int ///< Simplified contour vertex and connection data. [Size: 4 * #NVerts]
	NVerts  int   ///< The number of vertices in the simplified contour.
	RVerts  []int ///< Raw contour vertex and connection data. [Size: 4 * #NRVerts]
	NRVerts int   ///< The number of vertices in the raw contour.
	Reg     int   ///< The region id of the contour.
	Area    int   ///< The area id of the contour.
}

// / Represents a group of related contours.
// / The set is immutable once built; contours are reached through the
// / accessors only.
type ContourSet struct {
	conts      []*Contour
	Bmin       common.Vec3 ///< The minimum bounds in world space. [(x, y, z)]
	Bmax       common.Vec3 ///< The maximum bounds in world space. [(x, y, z)]
	Cs         float64     ///< The size of each cell. (On the xz-plane.)
	Ch         float64     ///< The height of each cell. (The minimum increment along the y-axis.)
	Width      int         ///< The width of the set. (Along the x-axis in cell units.)
	Height     int         ///< The height of the set. (Along the z-axis in cell units.)
	BorderSize int         ///< The AABB border size used to generate the source data from which the set was derived.
	MaxError   float64     ///< The max edge error that this contour set was simplified with.
}

// / The number of contours in the set.
func (cset *ContourSet) Len() int {
	return len(cset.conts)
}

// / The i-th contour of the set.
func (cset *ContourSet) Contour(i int) *Contour {
	return cset.conts[i]
}

// / All contours of the set. The returned slice is a copy; reordering or
// / truncating it does not affect the set.
func (cset *ContourSet) Contours() []*Contour {
	out := make([]*Contour, len(cset.conts))
	copy(out, cset.conts)
	return out
}
