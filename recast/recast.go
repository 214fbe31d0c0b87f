package recast

import "github.com/gorustyt/navcontour/common"

const (
	/// The value returned by rcGetCon if the specified direction is not connected
	/// to another span. (Has no neighbor.)
	RC_NOT_CONNECTED = 0x3f

	/// Represents the null area.
	/// When a data element is given this value it is considered to no longer be
	/// assigned to a usable area.
	RC_NULL_AREA = 0

	/// Heightfield border flag.
	/// If a heightfield region ID has this bit set, then the region is a border
	/// region and its spans are considered un-walkable.
	/// (Used during the region and contour build process.)
	RC_BORDER_REG = 0x8000

	/// The default area id used to indicate a walkable polygon.
	/// This is also the maximum allowed area id, and the only non-null area id
	/// recognized by some steps in the build process.
	RC_WALKABLE_AREA = 63
)

// / Provides information on the content of a cell column in a compact heightfield.
type RcCompactCell struct {
	Index int ///< Index to the first span in the column.
	Count int ///< Number of spans in the column.
}

// / Represents a span of unobstructed space within a compact heightfield.
type RcCompactSpan struct {
	Y   int ///< The lower extent of the span. (Measured from the heightfield's base.)
	Reg int ///< The id of the region the span belongs to. (Or zero if not in a region.)
	Con int ///< Packed neighbor connection data.
	H   int ///< The height of the span.  (Measured from #Y.)
}

// / Gets neighbor connection data for the specified direction.
// / @param[in]		span		The span to check.
// / @param[in]		direction	The direction to check. [Limits: 0 <= value < 4]
// / @return The neighbor connection data for the specified direction, or
// / #RC_NOT_CONNECTED if there is no connection.
func RcGetCon(span *RcCompactSpan, direction int) int {
	shift := direction * 6
	return (span.Con >> shift) & 0x3f
}

// / Sets the neighbor connection data for the specified direction.
// / @param[in]		span			The span to update.
// / @param[in]		direction		The direction to set. [Limits: 0 <= value < 4]
// / @param[in]		neighborIndex	The index of the neighbor span.
func RcSetCon(span *RcCompactSpan, direction, neighborIndex int) {
	shift := direction * 6
	con := span.Con
	span.Con = (con & ^(0x3f << shift)) | ((neighborIndex & 0x3f) << shift)
}

// / A compact, static heightfield representing unobstructed space.
// / @ingroup recast
type RcCompactHeightfield struct {
	Width          int              ///< The width of the heightfield. (Along the x-axis in cell units.)
	Height         int              ///< The height of the heightfield. (Along the z-axis in cell units.)
	SpanCount      int              ///< The number of spans in the heightfield.
	WalkableHeight int              ///< The walkable height used during the build of the field.
	WalkableClimb  int              ///< The walkable climb used during the build of the field.
	BorderSize     int              ///< The AABB border size used during the build of the field.
	MaxRegions     int              ///< The maximum region id of any span within the field.
	Bmin           common.Vec3      ///< The minimum bounds in world space. [(x, y, z)]
	Bmax           common.Vec3      ///< The maximum bounds in world space. [(x, y, z)]
	Cs             float64          ///< The size of each cell. (On the xz-plane.)
	Ch             float64          ///< The height of each cell. (The minimum increment along the y-axis.)
	Cells          []*RcCompactCell ///< Array of cells. [Size: #Width*#Height]
	Spans          []*RcCompactSpan ///< Array of spans. [Size: #SpanCount]
	Areas          []int            ///< Array containing area id data. [Size: #SpanCount]
}

// Region tag helpers. A region id carries flag bits above the id portion;
// these keep the bit twiddling in one place.

// / True if the region is the null region or a heightfield border region.
func IsBorderOrNull(reg int) bool {
	return reg == 0 || (reg&RC_BORDER_REG) != 0
}

// / True if the region is a heightfield border region.
func IsBorder(reg int) bool {
	return (reg & RC_BORDER_REG) != 0
}

// / True if both tags refer to the same region id, ignoring flags.
func IsSameRegion(rega, regb int) bool {
	return (rega & RC_CONTOUR_REG_MASK) == (regb & RC_CONTOUR_REG_MASK)
}

// / True if both tags agree on the area border bit.
func IsSameArea(rega, regb int) bool {
	return (rega & RC_AREA_BORDER) == (regb & RC_AREA_BORDER)
}

// / Strips all flag bits, leaving the plain region id.
func RemoveFlags(reg int) int {
	return reg & RC_CONTOUR_REG_MASK
}

func SetBorderVertex(reg int) int {
	return reg | RC_BORDER_VERTEX
}

func SetAreaBorder(reg int) int {
	return reg | RC_AREA_BORDER
}

// Last time I checked the if version got compiled using cmov, which was a lot faster than module (with idiv).
func prev(i, n int) int {
	if i-1 >= 0 {
		return i - 1
	}
	return n - 1
}

func next(i, n int) int {
	if i+1 < n {
		return i + 1
	}
	return 0
}

func area2(a, b, c []int) int {
	return (b[0]-a[0])*(c[2]-a[2]) - (c[0]-a[0])*(b[2]-a[2])
}

// Returns true iff c is strictly to the left of the directed
// line through a to b.
func left(a, b, c []int) bool {
	return area2(a, b, c) < 0
}

func vequal(a, b []int) bool {
	return a[0] == b[0] && a[2] == b[2]
}
