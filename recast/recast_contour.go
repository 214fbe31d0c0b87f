package recast

import (
	"errors"
	"fmt"

	"github.com/gorustyt/navcontour/common"
	"go.uber.org/zap"
)

const (
	/// Contour build flags.
	/// @see BuildContours
	/// Applied to the region id field of contour vertices in order to extract the region id.
	/// The region id field of a vertex may have several flags applied to it.  So the
	/// fields value can't be used directly.
	/// @see Contour::Verts, Contour::RVerts
	RC_CONTOUR_REG_MASK = 0xffff
	/// Area border flag.
	/// If a region ID has this bit set, then the associated element lies on
	/// the border of an area.
	/// (Used during the region and contour build process.)
	/// @see RcCompactSpan::Reg, #Contour::Verts, #Contour::RVerts
	RC_AREA_BORDER = 0x20000
	/// Border vertex flag.
	/// If a region ID has this bit set, then the associated element lies on
	/// a tile border. If a contour vertex's region ID has this bit set, the
	/// vertex will later be removed in order to match the segments and vertices
	/// at tile boundaries.
	/// (Used during the build process.)
	/// @see RcCompactSpan::Reg, #Contour::Verts, #Contour::RVerts
	RC_BORDER_VERTEX = 0x10000

	RC_CONTOUR_TESS_WALL_EDGES = 0x01 ///< Tessellate solid (impassable) edges during contour simplification.
	RC_CONTOUR_TESS_AREA_EDGES = 0x02 ///< Tessellate edges between areas during contour simplification.

	// Upper bound on walker steps per contour. Legitimate input stays far
	// below this; reaching it means the connection data is inconsistent.
	maxContourIters = 40000
)

var (
	ErrMalformedConnectivity = errors.New("contour walk did not close, connectivity is malformed")
	ErrBrokenConnection      = errors.New("contour walk stepped across a missing connection")
)

var logger = zap.NewNop()

// / Sets the logger used for build diagnostics. Passing nil silences them.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

func getCornerHeight(x, y, i, dir int, chf *RcCompactHeightfield) (ch int, isBorderVertex bool) {
	s := chf.Spans[i]
	ch = s.Y
	dirp := (dir + 1) & 0x3

	var regs [4]int

	// Combine region and area codes in order to prevent
	// border vertices which are in between two areas to be removed.
	regs[0] = chf.Spans[i].Reg | (chf.Areas[i] << 16)

	if RcGetCon(s, dir) != RC_NOT_CONNECTED {
		ax := x + common.GetDirOffsetX(dir)
		ay := y + common.GetDirOffsetY(dir)
		ai := chf.Cells[ax+ay*chf.Width].Index + RcGetCon(s, dir)
		as := chf.Spans[ai]
		ch = common.Max(ch, as.Y)
		regs[1] = chf.Spans[ai].Reg | (chf.Areas[ai] << 16)
		if RcGetCon(as, dirp) != RC_NOT_CONNECTED {
			ax2 := ax + common.GetDirOffsetX(dirp)
			ay2 := ay + common.GetDirOffsetY(dirp)
			ai2 := chf.Cells[ax2+ay2*chf.Width].Index + RcGetCon(as, dirp)
			as2 := chf.Spans[ai2]
			ch = common.Max(ch, as2.Y)
			regs[2] = chf.Spans[ai2].Reg | (chf.Areas[ai2] << 16)
		}
	}
	if RcGetCon(s, dirp) != RC_NOT_CONNECTED {
		ax := x + common.GetDirOffsetX(dirp)
		ay := y + common.GetDirOffsetY(dirp)
		ai := chf.Cells[ax+ay*chf.Width].Index + RcGetCon(s, dirp)
		as := chf.Spans[ai]
		ch = common.Max(ch, as.Y)
		regs[3] = chf.Spans[ai].Reg | (chf.Areas[ai] << 16)
		if RcGetCon(as, dir) != RC_NOT_CONNECTED {
			ax2 := ax + common.GetDirOffsetX(dir)
			ay2 := ay + common.GetDirOffsetY(dir)
			ai2 := chf.Cells[ax2+ay2*chf.Width].Index + RcGetCon(as, dir)
			as2 := chf.Spans[ai2]
			ch = common.Max(ch, as2.Y)
			// Both diagonal walks land in slot 2; the second one wins.
			regs[2] = chf.Spans[ai2].Reg | (chf.Areas[ai2] << 16)
		}
	}

	// Check if the vertex is special edge vertex, these vertices will be removed later.
	for j := 0; j < 4; j++ {
		a := j
		b := (j + 1) & 0x3
		c := (j + 2) & 0x3
		d := (j + 3) & 0x3

		// The vertex is a border vertex there are two same exterior cells in a row,
		// followed by two interior cells and none of the regions are out of bounds.
		twoSameExts := (regs[a]&regs[b]&RC_BORDER_REG) != 0 && regs[a] == regs[b]
		twoInts := ((regs[c] | regs[d]) & RC_BORDER_REG) == 0
		intsSameArea := (regs[c] >> 16) == (regs[d] >> 16)
		noZeros := regs[a] != 0 && regs[b] != 0 && regs[c] != 0 && regs[d] != 0
		if twoSameExts && twoInts && intsSameArea && noZeros {
			isBorderVertex = true
			break
		}
	}

	return ch, isBorderVertex
}

// Traces the boundary of the region owning span i, starting from one of its
// unvisited edges. The returned points are x,y,z,reg quadruples on the
// corner grid, wound clockwise.
func walkContour(x, y, i int, chf *RcCompactHeightfield, flags []int) ([]int, error) {
	// Choose the first non-connected edge.
	dir := 0
	for (flags[i] & (1 << dir)) == 0 {
		dir++
	}

	startDir := dir
	starti := i

	area := chf.Areas[i]

	points := make([]int, 0, 256)
	for iter := 0; ; iter++ {
		if iter >= maxContourIters {
			logger.Warn("contour walk hit the iteration cap",
				zap.Int("x", x), zap.Int("y", y), zap.Int("span", i))
			return nil, fmt.Errorf("walk contour at (%d,%d): %w", x, y, ErrMalformedConnectivity)
		}
		if flags[i]&(1<<dir) != 0 {
			// Choose the edge corner.
			px := x
			py, isBorderVertex := getCornerHeight(x, y, i, dir, chf)
			pz := y
			switch dir {
			case 0:
				pz++
			case 1:
				px++
				pz++
			case 2:
				px++
			}
			r := 0
			s := chf.Spans[i]
			if RcGetCon(s, dir) != RC_NOT_CONNECTED {
				ax := x + common.GetDirOffsetX(dir)
				ay := y + common.GetDirOffsetY(dir)
				ai := chf.Cells[ax+ay*chf.Width].Index + RcGetCon(s, dir)
				r = chf.Spans[ai].Reg
				if area != chf.Areas[ai] {
					r = SetAreaBorder(r)
				}
			}
			if isBorderVertex {
				r = SetBorderVertex(r)
			}

			points = append(points, px, py, pz, r)

			flags[i] &= ^(1 << dir) // Remove visited edges
			dir = (dir + 1) & 0x3   // Rotate CW
		} else {
			ni := -1
			nx := x + common.GetDirOffsetX(dir)
			ny := y + common.GetDirOffsetY(dir)
			s := chf.Spans[i]
			if RcGetCon(s, dir) != RC_NOT_CONNECTED {
				nc := chf.Cells[nx+ny*chf.Width]
				ni = nc.Index + RcGetCon(s, dir)
			}
			if ni == -1 {
				return nil, fmt.Errorf("walk contour at (%d,%d) dir %d: %w", x, y, dir, ErrBrokenConnection)
			}
			x = nx
			y = ny
			i = ni
			dir = (dir + 3) & 0x3 // Rotate CCW
		}

		if starti == i && startDir == dir {
			break
		}
	}
	return points, nil
}

func distancePtSeg(x, z, px, pz, qx, qz int) float64 {
	pqx := float64(qx - px)
	pqz := float64(qz - pz)
	dx := float64(x - px)
	dz := float64(z - pz)
	d := pqx*pqx + pqz*pqz
	t := pqx*dx + pqz*dz
	if d > 0 {
		t /= d
	}

	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	dx = float64(px) + t*pqx - float64(x)
	dz = float64(pz) + t*pqz - float64(z)

	return dx*dx + dz*dz
}

// A simplified vertex keeps its index into the raw polyline in a dedicated
// field while the shape is still being refined; the region tag is only
// materialized by the final pass.
type simplifiedVert struct {
	x, y, z int
	raw     int
}

func insertVert(s []simplifiedVert, at int, v simplifiedVert) []simplifiedVert {
	s = append(s, simplifiedVert{})
	copy(s[at+1:], s[at:])
	s[at] = v
	return s
}

func simplifyContour(points []int, maxError float64, maxEdgeLen, buildFlags int) []int {
	pn := len(points) / 4

	// Add initial points.
	hasConnections := false
	for i := 0; i < len(points); i += 4 {
		if RemoveFlags(points[i+3]) != 0 {
			hasConnections = true
			break
		}
	}

	var simplified []simplifiedVert
	if hasConnections {
		// The contour has some portals to other regions.
		// Add a new point to every location where the region changes.
		for i := 0; i < pn; i++ {
			ii := (i + 1) % pn
			differentRegs := !IsSameRegion(points[i*4+3], points[ii*4+3])
			areaBorders := !IsSameArea(points[i*4+3], points[ii*4+3])
			if differentRegs || areaBorders {
				simplified = append(simplified, simplifiedVert{points[i*4+0], points[i*4+1], points[i*4+2], i})
			}
		}
	}

	if len(simplified) == 0 {
		// If there is no connections at all,
		// create some initial points for the simplification process.
		// Find lower-left and upper-right vertices of the contour.
		llx := points[0]
		lly := points[1]
		llz := points[2]
		lli := 0
		urx := points[0]
		ury := points[1]
		urz := points[2]
		uri := 0
		for i := 0; i < len(points); i += 4 {
			x := points[i+0]
			y := points[i+1]
			z := points[i+2]
			if x < llx || (x == llx && z < llz) {
				llx = x
				lly = y
				llz = z
				lli = i / 4
			}
			if x > urx || (x == urx && z > urz) {
				urx = x
				ury = y
				urz = z
				uri = i / 4
			}
		}
		simplified = append(simplified,
			simplifiedVert{llx, lly, llz, lli},
			simplifiedVert{urx, ury, urz, uri})
	}

	// Add points until all raw points are within
	// error tolerance to the simplified shape.
	for i := 0; i < len(simplified); {
		ii := (i + 1) % len(simplified)

		ax := simplified[i].x
		az := simplified[i].z
		ai := simplified[i].raw

		bx := simplified[ii].x
		bz := simplified[ii].z
		bi := simplified[ii].raw

		// Find maximum deviation from the segment.
		maxd := float64(0)
		maxi := -1
		var ci, cinc, endi int

		// Traverse the segment in lexilogical order so that the
		// max deviation is calculated similarly when traversing
		// opposite segments.
		if bx > ax || (bx == ax && bz > az) {
			cinc = 1
			ci = (ai + cinc) % pn
			endi = bi
		} else {
			cinc = pn - 1
			ci = (bi + cinc) % pn
			endi = ai
			ax, bx = bx, ax
			az, bz = bz, az
		}

		// Tessellate only outer edges or edges between areas.
		if RemoveFlags(points[ci*4+3]) == 0 || (points[ci*4+3]&RC_AREA_BORDER) != 0 {
			for ci != endi {
				d := distancePtSeg(points[ci*4+0], points[ci*4+2], ax, az, bx, bz)
				if d > maxd {
					maxd = d
					maxi = ci
				}
				ci = (ci + cinc) % pn
			}
		}

		// If the max deviation is larger than accepted error,
		// add new point, else continue to next segment.
		if maxi != -1 && maxd > maxError*maxError {
			simplified = insertVert(simplified, i+1,
				simplifiedVert{points[maxi*4+0], points[maxi*4+1], points[maxi*4+2], maxi})
		} else {
			i++
		}
	}

	// Split too long edges.
	if maxEdgeLen > 0 && (buildFlags&(RC_CONTOUR_TESS_WALL_EDGES|RC_CONTOUR_TESS_AREA_EDGES)) != 0 {
		for i := 0; i < len(simplified); {
			ii := (i + 1) % len(simplified)

			ax := simplified[i].x
			az := simplified[i].z
			ai := simplified[i].raw

			bx := simplified[ii].x
			bz := simplified[ii].z
			bi := simplified[ii].raw

			maxi := -1
			ci := (ai + 1) % pn

			// Tessellate only outer edges or edges between areas.
			tess := false
			// Wall edges.
			if (buildFlags&RC_CONTOUR_TESS_WALL_EDGES) != 0 && RemoveFlags(points[ci*4+3]) == 0 {
				tess = true
			}
			// Edges between areas.
			if (buildFlags&RC_CONTOUR_TESS_AREA_EDGES) != 0 && (points[ci*4+3]&RC_AREA_BORDER) != 0 {
				tess = true
			}

			if tess {
				dx := bx - ax
				dz := bz - az
				if dx*dx+dz*dz > maxEdgeLen*maxEdgeLen {
					// Round based on the segments in lexilogical order so that the
					// max tesselation is consistent regardless in which direction
					// segments are traversed.
					n := bi - ai
					if bi < ai {
						n = bi + pn - ai
					}
					if n > 1 {
						if bx > ax || (bx == ax && bz > az) {
							maxi = (ai + n/2) % pn
						} else {
							maxi = (ai + (n+1)/2) % pn
						}
					}
				}
			}

			if maxi != -1 {
				simplified = insertVert(simplified, i+1,
					simplifiedVert{points[maxi*4+0], points[maxi*4+1], points[maxi*4+2], maxi})
			} else {
				i++
			}
		}
	}

	out := make([]int, 0, len(simplified)*4)
	for _, sv := range simplified {
		// The edge vertex flag is taken from the current raw point,
		// and the neighbour region is taken from the next raw point.
		ai := (sv.raw + 1) % pn
		bi := sv.raw
		r := (points[ai*4+3] & (RC_CONTOUR_REG_MASK | RC_AREA_BORDER)) | (points[bi*4+3] & RC_BORDER_VERTEX)
		out = append(out, sv.x, sv.y, sv.z, r)
	}
	return out
}

func removeDegenerateSegments(simplified []int) []int {
	// Remove adjacent vertices which are equal on the xz-plane,
	// or else the triangulator will get confused.
	npts := len(simplified) / 4
	for i := 0; i < npts; i++ {
		ni := next(i, npts)
		if vequal(common.GetVert4(simplified, i), common.GetVert4(simplified, ni)) {
			// Degenerate segment, remove.
			copy(simplified[i*4:], simplified[(i+1)*4:])
			simplified = simplified[:len(simplified)-4]
			npts--
		}
	}
	return simplified
}

// / Signed area of the contour on the xz-plane. Positive for clockwise
// / wound loops, negative for backwards ones.
func CalcAreaOfPolygon2D(verts []int, nverts int) int {
	area := 0
	i := 0
	j := nverts - 1
	for i < nverts {
		vi := common.GetVert4(verts, i)
		vj := common.GetVert4(verts, j)
		area += vi[0]*vj[2] - vj[0]*vi[2]
		j = i
		i++
	}
	return (area + 1) / 2
}

// Finds the vertex pair (one on each contour) with the smallest xz
// distance where b's vertex lies in front of a's edge fan.
func getClosestIndices(vertsa []int, nvertsa int, vertsb []int, nvertsb int) (ia, ib int) {
	closestDist := 0xfffffff
	ia, ib = -1, -1
	for i := 0; i < nvertsa; i++ {
		in := next(i, nvertsa)
		ip := prev(i, nvertsa)
		va := common.GetVert4(vertsa, i)
		van := common.GetVert4(vertsa, in)
		vap := common.GetVert4(vertsa, ip)

		for j := 0; j < nvertsb; j++ {
			vb := common.GetVert4(vertsb, j)
			// vb must be "infront" of va.
			if left(vap, va, vb) && left(va, van, vb) {
				dx := vb[0] - va[0]
				dz := vb[2] - va[2]
				d := dx*dx + dz*dz
				if d < closestDist {
					ia = i
					ib = j
					closestDist = d
				}
			}
		}
	}
	return ia, ib
}

// Splices contour B into contour A at the given vertex indices. B is left
// empty afterwards.
func mergeContours(ca, cb *Contour, ia, ib int) {
	nv := 0
	verts := make([]int, (ca.NVerts+cb.NVerts+2)*4)

	// Copy contour A.
	for i := 0; i <= ca.NVerts; i++ {
		dst := common.GetVert4(verts, nv)
		src := common.GetVert4(ca.Verts, (ia+i)%ca.NVerts)
		copy(dst, src)
		nv++
	}

	// Copy contour B.
	for i := 0; i <= cb.NVerts; i++ {
		dst := common.GetVert4(verts, nv)
		src := common.GetVert4(cb.Verts, (ib+i)%cb.NVerts)
		copy(dst, src)
		nv++
	}

	ca.Verts = verts[:nv*4]
	ca.NVerts = nv

	cb.Verts = nil
	cb.NVerts = 0
}

// / @par
// /
// / The raw contours will match the region outlines exactly. The @p maxError and @p maxEdgeLen
// / parameters control how closely the simplified contours will match the raw contours.
// /
// / Simplified contours are generated such that the vertices for portals between areas match up.
// / (They are considered mandatory vertices.)
// /
// / Setting @p maxEdgeLen to zero will disable the edge length feature.
// /
// / @see RcCompactHeightfield, ContourSet
func BuildContours(chf *RcCompactHeightfield, maxError float64, maxEdgeLen int, buildFlags int) (*ContourSet, error) {
	w := chf.Width
	h := chf.Height
	borderSize := chf.BorderSize

	cset := &ContourSet{
		Bmin:       chf.Bmin,
		Bmax:       chf.Bmax,
		Cs:         chf.Cs,
		Ch:         chf.Ch,
		Width:      chf.Width - chf.BorderSize*2,
		Height:     chf.Height - chf.BorderSize*2,
		BorderSize: chf.BorderSize,
		MaxError:   maxError,
	}
	if borderSize > 0 {
		// If the heightfield was built with bordersize, remove the offset.
		pad := float64(borderSize) * chf.Cs
		cset.Bmin[0] += pad
		cset.Bmin[2] += pad
		cset.Bmax[0] -= pad
		cset.Bmax[2] -= pad
	}

	flags := make([]int, chf.SpanCount)
	// Mark boundaries.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := chf.Cells[x+y*w]
			for i, ni := c.Index, c.Index+c.Count; i < ni; i++ {
				res := 0
				s := chf.Spans[i]
				if IsBorderOrNull(chf.Spans[i].Reg) {
					flags[i] = 0
					continue
				}
				for dir := 0; dir < 4; dir++ {
					r := 0
					if RcGetCon(s, dir) != RC_NOT_CONNECTED {
						ax := x + common.GetDirOffsetX(dir)
						ay := y + common.GetDirOffsetY(dir)
						ai := chf.Cells[ax+ay*w].Index + RcGetCon(s, dir)
						r = chf.Spans[ai].Reg
					}
					if r == chf.Spans[i].Reg {
						res |= 1 << dir
					}
				}
				flags[i] = res ^ 0xf // Inverse, mark non connected edges.
			}
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := chf.Cells[x+y*w]
			for i, ni := c.Index, c.Index+c.Count; i < ni; i++ {
				if flags[i] == 0 || flags[i] == 0xf {
					flags[i] = 0
					continue
				}
				reg := chf.Spans[i].Reg
				if IsBorderOrNull(reg) {
					continue
				}

				area := chf.Areas[i]

				verts, err := walkContour(x, y, i, chf, flags)
				if err != nil {
					return nil, err
				}

				simplified := simplifyContour(verts, maxError, maxEdgeLen, buildFlags)
				simplified = removeDegenerateSegments(simplified)

				// Create contour.
				if len(simplified)/4 >= 3 {
					cont := &Contour{
						NVerts:  len(simplified) / 4,
						Verts:   simplified,
						NRVerts: len(verts) / 4,
						RVerts:  verts,
						Reg:     reg,
						Area:    area,
					}
					if borderSize > 0 {
						// If the heightfield was built with bordersize, remove the offset.
						for j := 0; j < cont.NVerts; j++ {
							v := common.GetVert4(cont.Verts, j)
							v[0] -= borderSize
							v[2] -= borderSize
						}
						for j := 0; j < cont.NRVerts; j++ {
							v := common.GetVert4(cont.RVerts, j)
							v[0] -= borderSize
							v[2] -= borderSize
						}
					}
					cset.conts = append(cset.conts, cont)
				}
			}
		}
	}

	// Merge backwards wound contours into a same-region host. A backwards
	// loop is typically the inner boundary of a region with a hole.
	for i := 0; i < len(cset.conts); i++ {
		cont := cset.conts[i]
		if cont.NVerts == 0 || CalcAreaOfPolygon2D(cont.Verts, cont.NVerts) >= 0 {
			continue
		}
		mergeIdx := -1
		for j := 0; j < len(cset.conts); j++ {
			if j == i {
				continue
			}
			mc := cset.conts[j]
			if mc.NVerts > 0 && mc.Reg == cont.Reg && CalcAreaOfPolygon2D(mc.Verts, mc.NVerts) > 0 {
				mergeIdx = j
				break
			}
		}
		if mergeIdx == -1 {
			logger.Warn("no merge host for backwards contour, keeping it",
				zap.Int("region", cont.Reg))
			continue
		}
		mc := cset.conts[mergeIdx]
		ia, ib := getClosestIndices(mc.Verts, mc.NVerts, cont.Verts, cont.NVerts)
		if ia == -1 || ib == -1 {
			logger.Warn("failed to find merge points for backwards contour",
				zap.Int("region", cont.Reg))
			continue
		}
		mergeContours(mc, cont, ia, ib)
	}

	// Drop the contours emptied by merging.
	conts := cset.conts[:0]
	for _, cont := range cset.conts {
		if cont.NVerts > 0 {
			conts = append(conts, cont)
		}
	}
	cset.conts = conts

	return cset, nil
}
