package detour

import (
	"math"
	"sort"
)

const (
	/// A value that indicates the entity does not reference anything.
	/// Terminates the vertex list of a polygon shorter than nvp.
	DT_MESH_NULL_IDX = 0xffff
)

// / Bounding volume node.
// / @note This structure is rarely if ever used by the end user.
// / @see CreateBVTree
type DtBVNode struct {
	Bmin [3]int ///< Minimum bounds of the node's AABB. [(x, y, z)]
	Bmax [3]int ///< Maximum bounds of the node's AABB. [(x, y, z)]
	I    int    ///< The node's index. (Negative for escape sequence.)
}

// bvItem carries one polygon's AABB while the tree is being partitioned.
type bvItem struct {
	bmin [3]int
	bmax [3]int
	i    int
}

func calcExtends(items []bvItem, imin, imax int) (bmin, bmax [3]int) {
	bmin = items[imin].bmin
	bmax = items[imin].bmax

	for i := imin + 1; i < imax; i++ {
		it := &items[i]
		if it.bmin[0] < bmin[0] {
			bmin[0] = it.bmin[0]
		}
		if it.bmin[1] < bmin[1] {
			bmin[1] = it.bmin[1]
		}
		if it.bmin[2] < bmin[2] {
			bmin[2] = it.bmin[2]
		}

		if it.bmax[0] > bmax[0] {
			bmax[0] = it.bmax[0]
		}
		if it.bmax[1] > bmax[1] {
			bmax[1] = it.bmax[1]
		}
		if it.bmax[2] > bmax[2] {
			bmax[2] = it.bmax[2]
		}
	}
	return bmin, bmax
}

func longestAxis(x, y, z int) int {
	axis := 0
	maxVal := x
	if y > maxVal {
		axis = 1
		maxVal = y
	}
	if z > maxVal {
		axis = 2
	}
	return axis
}

func subdivide(items []bvItem, imin, imax int, curNode *int, nodes []DtBVNode) {
	inum := imax - imin
	icur := *curNode

	node := &nodes[*curNode]
	*curNode++

	if inum == 1 {
		// Leaf
		node.Bmin = items[imin].bmin
		node.Bmax = items[imin].bmax
		node.I = items[imin].i
	} else {
		// Split
		node.Bmin, node.Bmax = calcExtends(items, imin, imax)

		axis := longestAxis(node.Bmax[0]-node.Bmin[0],
			node.Bmax[1]-node.Bmin[1],
			node.Bmax[2]-node.Bmin[2])

		// Stable keeps tie order, so identical input yields an identical tree.
		s := items[imin:imax]
		sort.SliceStable(s, func(i, j int) bool {
			return s[i].bmin[axis] < s[j].bmin[axis]
		})

		isplit := imin + inum/2

		// Left
		subdivide(items, imin, isplit, curNode, nodes)
		// Right
		subdivide(items, isplit, imax, curNode, nodes)

		iescape := *curNode - icur
		// Negative index means escape.
		node.I = -iescape
	}
}

// / Builds a bounding volume tree over the polygons of a mesh.
// /
// / @p verts holds x,y,z triples in cell units. @p polys holds @p nvp vertex
// / indices per polygon, terminated by #DT_MESH_NULL_IDX when shorter.
// / @p nodes must have room for 2*@p npolys entries; the tree occupies the
// / first 2*@p npolys-1 of them, laid out in preorder with negative escape
// / offsets on internal nodes.
// /
// / @return The number of nodes written.
func CreateBVTree(verts []int, polys []int, npolys, nvp int, cs, ch float64, nodes []DtBVNode) int {
	if npolys == 0 {
		return 0
	}

	items := make([]bvItem, npolys)
	for i := 0; i < npolys; i++ {
		it := &items[i]
		it.i = i

		// Calc polygon bounds.
		p := polys[i*nvp : i*nvp+nvp]
		it.bmin[0] = verts[p[0]*3+0]
		it.bmin[1] = verts[p[0]*3+1]
		it.bmin[2] = verts[p[0]*3+2]
		it.bmax = it.bmin

		for j := 1; j < nvp; j++ {
			if p[j] == DT_MESH_NULL_IDX {
				break
			}
			x := verts[p[j]*3+0]
			y := verts[p[j]*3+1]
			z := verts[p[j]*3+2]

			if x < it.bmin[0] {
				it.bmin[0] = x
			}
			if y < it.bmin[1] {
				it.bmin[1] = y
			}
			if z < it.bmin[2] {
				it.bmin[2] = z
			}

			if x > it.bmax[0] {
				it.bmax[0] = x
			}
			if y > it.bmax[1] {
				it.bmax[1] = y
			}
			if z > it.bmax[2] {
				it.bmax[2] = z
			}
		}
		// Remap y
		it.bmin[1] = int(math.Floor(float64(it.bmin[1]) * ch / cs))
		it.bmax[1] = int(math.Ceil(float64(it.bmax[1]) * ch / cs))
	}

	curNode := 0
	subdivide(items, 0, npolys, &curNode, nodes)
	return curNode
}

// / Convenience wrapper around #CreateBVTree that allocates the node array
// / at its contract size of 2*@p npolys.
func BuildBVTree(verts []int, polys []int, npolys, nvp int, cs, ch float64) ([]DtBVNode, int) {
	nodes := make([]DtBVNode, npolys*2)
	n := CreateBVTree(verts, polys, npolys, nvp, cs, ch, nodes)
	return nodes, n
}
