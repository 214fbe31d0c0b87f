package detour

import (
	"reflect"
	"testing"
)

func assertTrue(t *testing.T, value bool, msg string) {
	t.Helper()
	if !value {
		t.Error(msg)
	}
}

// Two triangles far apart; nvp 6 with sentinel padding.
func twoTriangleMesh() (verts, polys []int, npolys, nvp int) {
	verts = []int{
		0, 0, 0,
		1, 0, 0,
		1, 0, 1,
		10, 0, 10,
		11, 0, 10,
		11, 0, 11,
	}
	nvp = 6
	polys = []int{
		0, 1, 2, DT_MESH_NULL_IDX, DT_MESH_NULL_IDX, DT_MESH_NULL_IDX,
		3, 4, 5, DT_MESH_NULL_IDX, DT_MESH_NULL_IDX, DT_MESH_NULL_IDX,
	}
	return verts, polys, 2, nvp
}

// A row of quads along x with growing y extents.
func quadRowMesh(n int) (verts, polys []int, npolys, nvp int) {
	nvp = 6
	for i := 0; i < n; i++ {
		base := len(verts) / 3
		x := i * 3
		verts = append(verts,
			x, 0, 0,
			x+2, i, 0,
			x+2, i, 2,
			x, 0, 2,
		)
		polys = append(polys, base, base+1, base+2, base+3, DT_MESH_NULL_IDX, DT_MESH_NULL_IDX)
	}
	return verts, polys, n, nvp
}

func TestLongestAxis(t *testing.T) {
	assertTrue(t, longestAxis(1, 0, 0) == 0, "x longest")
	assertTrue(t, longestAxis(0, 1, 0) == 1, "y longest")
	assertTrue(t, longestAxis(0, 0, 1) == 2, "z longest")
	assertTrue(t, longestAxis(5, 5, 5) == 0, "full tie picks x")
	assertTrue(t, longestAxis(5, 5, 1) == 0, "xy tie picks x")
	assertTrue(t, longestAxis(1, 5, 5) == 1, "yz tie picks y")
}

func TestCreateBVTreeEmpty(t *testing.T) {
	nodes := make([]DtBVNode, 0)
	n := CreateBVTree(nil, nil, 0, 6, 0.3, 0.2, nodes)
	assertTrue(t, n == 0, "empty input writes no nodes")
}

func TestCreateBVTreeTwoTriangles(t *testing.T) {
	verts, polys, npolys, nvp := twoTriangleMesh()
	nodes, n := BuildBVTree(verts, polys, npolys, nvp, 1, 1)
	if n != 3 {
		t.Fatalf("expected 3 nodes, got %d", n)
	}
	assertTrue(t, len(nodes) == 4, "node array allocated at twice the polygon count")

	root := nodes[0]
	assertTrue(t, root.I == -3, "root escape offset skips the whole tree")
	assertTrue(t, root.Bmin == [3]int{0, 0, 0}, "root min bounds")
	assertTrue(t, root.Bmax == [3]int{11, 0, 11}, "root max bounds")

	assertTrue(t, nodes[1].I == 0, "left leaf holds the near polygon")
	assertTrue(t, nodes[1].Bmin == [3]int{0, 0, 0} && nodes[1].Bmax == [3]int{1, 0, 1}, "near leaf bounds")
	assertTrue(t, nodes[2].I == 1, "right leaf holds the far polygon")
	assertTrue(t, nodes[2].Bmin == [3]int{10, 0, 10} && nodes[2].Bmax == [3]int{11, 0, 11}, "far leaf bounds")
}

func TestCreateBVTreeYRemap(t *testing.T) {
	// One quad spanning y 1..3 in span units; cs 1, ch 0.5 halves the y
	// range, flooring the min and ceiling the max.
	verts := []int{
		0, 1, 0,
		2, 3, 0,
		2, 3, 2,
		0, 1, 2,
	}
	polys := []int{0, 1, 2, 3, DT_MESH_NULL_IDX, DT_MESH_NULL_IDX}
	nodes, n := BuildBVTree(verts, polys, 1, 6, 1, 0.5)
	if n != 1 {
		t.Fatalf("expected 1 node, got %d", n)
	}
	assertTrue(t, nodes[0].Bmin[1] == 0, "min y floored after scaling")
	assertTrue(t, nodes[0].Bmax[1] == 2, "max y ceiled after scaling")
}

// Walks the flat layout and checks the escape offset and bbox containment
// invariants for every internal node.
func checkSubtree(t *testing.T, nodes []DtBVNode, k int, seen map[int]bool) int {
	t.Helper()
	node := nodes[k]
	if node.I >= 0 {
		assertTrue(t, !seen[node.I], "each polygon appears in exactly one leaf")
		seen[node.I] = true
		return k + 1
	}
	end := k - node.I
	c := k + 1
	union := nodes[c]
	for c < end {
		child := nodes[c]
		for j := 0; j < 3; j++ {
			assertTrue(t, child.Bmin[j] >= node.Bmin[j], "child bbox inside parent")
			assertTrue(t, child.Bmax[j] <= node.Bmax[j], "child bbox inside parent")
			if child.Bmin[j] < union.Bmin[j] {
				union.Bmin[j] = child.Bmin[j]
			}
			if child.Bmax[j] > union.Bmax[j] {
				union.Bmax[j] = child.Bmax[j]
			}
		}
		c = checkSubtree(t, nodes, c, seen)
	}
	assertTrue(t, c == end, "children fill the subtree exactly")
	assertTrue(t, union.Bmin == node.Bmin && union.Bmax == node.Bmax, "internal bbox is the union of its children")
	return end
}

func TestCreateBVTreeInvariants(t *testing.T) {
	verts, polys, npolys, nvp := quadRowMesh(7)
	nodes, n := BuildBVTree(verts, polys, npolys, nvp, 1, 1)
	if n != 2*npolys-1 {
		t.Fatalf("expected %d nodes, got %d", 2*npolys-1, n)
	}
	seen := map[int]bool{}
	end := checkSubtree(t, nodes, 0, seen)
	assertTrue(t, end == n, "traversal covers every written node")
	for i := 0; i < npolys; i++ {
		assertTrue(t, seen[i], "polygon index missing from the leaves")
	}
}

func TestCreateBVTreeDeterministic(t *testing.T) {
	verts, polys, npolys, nvp := quadRowMesh(6)
	a, an := BuildBVTree(verts, polys, npolys, nvp, 1, 1)

	verts2, polys2, _, _ := quadRowMesh(6)
	b, bn := BuildBVTree(verts2, polys2, npolys, nvp, 1, 1)

	assertTrue(t, an == bn, "same input, same node count")
	assertTrue(t, reflect.DeepEqual(a, b), "same input, identical node array")
}
