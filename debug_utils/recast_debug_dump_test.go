package debug_utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gorustyt/navcontour/common"
	"github.com/gorustyt/navcontour/recast"
)

func buildSquareContourSet(t *testing.T) *recast.ContourSet {
	t.Helper()
	w, h := 4, 4
	regs := make([]int, w*h)
	for z := 1; z <= 2; z++ {
		for x := 1; x <= 2; x++ {
			regs[x+z*w] = 1
		}
	}
	chf := &recast.RcCompactHeightfield{
		Width:      w,
		Height:     h,
		SpanCount:  w * h,
		Bmin:       common.Vec3{0, 0, 0},
		Bmax:       common.Vec3{4, 1, 4},
		Cs:         1,
		Ch:         1,
		MaxRegions: 1,
	}
	chf.Cells = make([]*recast.RcCompactCell, w*h)
	chf.Spans = make([]*recast.RcCompactSpan, w*h)
	chf.Areas = make([]int, w*h)
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			i := x + z*w
			chf.Cells[i] = &recast.RcCompactCell{Index: i, Count: 1}
			s := &recast.RcCompactSpan{Reg: regs[i]}
			for dir := 0; dir < 4; dir++ {
				nx := x + common.GetDirOffsetX(dir)
				nz := z + common.GetDirOffsetY(dir)
				if nx < 0 || nz < 0 || nx >= w || nz >= h {
					recast.RcSetCon(s, dir, recast.RC_NOT_CONNECTED)
				} else {
					recast.RcSetCon(s, dir, 0)
				}
			}
			chf.Spans[i] = s
			chf.Areas[i] = recast.RC_WALKABLE_AREA
		}
	}
	cset, err := recast.BuildContours(chf, 1, 0, 0)
	if err != nil {
		t.Fatalf("BuildContours: %v", err)
	}
	return cset
}

func TestDuDumpContourSet(t *testing.T) {
	cset := buildSquareContourSet(t)
	var buf bytes.Buffer
	if err := DuDumpContourSet(cset, &buf); err != nil {
		t.Fatalf("DuDumpContourSet: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "o Contours") || !strings.Contains(out, "o RawContours") {
		t.Fatalf("missing objects in dump:\n%s", out)
	}
	if strings.Count(out, "v ") != 4+8 {
		t.Fatalf("expected simplified and raw vertices in dump:\n%s", out)
	}
	if strings.Count(out, "l ") != 2 {
		t.Fatalf("expected one polyline per loop:\n%s", out)
	}
}

func TestDuContourSetToImage(t *testing.T) {
	cset := buildSquareContourSet(t)
	img := DuContourSetToImage(cset, 4)
	if img == nil {
		t.Fatal("nil image")
	}
	bounds := img.Bounds()
	assertTrue(t, bounds.Dx() == 4*4+1 && bounds.Dy() == 4*4+1, "image sized from the set dimensions")

	c := DuIntToCol(1, 255)
	px := img.RGBAAt(1*4, 1*4)
	assertTrue(t, px.R == c.R() && px.G == c.G() && px.B == c.B(), "contour corner drawn in its region color")
}

func assertTrue(t *testing.T, value bool, msg string) {
	t.Helper()
	if !value {
		t.Error(msg)
	}
}
