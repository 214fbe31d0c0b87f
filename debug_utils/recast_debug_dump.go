package debug_utils

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/gorustyt/navcontour/common"
	"github.com/gorustyt/navcontour/recast"
	"golang.org/x/image/colornames"
)

// / Dumps the simplified and raw loops of a contour set to Wavefront OBJ.
// / Simplified loops come first, raw loops follow as a second object.
func DuDumpContourSet(cset *recast.ContourSet, w io.Writer) error {
	if w == nil {
		return fmt.Errorf("duDumpContourSet: output writer is nil")
	}

	orig := cset.Bmin
	cs := cset.Cs
	ch := cset.Ch

	if _, err := fmt.Fprintf(w, "# Contour Set\no Contours\n\n"); err != nil {
		return err
	}

	base := 1
	for ci := 0; ci < cset.Len(); ci++ {
		cont := cset.Contour(ci)
		for j := 0; j < cont.NVerts; j++ {
			v := common.GetVert4(cont.Verts, j)
			x := orig[0] + float64(v[0])*cs
			y := orig[1] + float64(v[1]+1)*ch + 0.1
			z := orig[2] + float64(v[2])*cs
			if _, err := fmt.Fprintf(w, "v %f %f %f\n", x, y, z); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "l"); err != nil {
			return err
		}
		for j := 0; j <= cont.NVerts; j++ {
			if _, err := fmt.Fprintf(w, " %d", base+j%cont.NVerts); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "\n"); err != nil {
			return err
		}
		base += cont.NVerts
	}

	if _, err := fmt.Fprintf(w, "\no RawContours\n\n"); err != nil {
		return err
	}
	for ci := 0; ci < cset.Len(); ci++ {
		cont := cset.Contour(ci)
		for j := 0; j < cont.NRVerts; j++ {
			v := common.GetVert4(cont.RVerts, j)
			x := orig[0] + float64(v[0])*cs
			y := orig[1] + float64(v[1]+1)*ch + 0.1
			z := orig[2] + float64(v[2])*cs
			if _, err := fmt.Fprintf(w, "v %f %f %f\n", x, y, z); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "l"); err != nil {
			return err
		}
		for j := 0; j <= cont.NRVerts; j++ {
			if _, err := fmt.Fprintf(w, " %d", base+j%cont.NRVerts); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "\n"); err != nil {
			return err
		}
		base += cont.NRVerts
	}

	return nil
}

// / Rasterizes a top-down view of the simplified contours, one color per
// / region id. scale is pixels per cell, minimum 1.
func DuContourSetToImage(cset *recast.ContourSet, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	wpx := common.Max(cset.Width, 1) * scale
	hpx := common.Max(cset.Height, 1) * scale
	img := image.NewRGBA(image.Rect(0, 0, wpx+1, hpx+1))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: colornames.Black}, image.Point{}, draw.Src)

	for ci := 0; ci < cset.Len(); ci++ {
		cont := cset.Contour(ci)
		c := DuIntToCol(cont.Reg, 255)
		col := color.RGBA{R: c.R(), G: c.G(), B: c.B(), A: c.A()}
		for j := 0; j < cont.NVerts; j++ {
			va := common.GetVert4(cont.Verts, j)
			vb := common.GetVert4(cont.Verts, (j+1)%cont.NVerts)
			drawLine(img, va[0]*scale, va[2]*scale, vb[0]*scale, vb[2]*scale, col)
		}
	}
	return img
}

// / Renders the contour set and encodes it as PNG.
func DuWriteContourSetPNG(cset *recast.ContourSet, scale int, w io.Writer) error {
	return png.Encode(w, DuContourSetToImage(cset, scale))
}

// Bresenham. The image origin is the set's min corner; z grows downward.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	dx := common.Abs(x1 - x0)
	dy := -common.Abs(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		img.SetRGBA(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}
