package render

// DrawWireframe outlines every triangle of verts that would be rasterized:
// inside the frustum, facing the camera and not degenerate. It is a debug
// overlay and ignores depth.
func (fb *Framebuffer) DrawWireframe(verts []ScreenVertex, c Color) {
	for i := range TriangleCount(verts) {
		tri := TriangleAt(verts, i)
		if !tri.InFrustum(fb.Width, fb.Height) || tri.Area() < epsilon {
			continue
		}
		p := [3][2]int{}
		for j, v := range []*ScreenVertex{tri.V0(), tri.V1(), tri.V2()} {
			p[j] = [2]int{int(v.Position.X), int(v.Position.Y)}
		}
		fb.DrawLine(p[0][0], p[0][1], p[1][0], p[1][1], c)
		fb.DrawLine(p[1][0], p[1][1], p[2][0], p[2][1], c)
		fb.DrawLine(p[2][0], p[2][1], p[0][0], p[0][1], c)
	}
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's algorithm.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		fb.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
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

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
