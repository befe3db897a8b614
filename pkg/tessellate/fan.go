// Package tessellate produces index triangulations of closed vertex loops.
// Loops are given as ordered positions; results index into that slice.
package tessellate

// Fan returns the fan triangulation of an n-vertex loop anchored at
// vertex 0. Loops with fewer than three vertices produce nothing.
func Fan(n int) [][3]int {
	if n < 3 {
		return nil
	}
	tris := make([][3]int, 0, n-2)
	for i := 1; i < n-1; i++ {
		tris = append(tris, [3]int{0, i, i + 1})
	}
	return tris
}

// FanFrom is Fan anchored at vertex start instead of vertex 0.
func FanFrom(n, start int) [][3]int {
	tris := Fan(n)
	for i := range tris {
		for j := range tris[i] {
			tris[i][j] = (tris[i][j] + start) % n
		}
	}
	return tris
}
