// Package geom holds the small rotation/matrix helpers shared by the
// symmetry-expansion code in histmgr and the rigid-body transform code in
// rigidbody, so both apply the exact same Euler convention.
package geom

import "math"

// RotationMatrix builds the XYZ-order rotation matrix for euler = (rx,ry,rz)
// radians: R = Rz * Ry * Rx, applied to a column vector on the right.
func RotationMatrix(euler [3]float64) [3][3]float64 {
	sx, cx := math.Sincos(euler[0])
	sy, cy := math.Sincos(euler[1])
	sz, cz := math.Sincos(euler[2])

	rx := [3][3]float64{{1, 0, 0}, {0, cx, -sx}, {0, sx, cx}}
	ry := [3][3]float64{{cy, 0, sy}, {0, 1, 0}, {-sy, 0, cy}}
	rz := [3][3]float64{{cz, -sz, 0}, {sz, cz, 0}, {0, 0, 1}}

	return Mat3Mul(Mat3Mul(rz, ry), rx)
}

// Mat3Mul returns a*b for row-major 3x3 matrices.
func Mat3Mul(a, b [3][3]float64) [3][3]float64 {
	var out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s := 0.0
			for k := 0; k < 3; k++ {
				s += a[i][k] * b[k][j]
			}
			out[i][j] = s
		}
	}
	return out
}
