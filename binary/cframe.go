package binary

import "math"

var negZero = float32(math.Copysign(0, -1))

// orientationMatrix maps each of the 24 single-byte orientation codes to its
// axis-aligned rotation matrix. Code 0x00 means "full matrix follows" and is
// not in the table; codeForMatrix reports false for any matrix that is not
// one of the 24 canonical orientations.
var orientationMatrix = map[uint8][9]float32{
	0x02: {+1, +0, +0, +0, +1, +0, +0, +0, +1},
	0x03: {+1, +0, +0, +0, +0, -1, +0, +1, +0},
	0x05: {+1, +0, +0, +0, -1, +0, +0, +0, -1},
	0x06: {+1, +0, negZero, +0, +0, +1, +0, -1, +0},
	0x07: {+0, +1, +0, +1, +0, +0, +0, +0, -1},
	0x09: {+0, +0, +1, +1, +0, +0, +0, +1, +0},
	0x0A: {+0, -1, +0, +1, +0, negZero, +0, +0, +1},
	0x0C: {+0, +0, -1, +1, +0, +0, +0, -1, +0},
	0x0D: {+0, +1, +0, +0, +0, +1, +1, +0, +0},
	0x0E: {+0, +0, -1, +0, +1, +0, +1, +0, +0},
	0x10: {+0, -1, +0, +0, +0, -1, +1, +0, +0},
	0x11: {+0, +0, +1, +0, -1, +0, +1, +0, negZero},
	0x14: {-1, +0, +0, +0, +1, +0, +0, +0, -1},
	0x15: {-1, +0, +0, +0, +0, +1, +0, +1, negZero},
	0x17: {-1, +0, +0, +0, -1, +0, +0, +0, +1},
	0x18: {-1, +0, negZero, +0, +0, -1, +0, -1, negZero},
	0x19: {+0, +1, negZero, -1, +0, +0, +0, +0, +1},
	0x1B: {+0, +0, -1, -1, +0, +0, +0, +1, +0},
	0x1C: {+0, -1, negZero, -1, +0, negZero, +0, +0, -1},
	0x1E: {+0, +0, +1, -1, +0, +0, +0, -1, +0},
	0x1F: {+0, +1, +0, +0, +0, -1, -1, +0, +0},
	0x20: {+0, +0, +1, +0, +1, negZero, -1, +0, +0},
	0x22: {+0, -1, +0, +0, +0, +1, -1, +0, +0},
	0x23: {+0, +0, -1, +0, -1, negZero, -1, +0, negZero},
}

var orientationCode = func() map[[9]float32]uint8 {
	m := make(map[[9]float32]uint8, len(orientationMatrix))
	for code, mat := range orientationMatrix {
		m[mat] = code
	}
	return m
}()

// matrixForCode returns the rotation matrix for a CFrame orientation code, or
// the zero matrix for code 0x00 (full matrix follows) or an unrecognized
// code.
func matrixForCode(code uint8) [9]float32 {
	return orientationMatrix[code]
}

// codeForMatrix returns the orientation code for a rotation matrix, and
// whether the matrix is one of the 24 recognized orientations. The encoder
// always falls back to the 0x00 full-matrix form regardless of this result
// (see the encoder's CFrame case), but the decoder must recognize every
// code it might be asked to read, including ones never produced on write.
func codeForMatrix(m [9]float32) (uint8, bool) {
	c, ok := orientationCode[m]
	return c, ok
}
