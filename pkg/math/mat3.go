package math

// Mat3 is a 3x3 matrix in column-major order.
type Mat3 [9]float32

// Identity3 returns a 3x3 identity matrix.
func Identity3() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Col returns column i.
func (m Mat3) Col(i int) Vec3 {
	return Vec3{m[i*3], m[i*3+1], m[i*3+2]}
}

// Transpose returns the transposed matrix.
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Inverse returns the inverse of the matrix.
// Returns identity if the matrix is singular.
func (m Mat3) Inverse() Mat3 {
	c0, c1, c2 := m.Col(0), m.Col(1), m.Col(2)

	// Rows of the inverse are the pairwise cross products over det.
	r0 := c1.Cross(c2)
	r1 := c2.Cross(c0)
	r2 := c0.Cross(c1)

	det := c0.Dot(r0)
	if det == 0 {
		return Identity3()
	}
	inv := 1 / det

	return Mat3{
		r0.X * inv, r1.X * inv, r2.X * inv,
		r0.Y * inv, r1.Y * inv, r2.Y * inv,
		r0.Z * inv, r1.Z * inv, r2.Z * inv,
	}
}

// MulVec3 returns m * v.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return m.Col(0).Scale(v.X).Add(m.Col(1).Scale(v.Y)).Add(m.Col(2).Scale(v.Z))
}
