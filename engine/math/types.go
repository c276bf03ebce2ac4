package math

// Vec2 represents a 2D vector.
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector.
type Vec4 struct {
	X, Y, Z, W float32
}

// Mat4 is a 4x4 matrix stored column-major: element (row r, column c)
// lives at Data[c*4+r], translation occupies Data[12..14]. This matches
// the layout uniform blocks expect, so matrices upload without a
// transpose.
type Mat4 struct {
	Data [16]float32
}
