package math

import (
	m "math"

	"golang.org/x/exp/constraints"
)

const Pi float32 = m.Pi

func DegToRad(degrees float32) float32 {
	return degrees * (Pi / 180.0)
}

func RadToDeg(radians float32) float32 {
	return radians * (180.0 / Pi)
}

// Clamp returns f limited to the range [low, high].
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

func sqrt(x float32) float32 { return float32(m.Sqrt(float64(x))) }
func sin(x float32) float32  { return float32(m.Sin(float64(x))) }
func cos(x float32) float32  { return float32(m.Cos(float64(x))) }
func tan(x float32) float32  { return float32(m.Tan(float64(x))) }

func NewVec2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

func NewVec3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func NewVec3Zero() Vec3 {
	return Vec3{}
}

func NewVec3Up() Vec3 {
	return Vec3{Y: 1.0}
}

func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

func (v Vec3) MulScalar(scalar float32) Vec3 {
	return Vec3{X: v.X * scalar, Y: v.Y * scalar, Z: v.Z * scalar}
}

func (v Vec3) Negated() Vec3 {
	return Vec3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

func (v Vec3) LengthSquared() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func (v Vec3) Length() float32 {
	return sqrt(v.LengthSquared())
}

// Normalized returns a unit-length copy. The zero vector is returned
// unchanged rather than dividing by zero.
func (v Vec3) Normalized() Vec3 {
	length := v.Length()
	if length == 0 {
		return v
	}
	return v.MulScalar(1.0 / length)
}

func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

func (v Vec3) Compare(other Vec3, tolerance float32) bool {
	if f := v.X - other.X; f > tolerance || f < -tolerance {
		return false
	}
	if f := v.Y - other.Y; f > tolerance || f < -tolerance {
		return false
	}
	if f := v.Z - other.Z; f > tolerance || f < -tolerance {
		return false
	}
	return true
}

func (v Vec3) ToVec4(w float32) Vec4 {
	return Vec4{X: v.X, Y: v.Y, Z: v.Z, W: w}
}

func NewVec4(x, y, z, w float32) Vec4 {
	return Vec4{X: x, Y: y, Z: z, W: w}
}

func NewMat4Identity() Mat4 {
	out := Mat4{}
	out.Data[0] = 1.0
	out.Data[5] = 1.0
	out.Data[10] = 1.0
	out.Data[15] = 1.0
	return out
}

// Mul returns the matrix product mt * other, so a point transformed by
// the result sees other applied first.
func (mt Mat4) Mul(other Mat4) Mat4 {
	out := Mat4{}
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			sum := float32(0)
			for i := 0; i < 4; i++ {
				sum += mt.Data[i*4+r] * other.Data[c*4+i]
			}
			out.Data[c*4+r] = sum
		}
	}
	return out
}

// MulVec4 applies the matrix to a column vector.
func (mt Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		X: mt.Data[0]*v.X + mt.Data[4]*v.Y + mt.Data[8]*v.Z + mt.Data[12]*v.W,
		Y: mt.Data[1]*v.X + mt.Data[5]*v.Y + mt.Data[9]*v.Z + mt.Data[13]*v.W,
		Z: mt.Data[2]*v.X + mt.Data[6]*v.Y + mt.Data[10]*v.Z + mt.Data[14]*v.W,
		W: mt.Data[3]*v.X + mt.Data[7]*v.Y + mt.Data[11]*v.Z + mt.Data[15]*v.W,
	}
}

// NewMat4Perspective builds a right-handed perspective projection mapping
// depth to [0,1] after the perspective divide. Callers targeting Vulkan
// flip Y by negating Data[5].
func NewMat4Perspective(fovRadians, aspectRatio, nearClip, farClip float32) Mat4 {
	halfTanFov := tan(fovRadians * 0.5)
	out := Mat4{}
	out.Data[0] = 1.0 / (aspectRatio * halfTanFov)
	out.Data[5] = 1.0 / halfTanFov
	out.Data[10] = farClip / (nearClip - farClip)
	out.Data[11] = -1.0
	out.Data[14] = (nearClip * farClip) / (nearClip - farClip)
	return out
}

// NewMat4LookAt builds a view matrix looking from position toward target.
func NewMat4LookAt(position, target, up Vec3) Mat4 {
	zAxis := target.Sub(position).Normalized()
	xAxis := zAxis.Cross(up).Normalized()
	yAxis := xAxis.Cross(zAxis)

	out := NewMat4Identity()
	out.Data[0] = xAxis.X
	out.Data[4] = xAxis.Y
	out.Data[8] = xAxis.Z
	out.Data[1] = yAxis.X
	out.Data[5] = yAxis.Y
	out.Data[9] = yAxis.Z
	out.Data[2] = -zAxis.X
	out.Data[6] = -zAxis.Y
	out.Data[10] = -zAxis.Z
	out.Data[12] = -xAxis.Dot(position)
	out.Data[13] = -yAxis.Dot(position)
	out.Data[14] = zAxis.Dot(position)
	return out
}

func NewMat4Translation(position Vec3) Mat4 {
	out := NewMat4Identity()
	out.Data[12] = position.X
	out.Data[13] = position.Y
	out.Data[14] = position.Z
	return out
}

func NewMat4EulerX(angleRadians float32) Mat4 {
	out := NewMat4Identity()
	c := cos(angleRadians)
	s := sin(angleRadians)
	out.Data[5] = c
	out.Data[6] = s
	out.Data[9] = -s
	out.Data[10] = c
	return out
}

func NewMat4EulerY(angleRadians float32) Mat4 {
	out := NewMat4Identity()
	c := cos(angleRadians)
	s := sin(angleRadians)
	out.Data[0] = c
	out.Data[2] = -s
	out.Data[8] = s
	out.Data[10] = c
	return out
}

func NewMat4EulerZ(angleRadians float32) Mat4 {
	out := NewMat4Identity()
	c := cos(angleRadians)
	s := sin(angleRadians)
	out.Data[0] = c
	out.Data[1] = s
	out.Data[4] = -s
	out.Data[5] = c
	return out
}
