package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const tolerance = 1e-5

func vec4Near(t *testing.T, want, got Vec4) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tolerance)
	assert.InDelta(t, want.Y, got.Y, tolerance)
	assert.InDelta(t, want.Z, got.Z, tolerance)
	assert.InDelta(t, want.W, got.W, tolerance)
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name             string
		value, low, high uint32
		want             uint32
	}{
		{"below range", 50, 100, 4000, 100},
		{"above range", 6000, 100, 4000, 4000},
		{"inside range", 1280, 100, 4000, 1280},
		{"at low bound", 100, 100, 4000, 100},
		{"at high bound", 4000, 100, 4000, 4000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clamp(tt.value, tt.low, tt.high))
		})
	}
}

func TestVec3Cross(t *testing.T) {
	n := NewVec3(1, 0, 0).Cross(NewVec3(0, 1, 0))
	assert.True(t, n.Compare(NewVec3(0, 0, 1), tolerance))

	// Anti-commutative.
	r := NewVec3(0, 1, 0).Cross(NewVec3(1, 0, 0))
	assert.True(t, r.Compare(NewVec3(0, 0, -1), tolerance))
}

func TestVec3Normalized(t *testing.T) {
	v := NewVec3(3, 0, 4).Normalized()
	assert.InDelta(t, 1.0, float64(v.Length()), tolerance)
	assert.True(t, v.Compare(NewVec3(0.6, 0, 0.8), tolerance))

	// The zero vector stays zero instead of producing NaNs.
	z := NewVec3Zero().Normalized()
	assert.True(t, z.Compare(NewVec3Zero(), tolerance))
}

func TestMat4MulIdentity(t *testing.T) {
	id := NewMat4Identity()
	trans := NewMat4Translation(NewVec3(1, 2, 3))
	assert.Equal(t, trans, id.Mul(trans))
	assert.Equal(t, trans, trans.Mul(id))
}

func TestMat4MulAppliesRightFirst(t *testing.T) {
	// Rotate 90 degrees around Z after translating by +X: the translated
	// point (1,0,0) must end up on the +Y axis.
	rz := NewMat4EulerZ(DegToRad(90))
	tx := NewMat4Translation(NewVec3(1, 0, 0))
	m := rz.Mul(tx)

	got := m.MulVec4(NewVec4(0, 0, 0, 1))
	vec4Near(t, NewVec4(0, 1, 0, 1), got)
}

func TestMat4Translation(t *testing.T) {
	m := NewMat4Translation(NewVec3(1, -2, 3))
	got := m.MulVec4(NewVec4(5, 5, 5, 1))
	vec4Near(t, NewVec4(6, 3, 8, 1), got)
}

func TestMat4EulerRotations(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		in   Vec4
		want Vec4
	}{
		{"Y by 90 sends +Z to +X", NewMat4EulerY(DegToRad(90)), NewVec4(0, 0, 1, 0), NewVec4(1, 0, 0, 0)},
		{"Z by 90 sends +X to +Y", NewMat4EulerZ(DegToRad(90)), NewVec4(1, 0, 0, 0), NewVec4(0, 1, 0, 0)},
		{"X by 90 sends +Y to +Z", NewMat4EulerX(DegToRad(90)), NewVec4(0, 1, 0, 0), NewVec4(0, 0, 1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vec4Near(t, tt.want, tt.m.MulVec4(tt.in))
		})
	}
}

func TestMat4Perspective(t *testing.T) {
	proj := NewMat4Perspective(DegToRad(45), 16.0/9.0, 0.1, 100.0)

	// Perspective divide carried in the W row.
	assert.InDelta(t, -1.0, float64(proj.Data[11]), tolerance)

	// A point on the near plane maps to depth 0, far plane to depth 1.
	near := proj.MulVec4(NewVec4(0, 0, -0.1, 1))
	assert.InDelta(t, 0.0, float64(near.Z/near.W), tolerance)
	far := proj.MulVec4(NewVec4(0, 0, -100.0, 1))
	assert.InDelta(t, 1.0, float64(far.Z/far.W), 1e-3)
}

func TestMat4LookAt(t *testing.T) {
	// Looking from +Z toward the origin: the target lands on the -Z axis
	// in view space, two units away.
	view := NewMat4LookAt(NewVec3(0, 0, 2), NewVec3Zero(), NewVec3Up())
	got := view.MulVec4(NewVec4(0, 0, 0, 1))
	vec4Near(t, NewVec4(0, 0, -2, 1), got)
}
