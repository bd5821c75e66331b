// 指示: miu200521358
package usecase

import (
	"math"
	"testing"

	"github.com/miu200521358/mlib_go/pkg/domain/mmath"
	"github.com/miu200521358/mu_motion_blend/pkg/domain"
	"gonum.org/v1/gonum/spatial/r3"
)

// quatNear は2回転が同一姿勢か判定する(q と -q は同一姿勢として扱う)。
func quatNear(t *testing.T, got, want *mmath.MQuaternion, label string) {
	t.Helper()
	dot := got.X*want.X + got.Y*want.Y + got.Z*want.Z + got.W*want.W
	if math.Abs(dot) < 1-1e-6 {
		t.Fatalf("%s: rotation mismatch: got=(%f,%f,%f,%f) want=(%f,%f,%f,%f)",
			label, got.X, got.Y, got.Z, got.W, want.X, want.Y, want.Z, want.W)
	}
}

// newMixamoSkeleton はMixamo系命名の試験用スケルトンを構築する。
// binds でボーン別のバインド回転を上書きできる(既定は単位回転)。
func newMixamoSkeleton(binds map[string]*mmath.MQuaternion) *domain.Skeleton {
	type boneEntry struct {
		name   string
		parent int
		y      float64
	}
	entries := []boneEntry{
		{"mixamorig:Hips", -1, 0.9},
		{"mixamorig:Spine", 0, 1.0},
		{"mixamorig:Spine1", 1, 1.1},
		{"mixamorig:Spine2", 2, 1.2},
		{"mixamorig:Head", 3, 1.5},
		{"mixamorig:LeftArm", 3, 1.35},
		{"mixamorig:RightArm", 3, 1.35},
		{"mixamorig:LeftForeArm", 5, 1.1},
		{"mixamorig:RightForeArm", 6, 1.1},
		{"mixamorig:LeftUpLeg", 0, 0.8},
		{"mixamorig:RightUpLeg", 0, 0.8},
		{"mixamorig:LeftLeg", 9, 0.45},
		{"mixamorig:RightLeg", 10, 0.45},
		{"mixamorig:LeftFoot", 11, 0.05},
		{"mixamorig:RightFoot", 12, 0.05},
	}

	bones := make([]*domain.Bone, 0, len(entries))
	for _, entry := range entries {
		bone := &domain.Bone{
			Name:        entry.name,
			ParentIndex: entry.parent,
			Position:    r3.Vec{Y: entry.y},
		}
		if binds != nil {
			if bind, exists := binds[entry.name]; exists {
				bone.BindRotation = bind
			}
		}
		bones = append(bones, bone)
	}
	return domain.NewSkeleton("test_mixamo", bones)
}

// newBipSkeleton はBip01系命名の試験用スケルトンを構築する。
func newBipSkeleton(binds map[string]*mmath.MQuaternion) *domain.Skeleton {
	type boneEntry struct {
		name   string
		parent int
	}
	entries := []boneEntry{
		{"Bip01 Pelvis", -1},
		{"Bip01 Spine", 0},
		{"Bip01 Spine2", 1},
		{"Bip01 Head", 2},
		{"Bip01 L UpperArm", 2},
		{"Bip01 R UpperArm", 2},
		{"Bip01 L Forearm", 4},
		{"Bip01 R Forearm", 5},
		{"Bip01 L Thigh", 0},
		{"Bip01 R Thigh", 0},
		{"Bip01 L Calf", 8},
		{"Bip01 R Calf", 9},
		{"Bip01 L Foot", 10},
		{"Bip01 R Foot", 11},
	}

	bones := make([]*domain.Bone, 0, len(entries))
	for _, entry := range entries {
		bone := &domain.Bone{Name: entry.name, ParentIndex: entry.parent}
		if binds != nil {
			if bind, exists := binds[entry.name]; exists {
				bone.BindRotation = bind
			}
		}
		bones = append(bones, bone)
	}
	return domain.NewSkeleton("test_bip", bones)
}
