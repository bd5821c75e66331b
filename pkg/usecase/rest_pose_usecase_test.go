// 指示: miu200521358
package usecase

import (
	"testing"

	"github.com/miu200521358/mlib_go/pkg/domain/mmath"
	"github.com/miu200521358/mu_motion_blend/pkg/domain"
)

func TestCaptureRestPosesCopiesBindRotations(t *testing.T) {
	bind := mmath.NewMQuaternionFromDegrees(10, 0, 0)
	skeleton := newMixamoSkeleton(map[string]*mmath.MQuaternion{
		"mixamorig:Head": bind,
	})

	cache := CaptureRestPoses(skeleton)
	if cache == nil {
		t.Fatalf("capture failed")
	}
	rest, exists := cache.Rest("mixamorig:Head")
	if !exists {
		t.Fatalf("head rest missing")
	}
	quatNear(t, rest, bind, "captured rest")

	// キャッシュはバインド回転の複製を持ち、ライブ回転の書き込みに影響されない
	head, _ := skeleton.Bone("mixamorig:Head")
	head.Rotation = mmath.NewMQuaternionFromDegrees(90, 0, 0)
	rest2, _ := cache.Rest("mixamorig:Head")
	quatNear(t, rest2, bind, "rest after live pose write")
}

func TestCaptureRestPosesIsIdempotent(t *testing.T) {
	skeleton := newMixamoSkeleton(map[string]*mmath.MQuaternion{
		"mixamorig:LeftArm": mmath.NewMQuaternionFromDegrees(0, 0, 55),
	})

	first := CaptureRestPoses(skeleton)
	second := CaptureRestPoses(skeleton)
	if first == nil || second == nil {
		t.Fatalf("capture failed")
	}
	if first.Len() != second.Len() {
		t.Fatalf("capture count changed: %d != %d", first.Len(), second.Len())
	}
	for _, name := range first.BoneNames() {
		firstRest, _ := first.Rest(name)
		secondRest, _ := second.Rest(name)
		quatNear(t, firstRest, secondRest, "repeat capture "+name)
	}
}

func TestCaptureRestPosesAppliesBipKneeCorrection(t *testing.T) {
	bind := mmath.NewMQuaternionFromDegrees(0, 0, -45)
	skeleton := newBipSkeleton(map[string]*mmath.MQuaternion{
		"Bip01 R Calf": bind,
	})

	cache := CaptureRestPoses(skeleton)
	if cache == nil {
		t.Fatalf("capture failed")
	}
	rest, exists := cache.Rest("Bip01 R Calf")
	if !exists {
		t.Fatalf("right calf rest missing")
	}

	// Z+45度の補正が前掛けされ、-45度のバインド欠陥が打ち消される
	correction := mmath.NewMQuaternionFromDegrees(0, 0, 45)
	expected := correction.Muled(bind).Normalized()
	quatNear(t, rest, expected, "corrected rest")
	quatNear(t, rest, mmath.NewMQuaternionByValues(0, 0, 0, 1), "correction cancels defect")

	// 左ひざには補正が掛からない
	leftRest, exists := cache.Rest("Bip01 L Calf")
	if !exists {
		t.Fatalf("left calf rest missing")
	}
	quatNear(t, leftRest, mmath.NewMQuaternionByValues(0, 0, 0, 1), "left calf untouched")
}

func TestCaptureRestPosesUnusableSkeleton(t *testing.T) {
	skeleton := domain.NewSkeleton("props", []*domain.Bone{
		{Name: "crate", ParentIndex: -1},
	})
	if cache := CaptureRestPoses(skeleton); cache != nil {
		t.Fatalf("unusable skeleton must give nil cache")
	}
}
