// 指示: miu200521358
package usecase

import (
	"testing"

	"github.com/miu200521358/mu_motion_blend/pkg/domain"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestDetectRigFamily(t *testing.T) {
	if got := DetectRigFamily(newMixamoSkeleton(nil)); got != domain.RigFamilyMixamo {
		t.Fatalf("mixamo detection mismatch: %s", got)
	}
	if got := DetectRigFamily(newBipSkeleton(nil)); got != domain.RigFamilyBip {
		t.Fatalf("bip detection mismatch: %s", got)
	}

	custom := domain.NewSkeleton("custom", []*domain.Bone{
		{Name: "root", ParentIndex: -1},
		{Name: "chest", ParentIndex: 0},
	})
	if got := DetectRigFamily(custom); got != domain.RigFamilyUnknown {
		t.Fatalf("unknown detection mismatch: %s", got)
	}
	if got := DetectRigFamily(nil); got != domain.RigFamilyUnknown {
		t.Fatalf("nil skeleton must be unknown: %s", got)
	}
}

func TestDetectRigFamilyIsDeterministic(t *testing.T) {
	skeleton := newMixamoSkeleton(nil)
	first := DetectRigFamily(skeleton)
	for i := 0; i < 10; i++ {
		if got := DetectRigFamily(skeleton); got != first {
			t.Fatalf("detection changed across calls: %s != %s", got, first)
		}
	}
}

func TestResolveBonesMixamoFull(t *testing.T) {
	skeleton := newMixamoSkeleton(nil)
	table := ResolveBones(skeleton, domain.RigFamilyMixamo)
	if table == nil {
		t.Fatalf("resolution failed")
	}
	if table.ResolvedCount() != 15 {
		t.Fatalf("resolved count mismatch: %d", table.ResolvedCount())
	}
	bone, exists := table.Bone(domain.JointHead)
	if !exists || bone.Name != "mixamorig:Head" {
		t.Fatalf("head resolution mismatch")
	}
}

func TestResolveBonesBipSkipsHips(t *testing.T) {
	skeleton := newBipSkeleton(nil)
	table := ResolveBones(skeleton, domain.RigFamilyBip)
	if table == nil {
		t.Fatalf("resolution failed")
	}
	if _, exists := table.Bone(domain.JointHips); exists {
		t.Fatalf("bip hips must stay unresolved")
	}
	if table.ResolvedCount() != 14 {
		t.Fatalf("resolved count mismatch: %d", table.ResolvedCount())
	}
}

func TestResolveBonesSubstringFallback(t *testing.T) {
	// 正規名に一致しない独自命名でも部分一致で拾える
	skeleton := domain.NewSkeleton("custom", []*domain.Bone{
		{Name: "Armature_Head_end", ParentIndex: -1, Position: r3.Vec{Y: 1.5}},
		{Name: "MySpineBone", ParentIndex: 0},
	})
	table := ResolveBones(skeleton, domain.RigFamilyUnknown)
	if table == nil {
		t.Fatalf("partial resolution must succeed")
	}
	bone, exists := table.Bone(domain.JointHead)
	if !exists || bone.Name != "Armature_Head_end" {
		t.Fatalf("case-insensitive substring fallback failed")
	}
	if _, exists := table.Bone(domain.JointLeftKnee); exists {
		t.Fatalf("absent joint must stay unresolved")
	}
}

func TestResolveBonesUnusableSkeleton(t *testing.T) {
	skeleton := domain.NewSkeleton("empty-match", []*domain.Bone{
		{Name: "prop_01", ParentIndex: -1},
		{Name: "prop_02", ParentIndex: 0},
	})
	if table := ResolveBones(skeleton, domain.RigFamilyUnknown); table != nil {
		t.Fatalf("fully unresolved skeleton must give nil table")
	}
	if table := ResolveBones(nil, domain.RigFamilyUnknown); table != nil {
		t.Fatalf("nil skeleton must give nil table")
	}
}
