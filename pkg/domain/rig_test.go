// 指示: miu200521358
package domain

import (
	"testing"
)

func TestMotionKeyRoundTrip(t *testing.T) {
	for _, joint := range AllLogicalJoints() {
		for _, axis := range AllAxes() {
			key := MotionKey(joint, axis)
			parsedJoint, parsedAxis, ok := ParseMotionKey(key)
			if !ok {
				t.Fatalf("parse failed: key=%s", key)
			}
			if parsedJoint != joint || parsedAxis != axis {
				t.Fatalf("roundtrip mismatch: key=%s joint=%v axis=%v", key, parsedJoint, parsedAxis)
			}
		}
	}
}

func TestParseMotionKeyRejectsUnknown(t *testing.T) {
	for _, key := range []string{"", "X", "headW", "headx", "unknownJointX", "head"} {
		if _, _, ok := ParseMotionKey(key); ok {
			t.Fatalf("expected parse failure: key=%s", key)
		}
	}
}

func TestOffsetSignTable(t *testing.T) {
	tests := []struct {
		joint LogicalJoint
		axis  Axis
		sign  float64
	}{
		{JointHead, AxisX, 1},
		{JointRightShoulder, AxisX, 1},
		{JointLeftShoulder, AxisY, 1},
		{JointRightShoulder, AxisY, -1},
		{JointRightKnee, AxisY, -1},
		// 非右側のZは記述規約ミラーで反転
		{JointHead, AxisZ, -1},
		{JointUpperBody, AxisZ, -1},
		{JointRightKnee, AxisZ, 1},
		// 肩系・大腿足首系のZは構造反転が追加で掛かる
		{JointLeftShoulder, AxisZ, 1},
		{JointRightShoulder, AxisZ, -1},
		{JointLeftHip, AxisZ, 1},
		{JointRightFoot, AxisZ, -1},
		{JointLeftElbow, AxisZ, -1},
		{JointRightElbow, AxisZ, 1},
	}
	for _, tt := range tests {
		if got := OffsetSign(tt.joint, tt.axis); got != tt.sign {
			t.Fatalf("sign mismatch: joint=%s axis=%s got=%f want=%f",
				tt.joint, tt.axis, got, tt.sign)
		}
	}
}

func TestClampJointDegrees(t *testing.T) {
	if got := ClampJointDegrees(JointRightKnee, AxisX, -30); got != 0 {
		t.Fatalf("knee lower clamp mismatch: %f", got)
	}
	if got := ClampJointDegrees(JointRightKnee, AxisX, 200); got != 150 {
		t.Fatalf("knee upper clamp mismatch: %f", got)
	}
	if got := ClampJointDegrees(JointHead, AxisY, 30); got != 30 {
		t.Fatalf("in-range value changed: %f", got)
	}
}

func TestMirroredJoints(t *testing.T) {
	if JointLeftKnee.Mirrored() != JointRightKnee {
		t.Fatalf("left knee mirror mismatch")
	}
	if JointRightShoulder.Mirrored() != JointLeftShoulder {
		t.Fatalf("right shoulder mirror mismatch")
	}
	if JointHead.Mirrored() != JointHead {
		t.Fatalf("center joint must stay unchanged")
	}
}

func TestStandingOffsetDegreesSkipsBip(t *testing.T) {
	if got := StandingOffsetDegrees(RigFamilyMixamo, JointLeftShoulder, AxisZ); got != 55 {
		t.Fatalf("mixamo shoulder offset mismatch: %f", got)
	}
	if got := StandingOffsetDegrees(RigFamilyMixamo, JointLeftElbow, AxisZ); got != 15 {
		t.Fatalf("mixamo elbow offset mismatch: %f", got)
	}
	if got := StandingOffsetDegrees(RigFamilyBip, JointLeftShoulder, AxisZ); got != 0 {
		t.Fatalf("bip must not have standing offsets: %f", got)
	}
	if got := StandingOffsetDegrees(RigFamilyMixamo, JointHead, AxisZ); got != 0 {
		t.Fatalf("head must not have standing offset: %f", got)
	}
}

func TestForcedAbsentJoints(t *testing.T) {
	if !IsForcedAbsentJoint(RigFamilyBip, JointHips) {
		t.Fatalf("bip hips must be forced absent")
	}
	if IsForcedAbsentJoint(RigFamilyMixamo, JointHips) {
		t.Fatalf("mixamo hips must be resolvable")
	}
	if _, exists := RigJointBoneName(RigFamilyBip, JointHips); exists {
		t.Fatalf("bip table must not contain hips")
	}
}

func TestMatchRigFamilyName(t *testing.T) {
	if !MatchRigFamilyName(RigFamilyMixamo, "mixamorig:Hips") {
		t.Fatalf("mixamo marker not matched")
	}
	if !MatchRigFamilyName(RigFamilyBip, "Bip01 Pelvis") {
		t.Fatalf("bip marker not matched")
	}
	if MatchRigFamilyName(RigFamilyMixamo, "Bip01 Pelvis") {
		t.Fatalf("family markers must not cross-match")
	}
	if MatchRigFamilyName(RigFamilyUnknown, "anything") {
		t.Fatalf("unknown family must never match")
	}
}

func TestBindCorrectionDegrees(t *testing.T) {
	degrees, exists := BindCorrectionDegrees(RigFamilyBip, JointRightKnee)
	if !exists {
		t.Fatalf("bip right knee correction missing")
	}
	if degrees.Z != 45 {
		t.Fatalf("correction degrees mismatch: %f", degrees.Z)
	}
	if _, exists := BindCorrectionDegrees(RigFamilyMixamo, JointRightKnee); exists {
		t.Fatalf("mixamo must not have bind corrections")
	}
}
