// 指示: miu200521358
package domain

import (
	"strings"
)

// RigFamily はスケルトンの命名規約の分類を表す。
type RigFamily int

const (
	// RigFamilyUnknown は未知の命名規約を表す。
	RigFamilyUnknown RigFamily = iota
	// RigFamilyMixamo は mixamorig 系の命名規約を表す。
	RigFamilyMixamo
	// RigFamilyBip は Bip01 系の命名規約を表す。
	RigFamilyBip
)

// String はリグ分類の表示名を返す。
func (f RigFamily) String() string {
	switch f {
	case RigFamilyMixamo:
		return "mixamo"
	case RigFamilyBip:
		return "bip"
	default:
		return "unknown"
	}
}

// rigFamilyMarkers はリグ分類判定用のボーン名部分文字列を保持する。
var rigFamilyMarkers = map[RigFamily]string{
	RigFamilyMixamo: "mixamorig",
	RigFamilyBip:    "Bip01",
}

// LogicalJoint はリグ非依存の解剖学的関節名を表す。
type LogicalJoint int

const (
	// JointHips は腰ルートを表す。
	JointHips LogicalJoint = iota
	// JointLowerBody は下半身を表す。
	JointLowerBody
	// JointSpine は背骨を表す。
	JointSpine
	// JointUpperBody は上半身を表す。
	JointUpperBody
	// JointHead は頭を表す。
	JointHead
	// JointLeftShoulder は左肩(上腕)を表す。
	JointLeftShoulder
	// JointRightShoulder は右肩(上腕)を表す。
	JointRightShoulder
	// JointLeftElbow は左ひじを表す。
	JointLeftElbow
	// JointRightElbow は右ひじを表す。
	JointRightElbow
	// JointLeftHip は左足(大腿)を表す。
	JointLeftHip
	// JointRightHip は右足(大腿)を表す。
	JointRightHip
	// JointLeftKnee は左ひざを表す。
	JointLeftKnee
	// JointRightKnee は右ひざを表す。
	JointRightKnee
	// JointLeftFoot は左足首を表す。
	JointLeftFoot
	// JointRightFoot は右足首を表す。
	JointRightFoot

	jointCount int = iota
)

// jointNames はモーション定義キーで用いる関節名を保持する。
var jointNames = [jointCount]string{
	JointHips:          "hips",
	JointLowerBody:     "lowerBody",
	JointSpine:         "spine",
	JointUpperBody:     "upperBody",
	JointHead:          "head",
	JointLeftShoulder:  "leftShoulder",
	JointRightShoulder: "rightShoulder",
	JointLeftElbow:     "leftElbow",
	JointRightElbow:    "rightElbow",
	JointLeftHip:       "leftHip",
	JointRightHip:      "rightHip",
	JointLeftKnee:      "leftKnee",
	JointRightKnee:     "rightKnee",
	JointLeftFoot:      "leftFoot",
	JointRightFoot:     "rightFoot",
}

// String はモーション定義キーで用いる関節名を返す。
func (j LogicalJoint) String() string {
	if j < 0 || int(j) >= jointCount {
		return ""
	}
	return jointNames[j]
}

// AllLogicalJoints は全関節を定義順で返す。
func AllLogicalJoints() []LogicalJoint {
	joints := make([]LogicalJoint, 0, jointCount)
	for j := LogicalJoint(0); int(j) < jointCount; j++ {
		joints = append(joints, j)
	}
	return joints
}

// IsRight は右側の関節か判定する。
func (j LogicalJoint) IsRight() bool {
	switch j {
	case JointRightShoulder, JointRightElbow, JointRightHip, JointRightKnee, JointRightFoot:
		return true
	default:
		return false
	}
}

// Mirrored は左右を入れ替えた関節を返す。中央の関節はそのまま返す。
func (j LogicalJoint) Mirrored() LogicalJoint {
	switch j {
	case JointLeftShoulder:
		return JointRightShoulder
	case JointRightShoulder:
		return JointLeftShoulder
	case JointLeftElbow:
		return JointRightElbow
	case JointRightElbow:
		return JointLeftElbow
	case JointLeftHip:
		return JointRightHip
	case JointRightHip:
		return JointLeftHip
	case JointLeftKnee:
		return JointRightKnee
	case JointRightKnee:
		return JointLeftKnee
	case JointLeftFoot:
		return JointRightFoot
	case JointRightFoot:
		return JointLeftFoot
	default:
		return j
	}
}

// isShoulderCategory は肩系の関節か判定する。
func (j LogicalJoint) isShoulderCategory() bool {
	return j == JointLeftShoulder || j == JointRightShoulder
}

// isHipFootCategory は大腿・足首系の関節か判定する。
func (j LogicalJoint) isHipFootCategory() bool {
	switch j {
	case JointLeftHip, JointRightHip, JointLeftFoot, JointRightFoot:
		return true
	default:
		return false
	}
}

// Axis はボーンローカル回転軸を表す。
type Axis int

const (
	// AxisX はX軸(ピッチ)を表す。
	AxisX Axis = iota
	// AxisY はY軸(ヨー)を表す。
	AxisY
	// AxisZ はZ軸(ロール)を表す。
	AxisZ

	axisCount int = iota
)

// String は軸の表記("X"/"Y"/"Z")を返す。
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return ""
	}
}

// AllAxes は全軸を返す。
func AllAxes() []Axis {
	return []Axis{AxisX, AxisY, AxisZ}
}

// MotionKey は "<関節名><軸>" 形式のモーション定義キーを返す。
func MotionKey(joint LogicalJoint, axis Axis) string {
	return joint.String() + axis.String()
}

// ParseMotionKey はモーション定義キーを関節と軸へ分解する。
func ParseMotionKey(key string) (LogicalJoint, Axis, bool) {
	if len(key) < 2 {
		return 0, 0, false
	}
	var axis Axis
	switch key[len(key)-1] {
	case 'X':
		axis = AxisX
	case 'Y':
		axis = AxisY
	case 'Z':
		axis = AxisZ
	default:
		return 0, 0, false
	}
	name := key[:len(key)-1]
	for _, joint := range AllLogicalJoints() {
		if joint.String() == name {
			return joint, axis, true
		}
	}
	return 0, 0, false
}

// AxisDegrees は軸別の角度(度)を保持する。
type AxisDegrees struct {
	X float64
	Y float64
	Z float64
}

// Get は指定軸の角度を返す。
func (d AxisDegrees) Get(axis Axis) float64 {
	switch axis {
	case AxisX:
		return d.X
	case AxisY:
		return d.Y
	case AxisZ:
		return d.Z
	default:
		return 0
	}
}

// AxisRange は軸別の角度可動域(度)を保持する。
type AxisRange struct {
	Min AxisDegrees
	Max AxisDegrees
}

// rigJointBoneNames はリグ分類ごとの関節→ボーン名対応表を保持する。
var rigJointBoneNames = map[RigFamily]map[LogicalJoint]string{
	RigFamilyMixamo: {
		JointHips:          "mixamorig:Hips",
		JointLowerBody:     "mixamorig:Spine",
		JointSpine:         "mixamorig:Spine1",
		JointUpperBody:     "mixamorig:Spine2",
		JointHead:          "mixamorig:Head",
		JointLeftShoulder:  "mixamorig:LeftArm",
		JointRightShoulder: "mixamorig:RightArm",
		JointLeftElbow:     "mixamorig:LeftForeArm",
		JointRightElbow:    "mixamorig:RightForeArm",
		JointLeftHip:       "mixamorig:LeftUpLeg",
		JointRightHip:      "mixamorig:RightUpLeg",
		JointLeftKnee:      "mixamorig:LeftLeg",
		JointRightKnee:     "mixamorig:RightLeg",
		JointLeftFoot:      "mixamorig:LeftFoot",
		JointRightFoot:     "mixamorig:RightFoot",
	},
	RigFamilyBip: {
		// Bip01 系には hips 相当の単独ボーンが存在しないため対応表に含めない。
		JointLowerBody:     "Bip01 Pelvis",
		JointSpine:         "Bip01 Spine",
		JointUpperBody:     "Bip01 Spine2",
		JointHead:          "Bip01 Head",
		JointLeftShoulder:  "Bip01 L UpperArm",
		JointRightShoulder: "Bip01 R UpperArm",
		JointLeftElbow:     "Bip01 L Forearm",
		JointRightElbow:    "Bip01 R Forearm",
		JointLeftHip:       "Bip01 L Thigh",
		JointRightHip:      "Bip01 R Thigh",
		JointLeftKnee:      "Bip01 L Calf",
		JointRightKnee:     "Bip01 R Calf",
		JointLeftFoot:      "Bip01 L Foot",
		JointRightFoot:     "Bip01 R Foot",
	},
}

// rigForcedAbsentJoints はリグ分類ごとに探索自体を禁止する関節を保持する。
// 構造的に存在しない関節を部分一致探索で誤解決しないための表。
var rigForcedAbsentJoints = map[RigFamily]map[LogicalJoint]struct{}{
	RigFamilyBip: {
		JointHips: {},
	},
}

// standingOffsets はバインドポーズから直立姿勢への基礎オフセット(度)を保持する。
// RigFamilyBip はバインドポーズが直立のため適用しない。
var standingOffsets = map[LogicalJoint]AxisDegrees{
	JointLeftShoulder:  {Z: 55},
	JointRightShoulder: {Z: 55},
	JointLeftElbow:     {Z: 15},
	JointRightElbow:    {Z: 15},
}

// rigBindCorrections はリグ分類ごとのバインドポーズ欠陥補正(度)を保持する。
// 補正はレストポーズ取得時に一度だけ前掛けされる。
var rigBindCorrections = map[RigFamily]map[LogicalJoint]AxisDegrees{
	RigFamilyBip: {
		JointRightKnee: {Z: 45},
	},
}

// jointLimits は関節・軸別の可動域(度)を保持する。
// 可動域は符号・ミラー適用後のボーンローカル角度に対する制限を表す。
var jointLimits = map[LogicalJoint]AxisRange{
	JointHips:          {Min: AxisDegrees{X: -60, Y: -90, Z: -45}, Max: AxisDegrees{X: 60, Y: 90, Z: 45}},
	JointLowerBody:     {Min: AxisDegrees{X: -45, Y: -60, Z: -35}, Max: AxisDegrees{X: 45, Y: 60, Z: 35}},
	JointSpine:         {Min: AxisDegrees{X: -45, Y: -60, Z: -35}, Max: AxisDegrees{X: 45, Y: 60, Z: 35}},
	JointUpperBody:     {Min: AxisDegrees{X: -45, Y: -70, Z: -35}, Max: AxisDegrees{X: 45, Y: 70, Z: 35}},
	JointHead:          {Min: AxisDegrees{X: -60, Y: -80, Z: -45}, Max: AxisDegrees{X: 60, Y: 80, Z: 45}},
	JointLeftShoulder:  {Min: AxisDegrees{X: -90, Y: -90, Z: -175}, Max: AxisDegrees{X: 180, Y: 90, Z: 175}},
	JointRightShoulder: {Min: AxisDegrees{X: -90, Y: -90, Z: -175}, Max: AxisDegrees{X: 180, Y: 90, Z: 175}},
	JointLeftElbow:     {Min: AxisDegrees{X: -150, Y: -90, Z: -150}, Max: AxisDegrees{X: 150, Y: 90, Z: 150}},
	JointRightElbow:    {Min: AxisDegrees{X: -150, Y: -90, Z: -150}, Max: AxisDegrees{X: 150, Y: 90, Z: 150}},
	JointLeftHip:       {Min: AxisDegrees{X: -120, Y: -45, Z: -60}, Max: AxisDegrees{X: 45, Y: 45, Z: 60}},
	JointRightHip:      {Min: AxisDegrees{X: -120, Y: -45, Z: -60}, Max: AxisDegrees{X: 45, Y: 45, Z: 60}},
	JointLeftKnee:      {Min: AxisDegrees{X: 0, Y: -10, Z: -10}, Max: AxisDegrees{X: 150, Y: 10, Z: 10}},
	JointRightKnee:     {Min: AxisDegrees{X: 0, Y: -10, Z: -10}, Max: AxisDegrees{X: 150, Y: 10, Z: 10}},
	JointLeftFoot:      {Min: AxisDegrees{X: -45, Y: -30, Z: -30}, Max: AxisDegrees{X: 45, Y: 30, Z: 30}},
	JointRightFoot:     {Min: AxisDegrees{X: -45, Y: -30, Z: -30}, Max: AxisDegrees{X: 45, Y: 30, Z: 30}},
}

// symmetryPairEntry は左右対称補正の対象ペアを表す。
type symmetryPairEntry struct {
	Right LogicalJoint
	Left  LogicalJoint
}

// symmetryPairs は対称補正対象(大腿・ひざ・足首・上腕・前腕)を保持する。
var symmetryPairs = []symmetryPairEntry{
	{Right: JointRightHip, Left: JointLeftHip},
	{Right: JointRightKnee, Left: JointLeftKnee},
	{Right: JointRightFoot, Left: JointLeftFoot},
	{Right: JointRightShoulder, Left: JointLeftShoulder},
	{Right: JointRightElbow, Left: JointLeftElbow},
}

// SymmetryPairJoints は対称補正対象の(右, 左)関節ペアを返す。
func SymmetryPairJoints() [][2]LogicalJoint {
	pairs := make([][2]LogicalJoint, 0, len(symmetryPairs))
	for _, pair := range symmetryPairs {
		pairs = append(pairs, [2]LogicalJoint{pair.Right, pair.Left})
	}
	return pairs
}

// RigJointBoneName はリグ分類ごとの正規ボーン名を返す。
func RigJointBoneName(family RigFamily, joint LogicalJoint) (string, bool) {
	names, exists := rigJointBoneNames[family]
	if !exists {
		return "", false
	}
	name, exists := names[joint]
	return name, exists
}

// IsForcedAbsentJoint は部分一致探索を禁止された関節か判定する。
func IsForcedAbsentJoint(family RigFamily, joint LogicalJoint) bool {
	joints, exists := rigForcedAbsentJoints[family]
	if !exists {
		return false
	}
	_, forced := joints[joint]
	return forced
}

// StandingOffsetDegrees は直立姿勢基礎オフセット(度)を返す。
// RigFamilyBip には適用されない。
func StandingOffsetDegrees(family RigFamily, joint LogicalJoint, axis Axis) float64 {
	if family == RigFamilyBip {
		return 0
	}
	offsets, exists := standingOffsets[joint]
	if !exists {
		return 0
	}
	return offsets.Get(axis)
}

// BindCorrectionDegrees はリグ分類ごとのバインドポーズ補正(度)を返す。
func BindCorrectionDegrees(family RigFamily, joint LogicalJoint) (AxisDegrees, bool) {
	corrections, exists := rigBindCorrections[family]
	if !exists {
		return AxisDegrees{}, false
	}
	degrees, exists := corrections[joint]
	return degrees, exists
}

// OffsetSign は関節・軸別の符号を返す。
// X軸は常に正、Y軸は右側関節で反転、Z軸は記述規約全体がミラーのため非右側で反転する。
// さらに肩系・大腿足首系のZ軸には構造上の反転が掛かる。
func OffsetSign(joint LogicalJoint, axis Axis) float64 {
	sign := 1.0
	switch axis {
	case AxisY:
		if joint.IsRight() {
			sign = -sign
		}
	case AxisZ:
		if !joint.IsRight() {
			sign = -sign
		}
		if joint.isShoulderCategory() || joint.isHipFootCategory() {
			sign = -sign
		}
	}
	return sign
}

// ClampJointDegrees は符号適用後の角度を関節・軸別の可動域へ収める。
func ClampJointDegrees(joint LogicalJoint, axis Axis, degrees float64) float64 {
	limits, exists := jointLimits[joint]
	if !exists {
		return degrees
	}
	min := limits.Min.Get(axis)
	max := limits.Max.Get(axis)
	if degrees < min {
		return min
	}
	if degrees > max {
		return max
	}
	return degrees
}

// BoneResolutionTable は1スケルトンに対する関節→ボーン解決結果を表す。
// 解決できなかった関節は含まれない(部分解決を許容する)。
type BoneResolutionTable struct {
	Family RigFamily

	bones map[LogicalJoint]*Bone
}

// NewBoneResolutionTable は空の解決表を構築する。
func NewBoneResolutionTable(family RigFamily) *BoneResolutionTable {
	return &BoneResolutionTable{
		Family: family,
		bones:  make(map[LogicalJoint]*Bone, jointCount),
	}
}

// SetBone は関節の解決結果を登録する。
func (t *BoneResolutionTable) SetBone(joint LogicalJoint, bone *Bone) {
	if bone == nil {
		return
	}
	t.bones[joint] = bone
}

// Bone は関節の解決済みボーンを返す。
func (t *BoneResolutionTable) Bone(joint LogicalJoint) (*Bone, bool) {
	bone, exists := t.bones[joint]
	return bone, exists
}

// ResolvedCount は解決済み関節数を返す。
func (t *BoneResolutionTable) ResolvedCount() int {
	return len(t.bones)
}

// ResolvedJoints は解決済み関節を定義順で返す。
func (t *BoneResolutionTable) ResolvedJoints() []LogicalJoint {
	joints := make([]LogicalJoint, 0, len(t.bones))
	for _, joint := range AllLogicalJoints() {
		if _, exists := t.bones[joint]; exists {
			joints = append(joints, joint)
		}
	}
	return joints
}

// ContainsBoneName は解決済みボーンに指定名が含まれるか判定する。
func (t *BoneResolutionTable) ContainsBoneName(name string) bool {
	for _, bone := range t.bones {
		if bone.Name == name {
			return true
		}
	}
	return false
}

// MatchRigFamilyName はボーン名がリグ分類のマーカーを含むか判定する。
func MatchRigFamilyName(family RigFamily, boneName string) bool {
	marker, exists := rigFamilyMarkers[family]
	if !exists {
		return false
	}
	return strings.Contains(boneName, marker)
}
