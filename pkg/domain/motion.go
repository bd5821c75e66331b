// 指示: miu200521358
package domain

import (
	"math"

	"github.com/tiendc/go-deepcopy"
)

// FramesPerSecond はモーション時間軸のフレームレートを表す。
const FramesPerSecond = 30.0

// MotionDefinition は手書きモーション定義を表す。
// Joints は "<関節名><軸>" キーから 時刻(秒)→角度(度) への対応を保持する。
// 実行時には不変データとして扱う。
type MotionDefinition struct {
	Name           string
	Duration       float64
	Joints         map[string]map[float64]float64
	RigAdjustments map[string]float64
	IsDelta        bool
}

// TotalFrames はモーション全体のフレーム数を返す。
func (m *MotionDefinition) TotalFrames() int {
	if m == nil || m.Duration <= 0 {
		return 0
	}
	return int(math.Round(m.Duration * FramesPerSecond))
}

// Clone はモーション定義の複製を返す。元データは変更されない。
func (m *MotionDefinition) Clone() *MotionDefinition {
	if m == nil {
		return nil
	}
	cloned := &MotionDefinition{}
	if err := deepcopy.Copy(cloned, m); err != nil {
		// 複製失敗時は元定義をそのまま返し、呼び出し側の処理を止めない
		return m
	}
	return cloned
}

// Mirrored は左右反転したモーション定義の複製を返す。
// 左右関節のキーを入れ替え、Y軸・Z軸の角度符号を反転する。
func (m *MotionDefinition) Mirrored() *MotionDefinition {
	if m == nil {
		return nil
	}
	mirrored := m.Clone()
	mirrored.Name = m.Name + "_mirror"
	mirrored.Joints = mirrorJointKeyValues(m.Joints)
	mirrored.RigAdjustments = mirrorAdjustmentKeyValues(m.RigAdjustments)
	return mirrored
}

// mirrorJointKeyValues はキーフレーム表の左右を入れ替える。
func mirrorJointKeyValues(joints map[string]map[float64]float64) map[string]map[float64]float64 {
	if joints == nil {
		return nil
	}
	mirrored := make(map[string]map[float64]float64, len(joints))
	for key, frames := range joints {
		joint, axis, ok := ParseMotionKey(key)
		if !ok {
			continue
		}
		sign := mirrorValueSign(axis)
		mirroredFrames := make(map[float64]float64, len(frames))
		for t, degrees := range frames {
			mirroredFrames[t] = degrees * sign
		}
		mirrored[MotionKey(joint.Mirrored(), axis)] = mirroredFrames
	}
	return mirrored
}

// mirrorAdjustmentKeyValues はリグ別静的調整表の左右を入れ替える。
func mirrorAdjustmentKeyValues(adjustments map[string]float64) map[string]float64 {
	if adjustments == nil {
		return nil
	}
	mirrored := make(map[string]float64, len(adjustments))
	for key, degrees := range adjustments {
		joint, axis, ok := ParseMotionKey(key)
		if !ok {
			continue
		}
		mirrored[MotionKey(joint.Mirrored(), axis)] = degrees * mirrorValueSign(axis)
	}
	return mirrored
}

// mirrorValueSign は左右反転時の軸別符号を返す。
func mirrorValueSign(axis Axis) float64 {
	if axis == AxisY || axis == AxisZ {
		return -1
	}
	return 1
}

// IdleMotion は組み込みの待機モーション定義を返す。
// 上半身と頭のゆったりした呼吸揺れのみを持つ4秒ループ。
func IdleMotion() *MotionDefinition {
	return &MotionDefinition{
		Name:     "idle",
		Duration: 4.0,
		Joints: map[string]map[float64]float64{
			"upperBodyX": {0.0: 0, 1.0: 2, 2.0: 0, 3.0: -1, 4.0: 0},
			"headX":      {0.0: 0, 2.0: -2, 4.0: 0},
			"leftShoulderZ": {
				0.0: 0, 2.0: 3, 4.0: 0,
			},
			"rightShoulderZ": {
				0.0: 0, 2.0: 3, 4.0: 0,
			},
		},
	}
}

// WalkMotion は組み込みの歩行モーション定義を返す。
// 脚と腕の対称な振りを持つ1.2秒ループ。
func WalkMotion() *MotionDefinition {
	return &MotionDefinition{
		Name:     "walk",
		Duration: 1.2,
		Joints: map[string]map[float64]float64{
			"leftHipX":       {0.0: -25, 0.3: 0, 0.6: 25, 0.9: 0, 1.2: -25},
			"rightHipX":      {0.0: 25, 0.3: 0, 0.6: -25, 0.9: 0, 1.2: 25},
			"leftKneeX":      {0.0: 10, 0.3: 35, 0.6: 5, 0.9: 10, 1.2: 10},
			"rightKneeX":     {0.0: 5, 0.3: 10, 0.6: 10, 0.9: 35, 1.2: 5},
			"leftFootX":      {0.0: -10, 0.6: 10, 1.2: -10},
			"rightFootX":     {0.0: 10, 0.6: -10, 1.2: 10},
			"leftShoulderX":  {0.0: 20, 0.6: -20, 1.2: 20},
			"rightShoulderX": {0.0: -20, 0.6: 20, 1.2: -20},
			"leftElbowX":     {0.0: 10, 0.6: 25, 1.2: 10},
			"rightElbowX":    {0.0: 25, 0.6: 10, 1.2: 25},
			"upperBodyY":     {0.0: 4, 0.6: -4, 1.2: 4},
		},
	}
}
