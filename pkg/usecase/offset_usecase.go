// 指示: miu200521358
package usecase

import (
	"sort"

	"github.com/miu200521358/mlib_go/pkg/domain/mmath"
	"github.com/miu200521358/mu_motion_blend/pkg/domain"
)

// OffsetKeyframe はボーン1フレーム分の純オフセット回転(オイラー、ラジアン)を表す。
type OffsetKeyframe struct {
	Frame   float64
	Radians *mmath.MVec3
}

// axisTimeline は1軸分の時刻順キーフレーム列を表す。
type axisTimeline struct {
	times   []float64
	degrees []float64
}

// jointTimelines は1関節分の軸別キーフレーム列を表す。
type jointTimelines struct {
	axes [3]*axisTimeline
}

// BuildOffsets はモーション定義から純オフセットキーフレーム列を構築する。
// 記述値に直立姿勢基礎オフセットとリグ別静的調整を合算し、符号表と可動域を
// 適用した上でラジアンへ変換する。可動域は符号適用後のボーンローカル角度に掛かる。
// 戻り値はボーン名→フレーム昇順のオフセット列で、解決できない関節は黙って除外される。
func BuildOffsets(motion *domain.MotionDefinition, table *domain.BoneResolutionTable) map[string][]OffsetKeyframe {
	if motion == nil || table == nil {
		return nil
	}

	totalFrames := motion.TotalFrames()
	family := table.Family
	authored := collectJointTimelines(motion)
	adjustments := collectJointAdjustments(motion)

	offsets := make(map[string][]OffsetKeyframe, table.ResolvedCount())

	for joint, timelines := range authored {
		bone, resolved := table.Bone(joint)
		if !resolved {
			// 部分解決: この関節のみ除外し、残りの処理は続行する
			continue
		}
		offsets[bone.Name] = buildAuthoredKeyframes(motion, family, joint, timelines, adjustments[joint])
	}

	if family == domain.RigFamilyBip {
		for joint, adjust := range adjustments {
			if _, hasAuthored := authored[joint]; hasAuthored {
				continue
			}
			bone, resolved := table.Bone(joint)
			if !resolved {
				continue
			}
			// 静的調整のみの関節は先頭と全長の2キーで定値保持し、ループ下でも安定させる
			offsets[bone.Name] = buildConstantKeyframes(family, joint, adjust, totalFrames)
		}
	}

	if !motion.IsDelta {
		appendDefaultHolds(motion, table, authored, offsets)
	}

	return offsets
}

// collectJointTimelines は記述キーを関節別・軸別の時刻順列へ整理する。
func collectJointTimelines(motion *domain.MotionDefinition) map[domain.LogicalJoint]*jointTimelines {
	authored := make(map[domain.LogicalJoint]*jointTimelines)
	for key, frames := range motion.Joints {
		joint, axis, ok := domain.ParseMotionKey(key)
		if !ok || len(frames) == 0 {
			continue
		}
		timelines, exists := authored[joint]
		if !exists {
			timelines = &jointTimelines{}
			authored[joint] = timelines
		}
		timelines.axes[axis] = newAxisTimeline(frames)
	}
	return authored
}

// collectJointAdjustments はリグ別静的調整表を関節別の軸値へ整理する。
func collectJointAdjustments(motion *domain.MotionDefinition) map[domain.LogicalJoint]domain.AxisDegrees {
	adjustments := make(map[domain.LogicalJoint]domain.AxisDegrees)
	for key, degrees := range motion.RigAdjustments {
		joint, axis, ok := domain.ParseMotionKey(key)
		if !ok {
			continue
		}
		adjust := adjustments[joint]
		switch axis {
		case domain.AxisX:
			adjust.X = degrees
		case domain.AxisY:
			adjust.Y = degrees
		case domain.AxisZ:
			adjust.Z = degrees
		}
		adjustments[joint] = adjust
	}
	return adjustments
}

// newAxisTimeline は時刻→角度の対応から時刻昇順の列を構築する。
func newAxisTimeline(frames map[float64]float64) *axisTimeline {
	times := make([]float64, 0, len(frames))
	for t := range frames {
		times = append(times, t)
	}
	sort.Float64s(times)

	degrees := make([]float64, 0, len(times))
	for _, t := range times {
		degrees = append(degrees, frames[t])
	}
	return &axisTimeline{times: times, degrees: degrees}
}

// sampleDegrees は指定時刻の記述角度を返す。キー間は線形補間、範囲外は端値保持する。
func (tl *axisTimeline) sampleDegrees(t float64) float64 {
	if tl == nil || len(tl.times) == 0 {
		return 0
	}
	if t <= tl.times[0] {
		return tl.degrees[0]
	}
	last := len(tl.times) - 1
	if t >= tl.times[last] {
		return tl.degrees[last]
	}
	for i := 1; i <= last; i++ {
		if t > tl.times[i] {
			continue
		}
		span := tl.times[i] - tl.times[i-1]
		if span <= 1e-8 {
			return tl.degrees[i]
		}
		ratio := (t - tl.times[i-1]) / span
		return mmath.Lerp(tl.degrees[i-1], tl.degrees[i], ratio)
	}
	return tl.degrees[last]
}

// unionTimes は3軸の明示キー時刻の和集合を昇順で返す。
func (timelines *jointTimelines) unionTimes() []float64 {
	seen := make(map[float64]struct{})
	times := make([]float64, 0, 8)
	for _, tl := range timelines.axes {
		if tl == nil {
			continue
		}
		for _, t := range tl.times {
			if _, exists := seen[t]; exists {
				continue
			}
			seen[t] = struct{}{}
			times = append(times, t)
		}
	}
	sort.Float64s(times)
	return times
}

// buildAuthoredKeyframes は記述キーフレームを持つ関節のオフセット列を構築する。
// デルタモーションには直立姿勢基礎オフセットを合算しない(基礎姿勢は基底側が持つ)。
func buildAuthoredKeyframes(
	motion *domain.MotionDefinition,
	family domain.RigFamily,
	joint domain.LogicalJoint,
	timelines *jointTimelines,
	adjust domain.AxisDegrees,
) []OffsetKeyframe {
	times := timelines.unionTimes()
	keyframes := make([]OffsetKeyframe, 0, len(times))
	for _, t := range times {
		radians := &mmath.MVec3{}
		for _, axis := range domain.AllAxes() {
			degrees := timelines.axes[axis].sampleDegrees(t)
			if !motion.IsDelta {
				degrees += domain.StandingOffsetDegrees(family, joint, axis)
			}
			if family == domain.RigFamilyBip {
				degrees += adjust.Get(axis)
			}
			degrees *= domain.OffsetSign(joint, axis)
			degrees = domain.ClampJointDegrees(joint, axis, degrees)
			setAxisValue(radians, axis, mmath.DegToRad(degrees))
		}
		keyframes = append(keyframes, OffsetKeyframe{
			Frame:   t * domain.FramesPerSecond,
			Radians: radians,
		})
	}
	return keyframes
}

// buildConstantKeyframes は静的調整のみの関節の定値保持2キーを構築する。
func buildConstantKeyframes(
	family domain.RigFamily,
	joint domain.LogicalJoint,
	adjust domain.AxisDegrees,
	totalFrames int,
) []OffsetKeyframe {
	radians := &mmath.MVec3{}
	for _, axis := range domain.AllAxes() {
		degrees := adjust.Get(axis) * domain.OffsetSign(joint, axis)
		degrees = domain.ClampJointDegrees(joint, axis, degrees)
		setAxisValue(radians, axis, mmath.DegToRad(degrees))
	}
	return []OffsetKeyframe{
		{Frame: 0, Radians: radians},
		{Frame: float64(totalFrames), Radians: &mmath.MVec3{X: radians.X, Y: radians.Y, Z: radians.Z}},
	}
}

// appendDefaultHolds は記述も静的調整も持たない解決済みボーンへ既定の定値保持を与える。
// RigFamilyBip はバインドポーズを厳密に保持するため零オフセット、それ以外は
// 直立姿勢基礎オフセットを保持する。
func appendDefaultHolds(
	motion *domain.MotionDefinition,
	table *domain.BoneResolutionTable,
	authored map[domain.LogicalJoint]*jointTimelines,
	offsets map[string][]OffsetKeyframe,
) {
	totalFrames := motion.TotalFrames()
	for _, joint := range table.ResolvedJoints() {
		if _, hasAuthored := authored[joint]; hasAuthored {
			continue
		}
		bone, resolved := table.Bone(joint)
		if !resolved {
			continue
		}
		if _, exists := offsets[bone.Name]; exists {
			continue
		}

		radians := &mmath.MVec3{}
		if table.Family != domain.RigFamilyBip {
			for _, axis := range domain.AllAxes() {
				degrees := domain.StandingOffsetDegrees(table.Family, joint, axis)
				degrees *= domain.OffsetSign(joint, axis)
				degrees = domain.ClampJointDegrees(joint, axis, degrees)
				setAxisValue(radians, axis, mmath.DegToRad(degrees))
			}
		}
		offsets[bone.Name] = []OffsetKeyframe{
			{Frame: 0, Radians: radians},
			{Frame: float64(totalFrames), Radians: &mmath.MVec3{X: radians.X, Y: radians.Y, Z: radians.Z}},
		}
	}
}

// setAxisValue はMVec3の指定軸へ値を設定する。
func setAxisValue(v *mmath.MVec3, axis domain.Axis, value float64) {
	switch axis {
	case domain.AxisX:
		v.X = value
	case domain.AxisY:
		v.Y = value
	case domain.AxisZ:
		v.Z = value
	}
}
