// 指示: miu200521358
package usecase

import (
	"github.com/miu200521358/mlib_go/pkg/config/mi18n"
	"github.com/miu200521358/mlib_go/pkg/config/mlog"
	"github.com/miu200521358/mu_motion_blend/pkg/domain"
)

// CreatePoseData は組み込みの待機・歩行2モーションをブレンド用に合成する。
// 使用不能スケルトンの場合は nil を返し、呼び出し側はアニメーション適用を行わない。
// cache に nil を渡すと内部で取得する。
func CreatePoseData(skeleton *domain.Skeleton, cache *domain.RestPoseCache) *domain.BlendPoseData {
	family := DetectRigFamily(skeleton)
	table := ResolveBones(skeleton, family)
	if table == nil {
		return nil
	}
	if cache == nil {
		cache = CaptureRestPosesWithTable(skeleton, table)
	}
	if cache == nil {
		return nil
	}
	corrections := ComputeSymmetryCorrections(cache, table)

	idle := composeMotion(domain.IdleMotion(), table, cache, corrections)
	walk := composeMotion(domain.WalkMotion(), table, cache, corrections)
	if idle == nil || walk == nil {
		return nil
	}

	mlog.I(mi18n.T("ブレンドポーズ構築完了", map[string]interface{}{
		"Skeleton": skeleton.Name, "Family": family.String(),
		"IdleFrames": idle.TotalFrames, "WalkFrames": walk.TotalFrames}))

	return &domain.BlendPoseData{
		Idle:           idle,
		Walk:           walk,
		IdleFrameCount: idle.TotalFrames,
		WalkFrameCount: walk.TotalFrames,
	}
}

// CreateSingleMotionPoseData は単一モーションを合成する。
// mirror を指定すると左右反転した定義で合成する(元定義は変更されない)。
func CreateSingleMotionPoseData(
	skeleton *domain.Skeleton,
	motion *domain.MotionDefinition,
	cache *domain.RestPoseCache,
	mirror bool,
) *domain.ComposedPoseData {
	if motion == nil {
		return nil
	}
	family := DetectRigFamily(skeleton)
	table := ResolveBones(skeleton, family)
	if table == nil {
		return nil
	}
	if cache == nil {
		cache = CaptureRestPosesWithTable(skeleton, table)
	}
	if cache == nil {
		return nil
	}
	corrections := ComputeSymmetryCorrections(cache, table)

	target := motion
	if mirror {
		target = motion.Mirrored()
	}
	return composeMotion(target, table, cache, corrections)
}

// composeMotion はオフセット構築と四元数合成をまとめた共通経路を表す。
// 単一モーション再生とブレンド再生は本関数の結果の消費方法のみが異なる。
func composeMotion(
	motion *domain.MotionDefinition,
	table *domain.BoneResolutionTable,
	cache *domain.RestPoseCache,
	corrections *domain.SymmetryCorrections,
) *domain.ComposedPoseData {
	if motion == nil || motion.TotalFrames() <= 0 {
		return nil
	}
	offsets := BuildOffsets(motion, table)
	bones := ComposeBoneRotations(offsets, cache, corrections, motion.IsDelta)
	return &domain.ComposedPoseData{
		Name:        motion.Name,
		Bones:       bones,
		TotalFrames: motion.TotalFrames(),
		Duration:    motion.Duration,
		IsDelta:     motion.IsDelta,
	}
}
