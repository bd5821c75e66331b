// 指示: miu200521358
package usecase

import (
	"github.com/miu200521358/mlib_go/pkg/domain/mmath"
	"github.com/miu200521358/mlib_go/pkg/config/mi18n"
	"github.com/miu200521358/mlib_go/pkg/config/mlog"
	"github.com/miu200521358/mu_motion_blend/pkg/domain"
)

// CaptureRestPoses は解決済みボーンのバインド回転を一度だけ取得する。
// 取得はあらゆるポーズ書き込みより前に行う契約で、ライブ回転からの再取得は不正となる。
// 使用不能スケルトンの場合は nil を返す。
func CaptureRestPoses(skeleton *domain.Skeleton) *domain.RestPoseCache {
	family := DetectRigFamily(skeleton)
	table := ResolveBones(skeleton, family)
	if table == nil {
		return nil
	}
	return CaptureRestPosesWithTable(skeleton, table)
}

// CaptureRestPosesWithTable は解決表に基づきレストポーズを取得する。
// リグ分類固有のバインドポーズ欠陥補正は、取得時に一度だけ前掛けされる。
func CaptureRestPosesWithTable(skeleton *domain.Skeleton, table *domain.BoneResolutionTable) *domain.RestPoseCache {
	if skeleton == nil || table == nil {
		return nil
	}

	cache := domain.NewRestPoseCache()
	correctedCount := 0
	for _, joint := range table.ResolvedJoints() {
		bone, exists := table.Bone(joint)
		if !exists || bone.BindRotation == nil {
			continue
		}
		rest := bone.BindRotation.Copy()
		if degrees, corrected := domain.BindCorrectionDegrees(table.Family, joint); corrected {
			correction := mmath.NewMQuaternionFromDegrees(degrees.X, degrees.Y, degrees.Z)
			rest = correction.Muled(rest).Normalized()
			correctedCount++
		}
		cache.Set(bone.Name, rest)
	}

	if cache.Len() == 0 {
		return nil
	}
	mlog.D(mi18n.T("レストポーズ取得完了", map[string]interface{}{
		"Skeleton": skeleton.Name, "Count": cache.Len(), "Corrected": correctedCount}))
	return cache
}
