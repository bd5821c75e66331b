// 指示: miu200521358
package usecase

import (
	"math"

	"github.com/miu200521358/mlib_go/pkg/domain/mmath"
	"github.com/miu200521358/mu_motion_blend/pkg/domain"
)

const (
	// symmetryIdentityTolerance は補正省略判定の実部許容誤差を表す。
	symmetryIdentityTolerance = 1e-6
)

// ComputeSymmetryCorrections は左右対称補正表を構築する。
// 補正は correction = inverse(rightRest) * mirror(leftRest) で、
// 結果がほぼ単位回転となるボーンは登録しない(丸め誤差を補正として持ち込まない)。
// レストポーズキャッシュ確定後に一度だけ計算され、全モーションで再利用される。
func ComputeSymmetryCorrections(cache *domain.RestPoseCache, table *domain.BoneResolutionTable) *domain.SymmetryCorrections {
	corrections := domain.NewSymmetryCorrections()
	if cache == nil || table == nil {
		return corrections
	}

	for _, pair := range domain.SymmetryPairJoints() {
		rightBone, rightExists := table.Bone(pair[0])
		leftBone, leftExists := table.Bone(pair[1])
		if !rightExists || !leftExists {
			continue
		}
		rightRest, rightCached := cache.Rest(rightBone.Name)
		leftRest, leftCached := cache.Rest(leftBone.Name)
		if !rightCached || !leftCached {
			continue
		}

		correction := rightRest.Inverted().Muled(mirrorSagittal(leftRest)).Normalized()
		if isNearIdentity(correction) {
			continue
		}
		corrections.Set(rightBone.Name, correction)
	}
	return corrections
}

// mirrorSagittal は矢状面(YZ平面)をまたぐ鏡映回転を返す。
// 虚部のY・Z成分を反転し、X成分と実部は保持する。
func mirrorSagittal(rotation *mmath.MQuaternion) *mmath.MQuaternion {
	return mmath.NewMQuaternionByValues(rotation.X, -rotation.Y, -rotation.Z, rotation.W)
}

// isNearIdentity は回転がほぼ単位回転か判定する。
func isNearIdentity(rotation *mmath.MQuaternion) bool {
	return math.Abs(math.Abs(rotation.W)-1.0) <= symmetryIdentityTolerance
}
