// 指示: miu200521358
package usecase

import (
	"sort"

	"github.com/miu200521358/mlib_go/pkg/infrastructure/miter"
	"github.com/miu200521358/mlib_go/pkg/domain/mmath"
	"github.com/miu200521358/mu_motion_blend/pkg/domain"
)

const (
	// composeParallelBlockSize は合成処理の並列ブロックサイズを表す。
	composeParallelBlockSize = 4
)

// ComposeBoneRotations はオフセット列をレストポーズ・対称補正と合成し、
// ボーン別の最終回転キーフレーム列を構築する。
//
// 合成は常に四元数の乗算で行う。オイラー角を加算してからまとめて変換すると
// 回転の非可換性により結果が一致しないため、キーフレーム単位で必ず本関数を経由する。
//   - 絶対・補正なし: rest * quat(offset)
//   - 絶対・補正あり: rest * corr * quat(offset) * corr⁻¹ (零オフセットでrestへ厳密に還元)
//   - デルタ・補正なし: quat(offset)
//   - デルタ・補正あり: corr * quat(offset) * corr⁻¹
func ComposeBoneRotations(
	offsets map[string][]OffsetKeyframe,
	cache *domain.RestPoseCache,
	corrections *domain.SymmetryCorrections,
	isDelta bool,
) map[string][]domain.BoneKeyframe {
	if offsets == nil {
		return nil
	}

	boneNames := make([]string, 0, len(offsets))
	for name := range offsets {
		boneNames = append(boneNames, name)
	}
	if len(boneNames) == 0 {
		return map[string][]domain.BoneKeyframe{}
	}
	sort.Strings(boneNames)

	composed := make([][]domain.BoneKeyframe, len(boneNames))
	miter.IterParallelByList(mmath.IntRanges(len(boneNames)-1), composeParallelBlockSize, 0, func(index, data int) error {
		name := boneNames[data]
		composed[data] = composeBoneTrack(name, offsets[name], cache, corrections, isDelta)
		return nil
	}, nil)

	result := make(map[string][]domain.BoneKeyframe, len(boneNames))
	for i, name := range boneNames {
		if composed[i] == nil {
			continue
		}
		result[name] = composed[i]
	}
	return result
}

// composeBoneTrack は1ボーン分のキーフレーム列を合成する。
// 絶対モードでレストポーズが無いボーンは合成対象から除外される。
func composeBoneTrack(
	boneName string,
	offsetKeyframes []OffsetKeyframe,
	cache *domain.RestPoseCache,
	corrections *domain.SymmetryCorrections,
	isDelta bool,
) []domain.BoneKeyframe {
	var rest *mmath.MQuaternion
	if !isDelta {
		if cache == nil {
			return nil
		}
		cached, exists := cache.Rest(boneName)
		if !exists {
			return nil
		}
		rest = cached
	}

	var correction *mmath.MQuaternion
	if corrections != nil {
		if corr, exists := corrections.Correction(boneName); exists {
			correction = corr
		}
	}

	keyframes := make([]domain.BoneKeyframe, 0, len(offsetKeyframes))
	for _, offset := range offsetKeyframes {
		keyframes = append(keyframes, domain.BoneKeyframe{
			Frame:    offset.Frame,
			Rotation: composeRotation(rest, correction, offset.Radians, isDelta),
		})
	}
	return keyframes
}

// composeRotation は1キーフレーム分の最終回転を合成する。
func composeRotation(
	rest *mmath.MQuaternion,
	correction *mmath.MQuaternion,
	offsetRadians *mmath.MVec3,
	isDelta bool,
) *mmath.MQuaternion {
	offset := mmath.NewMQuaternionFromRadians(offsetRadians.X, offsetRadians.Y, offsetRadians.Z)

	var rotation *mmath.MQuaternion
	if correction != nil {
		// 補正座標系の内側でオフセットを適用してから座標系を戻す。
		// オフセットが零なら補正は厳密に相殺される。
		rotation = correction.Muled(offset).Muled(correction.Inverted())
	} else {
		rotation = offset
	}

	if isDelta {
		return rotation.Normalized()
	}
	return rest.Muled(rotation).Normalized()
}
