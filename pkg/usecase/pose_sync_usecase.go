// 指示: miu200521358
package usecase

import (
	"github.com/miu200521358/mlib_go/pkg/domain/mmath"
	"github.com/miu200521358/mlib_go/pkg/config/mi18n"
	"github.com/miu200521358/mlib_go/pkg/config/mlog"
	"github.com/miu200521358/mu_motion_blend/pkg/domain"
	"gonum.org/v1/gonum/spatial/r3"
)

// PoseSyncState は2スケルトン間のポーズ同期状態を表す。
// Source はアニメーション済みのGLB側スケルトン、Target は追従側スケルトンを指す。
type PoseSyncState struct {
	Source *domain.Skeleton
	Target *domain.Skeleton

	// ChainRotation はルート関節から最上位コンテナまでの構造回転(通常は上方向軸の規約差)を表す。
	ChainRotation *mmath.MQuaternion
	// RootBoneName はチェーン補正を適用するルートボーン名を表す。
	RootBoneName string
	// ImportedCache はレストキャッシュ取り込み方式で構築した追従側キャッシュを表す。
	// 実行時コピー方式では nil のままとなる。
	ImportedCache *domain.RestPoseCache

	commonBones [][2]*domain.Bone
}

// InitPoseSync はポーズ同期状態を初期化する。
// importRest を指定すると、追従側のレストキャッシュをGLB側のレスト回転から取り込み、
// ルートボーンのみチェーン回転を前掛けして構築する(非ルートは親子構造の一致に依存して流用)。
// ルート関節を解決できない場合は nil を返す。
func InitPoseSync(
	source *domain.Skeleton,
	sourceCache *domain.RestPoseCache,
	target *domain.Skeleton,
	importRest bool,
) *PoseSyncState {
	if source == nil || target == nil {
		return nil
	}

	rootBone := resolveSyncRootBone(source)
	if rootBone == nil {
		return nil
	}

	state := &PoseSyncState{
		Source:        source,
		Target:        target,
		ChainRotation: chainRotationAboveRoot(source, rootBone),
		RootBoneName:  rootBone.Name,
		commonBones:   collectCommonBones(source, target),
	}
	if len(state.commonBones) == 0 {
		return nil
	}

	rootOffset := syncRootOffset(source, target, rootBone.Name)
	mlog.D(mi18n.T("ポーズ同期初期化", map[string]interface{}{
		"Source": source.Name, "Target": target.Name,
		"Root": rootBone.Name, "Offset": r3.Norm(rootOffset)}))

	if importRest {
		state.ImportedCache = importRestCache(state, sourceCache)
		if state.ImportedCache == nil {
			return nil
		}
	}
	return state
}

// SyncPoseFromGLB はGLB側スケルトンの現在回転を追従側へ毎フレーム複写する。
// ルートボーンのみチェーン回転を前掛けし、それ以外は名前一致ボーンへそのまま複写する。
// GLB側のポーズ書き込みが完了した後に呼び出す契約となる。
func SyncPoseFromGLB(state *PoseSyncState) {
	if state == nil {
		return
	}
	for _, pair := range state.commonBones {
		sourceBone := pair[0]
		targetBone := pair[1]
		if sourceBone.Rotation == nil {
			continue
		}
		if sourceBone.Name == state.RootBoneName {
			targetBone.Rotation = state.ChainRotation.Muled(sourceBone.Rotation).Normalized()
			continue
		}
		targetBone.Rotation = copyQuaternion(sourceBone.Rotation)
	}
}

// importRestCache はGLB側のレスト回転を追従側キャッシュへ取り込む。
func importRestCache(state *PoseSyncState, sourceCache *domain.RestPoseCache) *domain.RestPoseCache {
	if sourceCache == nil {
		return nil
	}
	imported := domain.NewRestPoseCache()
	for _, pair := range state.commonBones {
		sourceBone := pair[0]
		rest, exists := sourceCache.Rest(sourceBone.Name)
		if !exists {
			continue
		}
		if sourceBone.Name == state.RootBoneName {
			imported.Set(sourceBone.Name, state.ChainRotation.Muled(rest).Normalized())
			continue
		}
		imported.Set(sourceBone.Name, copyQuaternion(rest))
	}
	if imported.Len() == 0 {
		return nil
	}
	return imported
}

// resolveSyncRootBone は同期のルート関節(腰、無ければ下半身)を解決する。
func resolveSyncRootBone(skeleton *domain.Skeleton) *domain.Bone {
	family := DetectRigFamily(skeleton)
	table := ResolveBones(skeleton, family)
	if table == nil {
		return nil
	}
	if bone, exists := table.Bone(domain.JointHips); exists {
		return bone
	}
	if bone, exists := table.Bone(domain.JointLowerBody); exists {
		return bone
	}
	return nil
}

// chainRotationAboveRoot はルートボーンの祖先ノードのバインド回転を
// 最上位→直上の順に合成した構造回転を返す。祖先が無い場合は単位回転を返す。
func chainRotationAboveRoot(skeleton *domain.Skeleton, rootBone *domain.Bone) *mmath.MQuaternion {
	chain := mmath.NewMQuaternionByValues(0, 0, 0, 1)
	ancestors := skeleton.AncestorChain(rootBone)
	for i := len(ancestors) - 1; i >= 0; i-- {
		if ancestors[i].BindRotation == nil {
			continue
		}
		chain = chain.Muled(ancestors[i].BindRotation)
	}
	return chain.Normalized()
}

// collectCommonBones は両スケルトンに共通する(名前一致の)ボーン対を収集する。
func collectCommonBones(source *domain.Skeleton, target *domain.Skeleton) [][2]*domain.Bone {
	pairs := make([][2]*domain.Bone, 0, source.Len())
	for _, sourceBone := range source.Bones() {
		targetBone, exists := target.Bone(sourceBone.Name)
		if !exists {
			continue
		}
		pairs = append(pairs, [2]*domain.Bone{sourceBone, targetBone})
	}
	return pairs
}

// syncRootOffset は両スケルトンのルートボーン位置差を返す。
func syncRootOffset(source *domain.Skeleton, target *domain.Skeleton, rootName string) r3.Vec {
	sourceRoot, sourceExists := source.Bone(rootName)
	targetRoot, targetExists := target.Bone(rootName)
	if !sourceExists || !targetExists {
		return r3.Vec{}
	}
	return r3.Sub(targetRoot.Position, sourceRoot.Position)
}

// copyQuaternion は四元数の複製を返す。
func copyQuaternion(q *mmath.MQuaternion) *mmath.MQuaternion {
	return mmath.NewMQuaternionByValues(q.X, q.Y, q.Z, q.W)
}
