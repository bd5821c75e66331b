// 指示: miu200521358
package usecase

import (
	"strings"

	"github.com/miu200521358/mlib_go/pkg/config/mlog"
	"github.com/miu200521358/mu_motion_blend/pkg/domain"
)

// DetectRigFamily はボーン名集合からリグ分類を判定する。
// 判定はボーン名集合に対して純粋・決定的で、未知の命名は RigFamilyUnknown を返す。
func DetectRigFamily(skeleton *domain.Skeleton) domain.RigFamily {
	if skeleton == nil || skeleton.Len() == 0 {
		return domain.RigFamilyUnknown
	}
	for _, family := range []domain.RigFamily{domain.RigFamilyMixamo, domain.RigFamilyBip} {
		for _, name := range skeleton.BoneNames() {
			if domain.MatchRigFamilyName(family, name) {
				return family
			}
		}
	}
	return domain.RigFamilyUnknown
}

// ResolveBones は論理関節をスケルトンの実ボーンへ解決する。
// 全関節が未解決の場合のみ nil(使用不能スケルトン)を返す。
func ResolveBones(skeleton *domain.Skeleton, family domain.RigFamily) *domain.BoneResolutionTable {
	if skeleton == nil || skeleton.Len() == 0 {
		return nil
	}

	table := domain.NewBoneResolutionTable(family)
	for _, joint := range domain.AllLogicalJoints() {
		if domain.IsForcedAbsentJoint(family, joint) {
			// 構造的に存在しない関節は部分一致で誤解決せず欠損のまま扱う
			continue
		}
		bone, found := resolveJointBone(skeleton, family, joint)
		if !found {
			continue
		}
		table.SetBone(joint, bone)
	}

	if table.ResolvedCount() == 0 {
		mlog.V("関節解決失敗: skeleton=%s family=%s", skeleton.Name, family)
		return nil
	}
	return table
}

// resolveJointBone は1関節を正規名→部分一致探索の順で解決する。
func resolveJointBone(skeleton *domain.Skeleton, family domain.RigFamily, joint domain.LogicalJoint) (*domain.Bone, bool) {
	if name, exists := domain.RigJointBoneName(family, joint); exists {
		if bone, found := skeleton.Bone(name); found {
			return bone, true
		}
	}
	return searchBoneBySubstring(skeleton, joint.String())
}

// searchBoneBySubstring は全ボーン名に対する大文字小文字無視の部分一致探索を行う。
func searchBoneBySubstring(skeleton *domain.Skeleton, jointName string) (*domain.Bone, bool) {
	lowered := strings.ToLower(jointName)
	for _, bone := range skeleton.Bones() {
		if strings.Contains(strings.ToLower(bone.Name), lowered) {
			return bone, true
		}
	}
	return nil, false
}
