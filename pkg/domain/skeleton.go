// 指示: miu200521358
package domain

import (
	"github.com/miu200521358/mlib_go/pkg/domain/mmath"
	"gonum.org/v1/gonum/spatial/r3"
)

// Bone はスケルトン上の1ボーンを表す。
// BindRotation は読み込み時の回転で以後不変、Rotation は毎フレーム上書きされる。
type Bone struct {
	Name         string
	ParentIndex  int
	Position     r3.Vec
	BindRotation *mmath.MQuaternion
	Rotation     *mmath.MQuaternion

	index int
}

// Index はスケルトン内のボーンindexを返す。
func (b *Bone) Index() int {
	return b.index
}

// Skeleton は名前付きボーン列とその親子関係を表す。
// 所有者はレンダラー側であり、本エンジンはバインド情報の参照と回転書き込みのみ行う。
type Skeleton struct {
	Name  string
	bones []*Bone

	nameIndexes map[string]int
}

// NewSkeleton はボーン列からスケルトンを構築する。
func NewSkeleton(name string, bones []*Bone) *Skeleton {
	skeleton := &Skeleton{
		Name:        name,
		bones:       make([]*Bone, 0, len(bones)),
		nameIndexes: make(map[string]int, len(bones)),
	}
	for _, bone := range bones {
		if bone == nil {
			continue
		}
		skeleton.appendBone(bone)
	}
	return skeleton
}

// appendBone はボーンを末尾へ追加し、indexを確定する。
func (s *Skeleton) appendBone(bone *Bone) {
	bone.index = len(s.bones)
	if bone.BindRotation == nil {
		bone.BindRotation = mmath.NewMQuaternionByValues(0, 0, 0, 1)
	}
	if bone.Rotation == nil {
		bone.Rotation = bone.BindRotation.Copy()
	}
	s.bones = append(s.bones, bone)
	if _, exists := s.nameIndexes[bone.Name]; !exists {
		s.nameIndexes[bone.Name] = bone.index
	}
}

// Len はボーン数を返す。
func (s *Skeleton) Len() int {
	return len(s.bones)
}

// Bones はボーン列を返す。
func (s *Skeleton) Bones() []*Bone {
	return s.bones
}

// Bone は名前でボーンを取得する。
func (s *Skeleton) Bone(name string) (*Bone, bool) {
	index, exists := s.nameIndexes[name]
	if !exists {
		return nil, false
	}
	return s.bones[index], true
}

// BoneByIndex はindexでボーンを取得する。
func (s *Skeleton) BoneByIndex(index int) (*Bone, bool) {
	if index < 0 || index >= len(s.bones) {
		return nil, false
	}
	return s.bones[index], true
}

// BoneNames は全ボーン名を定義順で返す。
func (s *Skeleton) BoneNames() []string {
	names := make([]string, 0, len(s.bones))
	for _, bone := range s.bones {
		names = append(names, bone.Name)
	}
	return names
}

// Parent は親ボーンを返す。親が無い場合は nil を返す。
func (s *Skeleton) Parent(bone *Bone) *Bone {
	if bone == nil || bone.ParentIndex < 0 || bone.ParentIndex >= len(s.bones) {
		return nil
	}
	return s.bones[bone.ParentIndex]
}

// AncestorChain は指定ボーンの親からルートまでを親→ルート順で返す。
func (s *Skeleton) AncestorChain(bone *Bone) []*Bone {
	ancestors := make([]*Bone, 0, 4)
	for parent := s.Parent(bone); parent != nil; parent = s.Parent(parent) {
		ancestors = append(ancestors, parent)
		if len(ancestors) > len(s.bones) {
			// 循環参照は打ち切る
			break
		}
	}
	return ancestors
}

// BoneDirection は親ボーンから子ボーンへ向かう単位ベクトルを返す。
// 距離が退化している場合は零ベクトルを返す。
func (s *Skeleton) BoneDirection(fromName string, toName string) r3.Vec {
	from, fromExists := s.Bone(fromName)
	to, toExists := s.Bone(toName)
	if !fromExists || !toExists {
		return r3.Vec{}
	}
	direction := r3.Sub(to.Position, from.Position)
	if r3.Norm(direction) <= 1e-8 {
		return r3.Vec{}
	}
	return r3.Unit(direction)
}
