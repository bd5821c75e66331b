// 指示: miu200521358
package io_skeleton

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mlib_go/pkg/domain/mmath"
	"github.com/miu200521358/mu_motion_blend/pkg/domain"
	"gonum.org/v1/gonum/spatial/r3"
)

// skeletonDocument はスケルトン定義JSONの外部表現を表す。
type skeletonDocument struct {
	Name  string         `json:"name"`
	Bones []boneDocument `json:"bones"`
}

// boneDocument はボーン1件分の外部表現を表す。
// BindRotation は[x,y,z,w]順の四元数、省略時は単位回転となる。
type boneDocument struct {
	Name         string     `json:"name"`
	ParentIndex  *int       `json:"parentIndex"`
	Position     [3]float64 `json:"position"`
	BindRotation []float64  `json:"bindRotation"`
}

// SkeletonRepository はスケルトン定義JSONの読み込み契約を表す。
type SkeletonRepository struct {
}

// NewSkeletonRepository はSkeletonRepositoryを生成する。
func NewSkeletonRepository() *SkeletonRepository {
	return &SkeletonRepository{}
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *SkeletonRepository) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// InferName はパスから表示名を推定する。
func (r *SkeletonRepository) InferName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

// Load はスケルトン定義を読み込む。
func (r *SkeletonRepository) Load(path string) (*domain.Skeleton, error) {
	if !r.CanLoad(path) {
		return nil, fmt.Errorf("スケルトン定義の拡張子が不正です: %s", path)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("スケルトン定義ファイルの読み取りに失敗しました: %w", err)
	}

	doc := skeletonDocument{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("スケルトン定義JSONの解析に失敗しました: %w", err)
	}
	if len(doc.Bones) == 0 {
		return nil, fmt.Errorf("スケルトン定義にボーンがありません: %s", path)
	}

	bones := make([]*domain.Bone, 0, len(doc.Bones))
	for i, boneDoc := range doc.Bones {
		if boneDoc.Name == "" {
			return nil, fmt.Errorf("スケルトン定義のボーン名が空です: index=%d", i)
		}
		parentIndex := -1
		if boneDoc.ParentIndex != nil {
			parentIndex = *boneDoc.ParentIndex
			if parentIndex >= i {
				return nil, fmt.Errorf("スケルトン定義の親indexが不正です: bone=%s parent=%d", boneDoc.Name, parentIndex)
			}
		}
		bindRotation, err := parseBindRotation(boneDoc)
		if err != nil {
			return nil, err
		}
		bones = append(bones, &domain.Bone{
			Name:         boneDoc.Name,
			ParentIndex:  parentIndex,
			Position:     r3.Vec{X: boneDoc.Position[0], Y: boneDoc.Position[1], Z: boneDoc.Position[2]},
			BindRotation: bindRotation,
		})
	}

	name := doc.Name
	if name == "" {
		name = r.InferName(path)
	}
	return domain.NewSkeleton(name, bones), nil
}

// parseBindRotation はバインド回転を解析する。省略時は単位回転を返す。
func parseBindRotation(boneDoc boneDocument) (*mmath.MQuaternion, error) {
	if len(boneDoc.BindRotation) == 0 {
		return mmath.NewMQuaternionByValues(0, 0, 0, 1), nil
	}
	if len(boneDoc.BindRotation) != 4 {
		return nil, fmt.Errorf("スケルトン定義のバインド回転の要素数が不正です: bone=%s n=%d",
			boneDoc.Name, len(boneDoc.BindRotation))
	}
	q := mmath.NewMQuaternionByValues(
		boneDoc.BindRotation[0], boneDoc.BindRotation[1],
		boneDoc.BindRotation[2], boneDoc.BindRotation[3])
	return q.Normalized(), nil
}
