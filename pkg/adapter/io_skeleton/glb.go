// 指示: miu200521358
package io_skeleton

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mlib_go/pkg/domain/mmath"
	"github.com/miu200521358/mlib_go/pkg/config/mlog"
	"github.com/miu200521358/mu_motion_blend/pkg/domain"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	glbHeaderLength   = 12
	glbChunkHeadSize  = 8
	glbMagic          = 0x46546C67
	glbJSONChunkType  = 0x4E4F534A
	glbMinValidLength = glbHeaderLength + glbChunkHeadSize
)

// gltfSkeletonDocument はスケルトン抽出に必要なglTFトップレベル要素を表す。
type gltfSkeletonDocument struct {
	Asset gltfAsset  `json:"asset"`
	Nodes []gltfNode `json:"nodes"`
}

// gltfAsset はglTF asset要素を表す。
type gltfAsset struct {
	Version string `json:"version"`
}

// gltfNode はglTF node要素を表す。
type gltfNode struct {
	Name        string    `json:"name"`
	Children    []int     `json:"children"`
	Translation []float64 `json:"translation"`
	Rotation    []float64 `json:"rotation"`
}

// GlbSkeletonRepository はGLBバイナリからのスケルトン抽出契約を表す。
// メッシュや材質は読まず、ノード階層のみをボーン列として取り込む。
type GlbSkeletonRepository struct {
}

// NewGlbSkeletonRepository はGlbSkeletonRepositoryを生成する。
func NewGlbSkeletonRepository() *GlbSkeletonRepository {
	return &GlbSkeletonRepository{}
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *GlbSkeletonRepository) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".glb")
}

// InferName はパスから表示名を推定する。
func (r *GlbSkeletonRepository) InferName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

// Load はGLBからスケルトンを読み込む。
// 各ノードのローカル回転をバインド回転、階層変換の合成結果をボーン位置とする。
func (r *GlbSkeletonRepository) Load(path string) (*domain.Skeleton, error) {
	if !r.CanLoad(path) {
		return nil, fmt.Errorf("GLBの拡張子が不正です: %s", path)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("GLBファイルの読み取りに失敗しました: %w", err)
	}
	jsonChunk, err := parseGLBJSONChunk(b)
	if err != nil {
		return nil, err
	}

	doc := gltfSkeletonDocument{}
	if err := json.Unmarshal(jsonChunk, &doc); err != nil {
		return nil, fmt.Errorf("GLB JSONチャンクの解析に失敗しました: %w", err)
	}
	if len(doc.Nodes) == 0 {
		return nil, fmt.Errorf("GLBにノードがありません: %s", path)
	}

	parentIndexes, err := buildNodeParentIndexes(doc.Nodes)
	if err != nil {
		return nil, err
	}
	worldPositions, bindRotations, err := resolveNodeTransforms(doc.Nodes, parentIndexes)
	if err != nil {
		return nil, err
	}

	bones := make([]*domain.Bone, 0, len(doc.Nodes))
	for i, node := range doc.Nodes {
		name := node.Name
		if name == "" {
			name = fmt.Sprintf("node_%03d", i)
		}
		bones = append(bones, &domain.Bone{
			Name:         name,
			ParentIndex:  parentIndexes[i],
			Position:     worldPositions[i],
			BindRotation: bindRotations[i],
		})
	}

	skeleton := domain.NewSkeleton(r.InferName(path), bones)
	mlog.D("GLBスケルトン読込完了: name=%s nodes=%d gltf=%s",
		skeleton.Name, skeleton.Len(), doc.Asset.Version)
	return skeleton, nil
}

// parseGLBJSONChunk はGLBバイト列からJSONチャンクを抽出する。
func parseGLBJSONChunk(b []byte) ([]byte, error) {
	if len(b) < glbMinValidLength {
		return nil, fmt.Errorf("GLBヘッダが不足しています")
	}
	if binary.LittleEndian.Uint32(b[0:4]) != glbMagic {
		return nil, fmt.Errorf("GLBマジックが不正です")
	}
	if binary.LittleEndian.Uint32(b[4:8]) != 2 {
		return nil, fmt.Errorf("GLBバージョンが未対応です")
	}
	totalLength := int(binary.LittleEndian.Uint32(b[8:12]))
	if totalLength <= 0 || totalLength > len(b) {
		return nil, fmt.Errorf("GLB全体長が不正です")
	}

	offset := glbHeaderLength
	for offset+glbChunkHeadSize <= totalLength {
		chunkLength := int(binary.LittleEndian.Uint32(b[offset : offset+4]))
		chunkType := binary.LittleEndian.Uint32(b[offset+4 : offset+8])
		chunkStart := offset + glbChunkHeadSize
		chunkEnd := chunkStart + chunkLength
		if chunkLength < 0 || chunkEnd > totalLength {
			return nil, fmt.Errorf("GLBチャンク長が不正です")
		}
		if chunkType == glbJSONChunkType {
			return append([]byte(nil), b[chunkStart:chunkEnd]...), nil
		}
		offset = chunkEnd
	}
	return nil, fmt.Errorf("GLB JSONチャンクが見つかりません")
}

// buildNodeParentIndexes はnode配列から親インデックス配列を生成する。
func buildNodeParentIndexes(nodes []gltfNode) ([]int, error) {
	parentIndexes := make([]int, len(nodes))
	for i := range parentIndexes {
		parentIndexes[i] = -1
	}
	for parentIndex, node := range nodes {
		for _, childIndex := range node.Children {
			if childIndex < 0 || childIndex >= len(nodes) {
				return nil, fmt.Errorf("node.children のindexが不正です: %d", childIndex)
			}
			if parentIndexes[childIndex] == -1 {
				parentIndexes[childIndex] = parentIndex
			}
		}
	}
	return parentIndexes, nil
}

// resolveNodeTransforms は各ノードのワールド座標とローカルバインド回転を解決する。
func resolveNodeTransforms(nodes []gltfNode, parents []int) ([]r3.Vec, []*mmath.MQuaternion, error) {
	worldPositions := make([]r3.Vec, len(nodes))
	worldRotations := make([]*mmath.MQuaternion, len(nodes))
	bindRotations := make([]*mmath.MQuaternion, len(nodes))
	state := make([]int, len(nodes))

	for i := range nodes {
		if err := resolveNodeTransform(nodes, parents, i, state,
			worldPositions, worldRotations, bindRotations); err != nil {
			return nil, nil, err
		}
	}
	return worldPositions, bindRotations, nil
}

// resolveNodeTransform は1ノードのワールド変換を親から再帰的に解決する。
func resolveNodeTransform(
	nodes []gltfNode,
	parents []int,
	nodeIndex int,
	state []int,
	worldPositions []r3.Vec,
	worldRotations []*mmath.MQuaternion,
	bindRotations []*mmath.MQuaternion,
) error {
	if state[nodeIndex] == 2 {
		return nil
	}
	if state[nodeIndex] == 1 {
		return fmt.Errorf("node親子関係に循環があります: %d", nodeIndex)
	}
	state[nodeIndex] = 1

	localTranslation, err := parseNodeVec3(nodes[nodeIndex].Translation)
	if err != nil {
		return fmt.Errorf("node.translation が不正です: index=%d: %w", nodeIndex, err)
	}
	localRotation, err := parseNodeQuaternion(nodes[nodeIndex].Rotation)
	if err != nil {
		return fmt.Errorf("node.rotation が不正です: index=%d: %w", nodeIndex, err)
	}
	bindRotations[nodeIndex] = localRotation

	parentIndex := parents[nodeIndex]
	if parentIndex < 0 {
		worldPositions[nodeIndex] = localTranslation
		worldRotations[nodeIndex] = localRotation
		state[nodeIndex] = 2
		return nil
	}

	if err := resolveNodeTransform(nodes, parents, parentIndex, state,
		worldPositions, worldRotations, bindRotations); err != nil {
		return err
	}
	rotated := worldRotations[parentIndex].MulVec3(
		&mmath.MVec3{X: localTranslation.X, Y: localTranslation.Y, Z: localTranslation.Z})
	worldPositions[nodeIndex] = r3.Add(worldPositions[parentIndex],
		r3.Vec{X: rotated.X, Y: rotated.Y, Z: rotated.Z})
	worldRotations[nodeIndex] = worldRotations[parentIndex].Muled(localRotation).Normalized()
	state[nodeIndex] = 2
	return nil
}

// parseNodeVec3 は省略可能な3要素スライスを解析する。
func parseNodeVec3(values []float64) (r3.Vec, error) {
	if len(values) == 0 {
		return r3.Vec{}, nil
	}
	if len(values) != 3 {
		return r3.Vec{}, fmt.Errorf("要素数が不正です: %d", len(values))
	}
	return r3.Vec{X: values[0], Y: values[1], Z: values[2]}, nil
}

// parseNodeQuaternion は省略可能な[x,y,z,w]スライスを解析する。
func parseNodeQuaternion(values []float64) (*mmath.MQuaternion, error) {
	if len(values) == 0 {
		return mmath.NewMQuaternionByValues(0, 0, 0, 1), nil
	}
	if len(values) != 4 {
		return nil, fmt.Errorf("要素数が不正です: %d", len(values))
	}
	q := mmath.NewMQuaternionByValues(values[0], values[1], values[2], values[3])
	return q.Normalized(), nil
}
