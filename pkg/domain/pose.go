// 指示: miu200521358
package domain

import (
	"sort"

	"github.com/miu200521358/mlib_go/pkg/domain/mmath"
)

// RestPoseCache はボーン名→バインド時回転の不変キャッシュを表す。
// スケルトン読み込み直後に一度だけ取得され、以後ライブ回転から再取得してはならない。
type RestPoseCache struct {
	rotations map[string]*mmath.MQuaternion
}

// NewRestPoseCache は空のレストポーズキャッシュを構築する。
func NewRestPoseCache() *RestPoseCache {
	return &RestPoseCache{rotations: make(map[string]*mmath.MQuaternion)}
}

// Set はボーンのレスト回転を登録する。取得時に一度だけ呼ばれる。
func (c *RestPoseCache) Set(boneName string, rotation *mmath.MQuaternion) {
	if rotation == nil {
		return
	}
	c.rotations[boneName] = rotation
}

// Rest はボーンのレスト回転を返す。
func (c *RestPoseCache) Rest(boneName string) (*mmath.MQuaternion, bool) {
	rotation, exists := c.rotations[boneName]
	return rotation, exists
}

// Len は登録済みボーン数を返す。
func (c *RestPoseCache) Len() int {
	return len(c.rotations)
}

// BoneNames は登録済みボーン名を返す。
func (c *RestPoseCache) BoneNames() []string {
	names := make([]string, 0, len(c.rotations))
	for name := range c.rotations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SymmetryCorrections は右側ボーン名→対称補正回転の表を表す。
// 補正不要なボーンは含まれない。
type SymmetryCorrections struct {
	corrections map[string]*mmath.MQuaternion
}

// NewSymmetryCorrections は空の対称補正表を構築する。
func NewSymmetryCorrections() *SymmetryCorrections {
	return &SymmetryCorrections{corrections: make(map[string]*mmath.MQuaternion)}
}

// Set はボーンの対称補正を登録する。
func (s *SymmetryCorrections) Set(boneName string, correction *mmath.MQuaternion) {
	if correction == nil {
		return
	}
	s.corrections[boneName] = correction
}

// Correction はボーンの対称補正を返す。
func (s *SymmetryCorrections) Correction(boneName string) (*mmath.MQuaternion, bool) {
	correction, exists := s.corrections[boneName]
	return correction, exists
}

// Len は登録済み補正数を返す。
func (s *SymmetryCorrections) Len() int {
	return len(s.corrections)
}

// BoneKeyframe は合成済みポーズの1キーフレームを表す。
type BoneKeyframe struct {
	Frame    float64
	Rotation *mmath.MQuaternion
}

// ComposedPoseData は1(スケルトン, モーション)対の合成済みポーズ列を表す。
// 構築後は不変で、同一対の複数プレイヤーで共有できる。
type ComposedPoseData struct {
	Name        string
	Bones       map[string][]BoneKeyframe
	TotalFrames int
	Duration    float64
	IsDelta     bool
}

// BlendPoseData は待機・歩行2モーションのブレンド用合成結果を表す。
type BlendPoseData struct {
	Idle           *ComposedPoseData
	Walk           *ComposedPoseData
	IdleFrameCount int
	WalkFrameCount int
}

// EvaluateBoneTrack は指定フレームにおけるキーフレーム列の回転を評価する。
// キー間は球面線形補間、最終キー以降はモーション全長まで先頭キーへ巻き戻す。
// 単一キーは定値保持、空列は単位回転を返す。
func EvaluateBoneTrack(keyframes []BoneKeyframe, frame float64, totalFrames int) *mmath.MQuaternion {
	if len(keyframes) == 0 {
		return mmath.NewMQuaternionByValues(0, 0, 0, 1)
	}
	if len(keyframes) == 1 {
		return keyframes[0].Rotation.Copy()
	}

	first := keyframes[0]
	last := keyframes[len(keyframes)-1]

	if frame <= first.Frame {
		return first.Rotation.Copy()
	}
	if frame >= last.Frame {
		// 最終キー以降は残りフレームで先頭キーへ戻し、ループの継ぎ目を補間する
		remaining := float64(totalFrames) - last.Frame
		if remaining <= 1e-8 {
			return last.Rotation.Copy()
		}
		t := (frame - last.Frame) / remaining
		if t > 1 {
			t = 1
		}
		return last.Rotation.Slerp(first.Rotation, t)
	}

	for i := 1; i < len(keyframes); i++ {
		if frame > keyframes[i].Frame {
			continue
		}
		prev := keyframes[i-1]
		next := keyframes[i]
		span := next.Frame - prev.Frame
		if span <= 1e-8 {
			return next.Rotation.Copy()
		}
		t := (frame - prev.Frame) / span
		return prev.Rotation.Slerp(next.Rotation, t)
	}

	return last.Rotation.Copy()
}
