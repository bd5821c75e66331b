// 指示: miu200521358
package playback

import (
	"math"
	"sort"

	"github.com/miu200521358/mu_motion_blend/pkg/domain"
)

const (
	// blendSnapThreshold はブレンド重みの吸着しきい値を表す。
	// しきい値内の端数は厳密な0/1へ吸着し、浮動小数の残滓で両モーションを評価し続けない。
	blendSnapThreshold = 0.01
	// defaultBlendSharpness は遷移鋭さの既定値を表す。
	defaultBlendSharpness = 5.0
)

// BlendController は待機・歩行2モーションを入力に応じて連続ブレンドする。
// 重みはフレームレート非依存の指数追従で目標へ収束し、待機重みは常に 1-歩行重み を保つ。
type BlendController struct {
	skeleton *domain.Skeleton
	data     *domain.BlendPoseData

	idleTime float64
	walkTime float64

	walkWeight float64
	sharpness  float64
	// walkPlayRate は歩行側の再生速度倍率を表す。重みが零の間は更新せず、
	// 歩行が再開したとき直前の歩調から滑らかに続くようにする。
	walkPlayRate float64

	boneNames []string
	disposed  bool
}

// NewBlendController はブレンドコントローラーを構築する。
// sharpness に0以下を渡すと既定値を使う。初期状態は待機100%となる。
func NewBlendController(skeleton *domain.Skeleton, data *domain.BlendPoseData, sharpness float64) *BlendController {
	if sharpness <= 0 {
		sharpness = defaultBlendSharpness
	}
	return &BlendController{
		skeleton:     skeleton,
		data:         data,
		sharpness:    sharpness,
		walkPlayRate: 1,
		boneNames:    collectBlendBoneNames(data),
	}
}

// Update は移動入力(0..1)とdt秒から重みを更新し、ブレンド結果を全ボーンへ書き込む。
// 重み更新は factor = 1 - e^(-sharpness*dt) の指数追従で、dtの刻み方に依存しない。
func (c *BlendController) Update(moveInput float64, dt float64) {
	if c.disposed || c.data == nil || c.data.Idle == nil || c.data.Walk == nil {
		return
	}

	targetWalk := clamp01(moveInput)
	factor := 1 - math.Exp(-c.sharpness*dt)
	c.walkWeight += (targetWalk - c.walkWeight) * factor

	if c.walkWeight < blendSnapThreshold {
		c.walkWeight = 0
	} else if c.walkWeight > 1-blendSnapThreshold {
		c.walkWeight = 1
	}

	if c.walkWeight > 0 && targetWalk > 0 {
		c.walkPlayRate = targetWalk
	}

	c.idleTime = wrapTime(c.idleTime+dt, c.data.Idle.Duration)
	if c.walkWeight > 0 {
		c.walkTime = wrapTime(c.walkTime+dt*c.walkPlayRate, c.data.Walk.Duration)
	}

	c.writePose()
}

// Weights は現在の(待機, 歩行)重みを返す。和は常に1となる。
func (c *BlendController) Weights() (idle float64, walk float64) {
	return 1 - c.walkWeight, c.walkWeight
}

// Reset は再生時間と重みを初期状態(待機100%)へ戻す。
func (c *BlendController) Reset() {
	c.idleTime = 0
	c.walkTime = 0
	c.walkWeight = 0
	c.walkPlayRate = 1
}

// Dispose はコントローラーを破棄する。以後の更新は何もしない。
func (c *BlendController) Dispose() {
	c.disposed = true
	c.data = nil
	c.boneNames = nil
}

// writePose は現在の重みで両モーションを球面線形補間し、全対象ボーンへ書き込む。
// 重みが厳密に0または1の側は評価自体を省略する。
func (c *BlendController) writePose() {
	if c.skeleton == nil {
		return
	}

	idleFrame := c.idleTime * domain.FramesPerSecond
	walkFrame := c.walkTime * domain.FramesPerSecond

	for _, name := range c.boneNames {
		bone, exists := c.skeleton.Bone(name)
		if !exists {
			continue
		}
		switch {
		case c.walkWeight <= 0:
			bone.Rotation = domain.EvaluateBoneTrack(c.data.Idle.Bones[name], idleFrame, c.data.Idle.TotalFrames)
		case c.walkWeight >= 1:
			bone.Rotation = domain.EvaluateBoneTrack(c.data.Walk.Bones[name], walkFrame, c.data.Walk.TotalFrames)
		default:
			idleRotation := domain.EvaluateBoneTrack(c.data.Idle.Bones[name], idleFrame, c.data.Idle.TotalFrames)
			walkRotation := domain.EvaluateBoneTrack(c.data.Walk.Bones[name], walkFrame, c.data.Walk.TotalFrames)
			bone.Rotation = idleRotation.Slerp(walkRotation, c.walkWeight)
		}
	}
}

// collectBlendBoneNames は両モーションの対象ボーン名の和集合を昇順で返す。
func collectBlendBoneNames(data *domain.BlendPoseData) []string {
	if data == nil || data.Idle == nil || data.Walk == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(data.Idle.Bones))
	names := make([]string, 0, len(data.Idle.Bones))
	for name := range data.Idle.Bones {
		seen[name] = struct{}{}
		names = append(names, name)
	}
	for name := range data.Walk.Bones {
		if _, exists := seen[name]; exists {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// wrapTime は時間を[0, duration)へ巻き戻す。
func wrapTime(t float64, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	t = math.Mod(t, duration)
	if t < 0 {
		t += duration
	}
	return t
}

// clamp01 は値を[0,1]へ収める。
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
