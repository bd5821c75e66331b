// 指示: miu200521358
package playback

import (
	"math"

	"github.com/miu200521358/mu_motion_blend/pkg/domain"
)

// MotionPlayer は合成済みポーズ列を時間で再生し、ボーン回転を書き込む。
// 状態はインスタンス単位であり共有してはならない。合成済みポーズ列自体は
// 同一(スケルトン, モーション)対の複数プレイヤーで共有できる。
type MotionPlayer struct {
	skeleton *domain.Skeleton
	data     *domain.ComposedPoseData
	base     *domain.ComposedPoseData

	time     float64
	baseTime float64
	loop     bool
	finished bool
	disposed bool
}

// NewMotionPlayer はモーションプレイヤーを構築する。
func NewMotionPlayer(skeleton *domain.Skeleton, data *domain.ComposedPoseData, loop bool) *MotionPlayer {
	return &MotionPlayer{
		skeleton: skeleton,
		data:     data,
		loop:     loop,
	}
}

// Update は再生時間をdt秒進め、全対象ボーンの回転を書き込む。
// ループ時は全長で巻き戻し、非ループ時は全長で停止して終了フラグを立てる。
// 基底モーションの時間は独立して進み、常にループする(恒常的な待機サイクルを表す)。
func (p *MotionPlayer) Update(dt float64) {
	if p.disposed || p.data == nil || p.data.Duration <= 0 {
		return
	}

	p.time += dt
	if p.loop {
		p.time = math.Mod(p.time, p.data.Duration)
		if p.time < 0 {
			p.time += p.data.Duration
		}
	} else if p.time >= p.data.Duration {
		p.time = p.data.Duration
		p.finished = true
	}

	if p.base != nil && p.base.Duration > 0 {
		p.baseTime = math.Mod(p.baseTime+dt, p.base.Duration)
	}

	p.writePose()
}

// SeekTo は再生時間を[0, 全長]へ収めて移動し、即座に全ボーンへ回転を書き込む。
func (p *MotionPlayer) SeekTo(t float64) {
	if p.disposed || p.data == nil {
		return
	}
	if t < 0 {
		t = 0
	}
	if t > p.data.Duration {
		t = p.data.Duration
	}
	p.time = t
	p.writePose()
}

// SetData は合成済みポーズ列を差し替える。
// ホットスワップ編集を途切れさせないため、再生時間は意図的にリセットしない。
func (p *MotionPlayer) SetData(data *domain.ComposedPoseData) {
	p.data = data
	p.finished = false
}

// SetBaseData は基底モーションを差し替える。nil を渡すと純粋な絶対再生へ戻る。
func (p *MotionPlayer) SetBaseData(base *domain.ComposedPoseData) {
	p.base = base
	if base == nil {
		p.baseTime = 0
	}
}

// Reset は再生時間と終了フラグを初期状態へ戻す。
func (p *MotionPlayer) Reset() {
	p.time = 0
	p.baseTime = 0
	p.finished = false
}

// Dispose はプレイヤーを破棄する。以後の更新は何もしない。
func (p *MotionPlayer) Dispose() {
	p.disposed = true
	p.data = nil
	p.base = nil
}

// Finished は非ループ再生が全長へ到達したか返す。
func (p *MotionPlayer) Finished() bool {
	return p.finished
}

// Time は現在の再生時間(秒)を返す。
func (p *MotionPlayer) Time() float64 {
	return p.time
}

// writePose は現在時間の回転を全対象ボーンへ書き込む。
// 基底が束縛されている場合、最終回転は base * delta の順で合成される。
func (p *MotionPlayer) writePose() {
	if p.skeleton == nil {
		return
	}

	frame := p.time * domain.FramesPerSecond
	var baseFrame float64
	if p.base != nil {
		baseFrame = p.baseTime * domain.FramesPerSecond
	}

	for name, keyframes := range p.data.Bones {
		bone, exists := p.skeleton.Bone(name)
		if !exists {
			continue
		}
		rotation := domain.EvaluateBoneTrack(keyframes, frame, p.data.TotalFrames)
		if p.base != nil {
			baseRotation := domain.EvaluateBoneTrack(p.base.Bones[name], baseFrame, p.base.TotalFrames)
			rotation = baseRotation.Muled(rotation).Normalized()
		}
		bone.Rotation = rotation
	}

	if p.base == nil {
		return
	}
	// 主モーションに無いボーンは基底のみで駆動する
	for name, keyframes := range p.base.Bones {
		if _, exists := p.data.Bones[name]; exists {
			continue
		}
		bone, exists := p.skeleton.Bone(name)
		if !exists {
			continue
		}
		bone.Rotation = domain.EvaluateBoneTrack(keyframes, baseFrame, p.base.TotalFrames)
	}
}
