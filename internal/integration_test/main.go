// 指示: miu200521358
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/miu200521358/mlib_go/pkg/domain/mmath"
	"github.com/miu200521358/mu_motion_blend/pkg/domain"
	"github.com/miu200521358/mu_motion_blend/pkg/playback"
	"github.com/miu200521358/mu_motion_blend/pkg/usecase"
	"gonum.org/v1/gonum/spatial/r3"
)

// checkResult は1検証ケースの結果を表す。
type checkResult struct {
	Name     string
	Status   string
	Duration time.Duration
	Err      error
}

// main はリグ系統別のモーション合成・ブレンド再生の一括検証を実行する。
func main() {
	os.Exit(run())
}

// run は全検証ケースを実行し、終了コードを返す。
func run() int {
	failFast := flag.Bool("failfast", false, "最初の失敗で打ち切る")
	flag.Parse()

	checks := []struct {
		name string
		fn   func() error
	}{
		{"mixamo_blend_pipeline", checkMixamoBlendPipeline},
		{"bip_bind_pose_hold", checkBipBindPoseHold},
		{"delta_over_base_playback", checkDeltaOverBasePlayback},
		{"pose_sync_chain", checkPoseSyncChain},
		{"unusable_skeleton_rejection", checkUnusableSkeletonRejection},
	}

	results := make([]checkResult, 0, len(checks))
	hasFailed := false
	for _, check := range checks {
		start := time.Now()
		err := check.fn()
		result := checkResult{Name: check.name, Duration: time.Since(start), Err: err}
		if err != nil {
			result.Status = "FAIL"
			hasFailed = true
		} else {
			result.Status = "OK"
		}
		results = append(results, result)
		if err != nil && *failFast {
			break
		}
	}

	printSummary(results)
	if hasFailed {
		return 1
	}
	return 0
}

// printSummary は検証結果の一覧を出力する。
func printSummary(results []checkResult) {
	fmt.Println("==== 検証結果 ====")
	for _, result := range results {
		fmt.Printf("[%s] %s (%.3fs)\n", result.Status, result.Name, result.Duration.Seconds())
		if result.Err != nil {
			fmt.Printf("       %v\n", result.Err)
		}
	}
}

// newMixamoSkeleton は検証用のMixamo系スケルトンを構築する。
func newMixamoSkeleton() *domain.Skeleton {
	names := []struct {
		name   string
		parent int
		y      float64
	}{
		{"mixamorig:Hips", -1, 0.9},
		{"mixamorig:Spine", 0, 1.0},
		{"mixamorig:Spine1", 1, 1.1},
		{"mixamorig:Spine2", 2, 1.2},
		{"mixamorig:Head", 3, 1.5},
		{"mixamorig:LeftArm", 3, 1.35},
		{"mixamorig:RightArm", 3, 1.35},
		{"mixamorig:LeftForeArm", 5, 1.1},
		{"mixamorig:RightForeArm", 6, 1.1},
		{"mixamorig:LeftUpLeg", 0, 0.8},
		{"mixamorig:RightUpLeg", 0, 0.8},
		{"mixamorig:LeftLeg", 9, 0.45},
		{"mixamorig:RightLeg", 10, 0.45},
		{"mixamorig:LeftFoot", 11, 0.05},
		{"mixamorig:RightFoot", 12, 0.05},
	}
	bones := make([]*domain.Bone, 0, len(names))
	for _, entry := range names {
		bones = append(bones, &domain.Bone{
			Name:        entry.name,
			ParentIndex: entry.parent,
			Position:    r3.Vec{Y: entry.y},
		})
	}
	return domain.NewSkeleton("it_mixamo", bones)
}

// newBipSkeleton は検証用のBip01系スケルトンを構築する。
func newBipSkeleton() *domain.Skeleton {
	names := []struct {
		name   string
		parent int
	}{
		{"Bip01 Pelvis", -1},
		{"Bip01 Spine", 0},
		{"Bip01 Spine2", 1},
		{"Bip01 Head", 2},
		{"Bip01 L UpperArm", 2},
		{"Bip01 R UpperArm", 2},
		{"Bip01 L Forearm", 4},
		{"Bip01 R Forearm", 5},
		{"Bip01 L Thigh", 0},
		{"Bip01 R Thigh", 0},
		{"Bip01 L Calf", 8},
		{"Bip01 R Calf", 9},
		{"Bip01 L Foot", 10},
		{"Bip01 R Foot", 11},
	}
	bones := make([]*domain.Bone, 0, len(names))
	for _, entry := range names {
		bones = append(bones, &domain.Bone{Name: entry.name, ParentIndex: entry.parent})
	}
	return domain.NewSkeleton("it_bip", bones)
}

// checkMixamoBlendPipeline は合成からブレンド再生までの一連の経路を検証する。
func checkMixamoBlendPipeline() error {
	skeleton := newMixamoSkeleton()
	blendData := usecase.CreatePoseData(skeleton, nil)
	if blendData == nil {
		return fmt.Errorf("ブレンドポーズの構築に失敗しました")
	}
	if blendData.Idle.TotalFrames != 120 || blendData.Walk.TotalFrames != 36 {
		return fmt.Errorf("フレーム数が不正です: idle=%d walk=%d",
			blendData.Idle.TotalFrames, blendData.Walk.TotalFrames)
	}

	controller := playback.NewBlendController(skeleton, blendData, 5)
	const dt = 1.0 / 60
	for i := 0; i < 600; i++ {
		input := 0.0
		if i >= 120 && i < 360 {
			input = 1.0
		}
		controller.Update(input, dt)
		idle, walk := controller.Weights()
		if math.Abs(idle+walk-1) > 1e-12 {
			return fmt.Errorf("重み保存則が破れています: idle=%f walk=%f", idle, walk)
		}
	}
	_, walk := controller.Weights()
	if walk != 0 {
		return fmt.Errorf("入力停止後に歩行重みが残っています: %f", walk)
	}
	return nil
}

// checkBipBindPoseHold はBip系の零保持(バインドポーズ厳守)を検証する。
func checkBipBindPoseHold() error {
	skeleton := newBipSkeleton()
	motion := &domain.MotionDefinition{
		Name:     "bip_still",
		Duration: 1.0,
		Joints: map[string]map[float64]float64{
			"headX": {0.0: 0},
		},
	}
	composed := usecase.CreateSingleMotionPoseData(skeleton, motion, nil, false)
	if composed == nil {
		return fmt.Errorf("Bip合成に失敗しました")
	}

	// 記述の無い左ひざは単位回転(レスト=単位バインド)を保持する
	keyframes, exists := composed.Bones["Bip01 L Calf"]
	if !exists {
		return fmt.Errorf("既定保持が欠落しています")
	}
	rotation := domain.EvaluateBoneTrack(keyframes, 15, composed.TotalFrames)
	if math.Abs(math.Abs(rotation.W)-1) > 1e-9 {
		return fmt.Errorf("Bipの零保持が破れています: w=%f", rotation.W)
	}
	return nil
}

// checkDeltaOverBasePlayback はデルタ再生と基底モーションの合成順を検証する。
func checkDeltaOverBasePlayback() error {
	skeleton := newMixamoSkeleton()
	blendData := usecase.CreatePoseData(skeleton, nil)
	if blendData == nil {
		return fmt.Errorf("基底モーションの構築に失敗しました")
	}

	delta := &domain.MotionDefinition{
		Name:     "nod_delta",
		Duration: 1.0,
		IsDelta:  true,
		Joints: map[string]map[float64]float64{
			"headX": {0.0: 0, 0.5: 20, 1.0: 0},
		},
	}
	composedDelta := usecase.CreateSingleMotionPoseData(skeleton, delta, nil, false)
	if composedDelta == nil {
		return fmt.Errorf("デルタ合成に失敗しました")
	}

	player := playback.NewMotionPlayer(skeleton, composedDelta, false)
	player.SetBaseData(blendData.Idle)
	for i := 0; i < 90; i++ {
		player.Update(1.0 / 60)
	}
	if !player.Finished() {
		return fmt.Errorf("ワンショット再生が終了しません")
	}
	return nil
}

// checkPoseSyncChain はチェーン回転補正付きのポーズ同期を検証する。
func checkPoseSyncChain() error {
	source := newMixamoSkeleton()
	target := newMixamoSkeleton()
	sourceCache := usecase.CaptureRestPoses(source)
	if sourceCache == nil {
		return fmt.Errorf("レストポーズ取得に失敗しました")
	}

	state := usecase.InitPoseSync(source, sourceCache, target, true)
	if state == nil {
		return fmt.Errorf("ポーズ同期の初期化に失敗しました")
	}
	if state.ImportedCache == nil {
		return fmt.Errorf("レストキャッシュ取り込みに失敗しました")
	}

	head, _ := source.Bone("mixamorig:Head")
	head.Rotation = mmath.NewMQuaternionFromDegrees(0, 25, 0)
	usecase.SyncPoseFromGLB(state)

	targetHead, _ := target.Bone("mixamorig:Head")
	if math.Abs(targetHead.Rotation.Y-head.Rotation.Y) > 1e-9 {
		return fmt.Errorf("ポーズ複写が一致しません: %f != %f",
			targetHead.Rotation.Y, head.Rotation.Y)
	}
	return nil
}

// checkUnusableSkeletonRejection は対応ボーン皆無スケルトンの拒否を検証する。
func checkUnusableSkeletonRejection() error {
	skeleton := domain.NewSkeleton("props", []*domain.Bone{
		{Name: "crate", ParentIndex: -1},
		{Name: "barrel", ParentIndex: 0},
	})
	if blendData := usecase.CreatePoseData(skeleton, nil); blendData != nil {
		return fmt.Errorf("使用不能スケルトンが拒否されていません")
	}
	return nil
}
