// 指示: miu200521358
package io_motion

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/miu200521358/mu_motion_blend/pkg/domain"
)

// composedPoseDocument は合成済みポーズ列の外部表現を表す。
type composedPoseDocument struct {
	Name        string                            `json:"name"`
	TotalFrames int                               `json:"totalFrames"`
	Duration    float64                           `json:"duration"`
	IsDelta     bool                              `json:"isDelta"`
	Bones       map[string][]boneKeyframeDocument `json:"bones"`
}

// boneKeyframeDocument はキーフレーム1件分の外部表現を表す。
// 回転は[x,y,z,w]順の四元数となる。
type boneKeyframeDocument struct {
	Frame    float64    `json:"frame"`
	Rotation [4]float64 `json:"rotation"`
}

// SaveComposedPose は合成済みポーズ列をJSONへ書き出す。
func SaveComposedPose(path string, data *domain.ComposedPoseData) error {
	if data == nil {
		return fmt.Errorf("合成済みポーズがnilです")
	}

	doc := composedPoseDocument{
		Name:        data.Name,
		TotalFrames: data.TotalFrames,
		Duration:    data.Duration,
		IsDelta:     data.IsDelta,
		Bones:       make(map[string][]boneKeyframeDocument, len(data.Bones)),
	}
	for name, keyframes := range data.Bones {
		track := make([]boneKeyframeDocument, 0, len(keyframes))
		for _, keyframe := range keyframes {
			track = append(track, boneKeyframeDocument{
				Frame: keyframe.Frame,
				Rotation: [4]float64{
					keyframe.Rotation.X, keyframe.Rotation.Y,
					keyframe.Rotation.Z, keyframe.Rotation.W,
				},
			})
		}
		doc.Bones[name] = track
	}

	b, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return fmt.Errorf("合成済みポーズJSONの生成に失敗しました: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("合成済みポーズファイルの書き込みに失敗しました: %w", err)
	}
	return nil
}
