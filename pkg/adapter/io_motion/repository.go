// 指示: miu200521358
package io_motion

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/miu200521358/mlib_go/pkg/config/mlog"
	"github.com/miu200521358/mu_motion_blend/pkg/domain"
)

// motionDocument はモーション定義JSONの外部表現を表す。
// キーフレーム時刻はJSONオブジェクトキーの制約により文字列で保持される。
type motionDocument struct {
	Name           string                       `json:"name"`
	Duration       float64                      `json:"duration"`
	IsDelta        bool                         `json:"isDelta"`
	Joints         map[string]map[string]float64 `json:"joints"`
	RigAdjustments map[string]float64           `json:"rigAdjustments"`
}

// MotionRepository はモーション定義JSONの読み込み契約を表す。
type MotionRepository struct {
}

// NewMotionRepository はMotionRepositoryを生成する。
func NewMotionRepository() *MotionRepository {
	return &MotionRepository{}
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *MotionRepository) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// InferName はパスから表示名を推定する。
func (r *MotionRepository) InferName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

// Load はモーション定義を読み込む。
// 全長が0以下、または解析不能なキーフレーム時刻を含む場合はエラーを返す。
func (r *MotionRepository) Load(path string) (*domain.MotionDefinition, error) {
	if !r.CanLoad(path) {
		return nil, fmt.Errorf("モーション定義の拡張子が不正です: %s", path)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("モーション定義ファイルの読み取りに失敗しました: %w", err)
	}

	doc := motionDocument{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("モーション定義JSONの解析に失敗しました: %w", err)
	}
	if doc.Duration <= 0 {
		return nil, fmt.Errorf("モーション定義の全長が不正です: duration=%f", doc.Duration)
	}

	motion := &domain.MotionDefinition{
		Name:           doc.Name,
		Duration:       doc.Duration,
		IsDelta:        doc.IsDelta,
		Joints:         make(map[string]map[float64]float64, len(doc.Joints)),
		RigAdjustments: doc.RigAdjustments,
	}
	if motion.Name == "" {
		motion.Name = r.InferName(path)
	}

	for key, frames := range doc.Joints {
		if _, _, ok := domain.ParseMotionKey(key); !ok {
			return nil, fmt.Errorf("モーション定義の関節キーが不正です: key=%s", key)
		}
		track := make(map[float64]float64, len(frames))
		for timeText, degrees := range frames {
			t, err := strconv.ParseFloat(timeText, 64)
			if err != nil {
				return nil, fmt.Errorf("モーション定義のキーフレーム時刻が不正です: key=%s time=%s: %w", key, timeText, err)
			}
			if t < 0 || t > doc.Duration {
				return nil, fmt.Errorf("モーション定義のキーフレーム時刻が全長外です: key=%s time=%f", key, t)
			}
			track[t] = degrees
		}
		motion.Joints[key] = track
	}

	for key := range doc.RigAdjustments {
		if _, _, ok := domain.ParseMotionKey(key); !ok {
			return nil, fmt.Errorf("モーション定義の静的調整キーが不正です: key=%s", key)
		}
	}

	mlog.D("モーション定義読込完了: name=%s duration=%.2f joints=%d delta=%t",
		motion.Name, motion.Duration, len(motion.Joints), motion.IsDelta)
	return motion, nil
}

// Save はモーション定義をJSONへ書き出す。
func (r *MotionRepository) Save(path string, motion *domain.MotionDefinition) error {
	if motion == nil {
		return fmt.Errorf("モーション定義がnilです")
	}

	doc := motionDocument{
		Name:           motion.Name,
		Duration:       motion.Duration,
		IsDelta:        motion.IsDelta,
		Joints:         make(map[string]map[string]float64, len(motion.Joints)),
		RigAdjustments: motion.RigAdjustments,
	}
	for key, frames := range motion.Joints {
		track := make(map[string]float64, len(frames))
		for t, degrees := range frames {
			track[strconv.FormatFloat(t, 'f', -1, 64)] = degrees
		}
		doc.Joints[key] = track
	}

	b, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return fmt.Errorf("モーション定義JSONの生成に失敗しました: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("モーション定義ファイルの書き込みに失敗しました: %w", err)
	}
	return nil
}
