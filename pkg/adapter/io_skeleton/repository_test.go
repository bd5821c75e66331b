// 指示: miu200521358
package io_skeleton

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestSkeletonJSON(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skeleton.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	return path
}

func TestSkeletonRepositoryLoad(t *testing.T) {
	path := writeTestSkeletonJSON(t, `{
		"name": "avatar",
		"bones": [
			{"name": "mixamorig:Hips", "position": [0, 0.9, 0]},
			{"name": "mixamorig:Spine", "parentIndex": 0, "position": [0, 1.0, 0],
			 "bindRotation": [0, 0, 0.258819, 0.9659258]}
		]
	}`)

	skeleton, err := NewSkeletonRepository().Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if skeleton.Name != "avatar" {
		t.Fatalf("name mismatch: %s", skeleton.Name)
	}
	if skeleton.Len() != 2 {
		t.Fatalf("bone count mismatch: %d", skeleton.Len())
	}

	hips, exists := skeleton.Bone("mixamorig:Hips")
	if !exists {
		t.Fatalf("hips missing")
	}
	if hips.ParentIndex != -1 {
		t.Fatalf("omitted parent must be -1: %d", hips.ParentIndex)
	}
	if math.Abs(hips.Position.Y-0.9) > 1e-9 {
		t.Fatalf("position mismatch: %f", hips.Position.Y)
	}
	// 省略時のバインド回転は単位回転
	if math.Abs(hips.BindRotation.W-1) > 1e-9 {
		t.Fatalf("default bind rotation mismatch: %f", hips.BindRotation.W)
	}

	spine, _ := skeleton.Bone("mixamorig:Spine")
	if spine.ParentIndex != 0 {
		t.Fatalf("parent index mismatch: %d", spine.ParentIndex)
	}
	if math.Abs(spine.BindRotation.Z-0.258819) > 1e-6 {
		t.Fatalf("bind rotation mismatch: %f", spine.BindRotation.Z)
	}
}

func TestSkeletonRepositoryLoadInfersName(t *testing.T) {
	path := writeTestSkeletonJSON(t, `{"bones": [{"name": "root", "position": [0,0,0]}]}`)
	skeleton, err := NewSkeletonRepository().Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if skeleton.Name != "skeleton" {
		t.Fatalf("inferred name mismatch: %s", skeleton.Name)
	}
}

func TestSkeletonRepositoryLoadRejectsBadInput(t *testing.T) {
	tests := []struct {
		label   string
		content string
		keyword string
	}{
		{"no bones", `{"name": "empty", "bones": []}`, "ボーン"},
		{"empty bone name", `{"bones": [{"name": "", "position": [0,0,0]}]}`, "ボーン名"},
		{"forward parent", `{"bones": [{"name": "a", "parentIndex": 1, "position": [0,0,0]},
			{"name": "b", "position": [0,0,0]}]}`, "親index"},
		{"self parent", `{"bones": [{"name": "a", "parentIndex": 0, "position": [0,0,0]}]}`, "親index"},
		{"bad rotation length", `{"bones": [{"name": "a", "position": [0,0,0],
			"bindRotation": [0, 0, 1]}]}`, "要素数"},
		{"broken json", `{"bones": `, "解析"},
	}
	repository := NewSkeletonRepository()
	for _, tt := range tests {
		path := writeTestSkeletonJSON(t, tt.content)
		_, err := repository.Load(path)
		if err == nil {
			t.Fatalf("%s: expected error", tt.label)
		}
		if !strings.Contains(err.Error(), tt.keyword) {
			t.Fatalf("%s: unexpected error: %v", tt.label, err)
		}
	}
}

func TestSkeletonRepositoryRejectsExtension(t *testing.T) {
	repository := NewSkeletonRepository()
	if repository.CanLoad("skeleton.glb") {
		t.Fatalf("non-json must be rejected")
	}
	if _, err := repository.Load("skeleton.glb"); err == nil {
		t.Fatalf("load must reject non-json extension")
	}
}
