// 指示: miu200521358
package io_skeleton

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// writeTestGLB はglTF JSONをGLBコンテナへ包んで書き出す。
func writeTestGLB(t *testing.T, path string, doc map[string]any) {
	t.Helper()
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	for len(jsonBytes)%4 != 0 {
		jsonBytes = append(jsonBytes, ' ')
	}

	buf := bytes.NewBuffer(nil)
	total := glbHeaderLength + glbChunkHeadSize + len(jsonBytes)
	binary.Write(buf, binary.LittleEndian, uint32(glbMagic))
	binary.Write(buf, binary.LittleEndian, uint32(2))
	binary.Write(buf, binary.LittleEndian, uint32(total))
	binary.Write(buf, binary.LittleEndian, uint32(len(jsonBytes)))
	binary.Write(buf, binary.LittleEndian, uint32(glbJSONChunkType))
	buf.Write(jsonBytes)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestGlbSkeletonRepositoryLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "avatar.glb")
	writeTestGLB(t, path, map[string]any{
		"asset": map[string]any{"version": "2.0"},
		"nodes": []any{
			map[string]any{
				"name":     "Armature",
				"children": []int{1},
				"rotation": []float64{0, 0.7071068, 0, 0.7071068},
			},
			map[string]any{
				"name":        "mixamorig:Hips",
				"children":    []int{2},
				"translation": []float64{0, 0.9, 0},
			},
			map[string]any{
				"name":        "mixamorig:Head",
				"translation": []float64{0.5, 0.6, 0},
			},
		},
	})

	skeleton, err := NewGlbSkeletonRepository().Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if skeleton.Name != "avatar" {
		t.Fatalf("name mismatch: %s", skeleton.Name)
	}
	if skeleton.Len() != 3 {
		t.Fatalf("bone count mismatch: %d", skeleton.Len())
	}

	hips, exists := skeleton.Bone("mixamorig:Hips")
	if !exists {
		t.Fatalf("hips missing")
	}
	if hips.ParentIndex != 0 {
		t.Fatalf("hips parent mismatch: %d", hips.ParentIndex)
	}
	if math.Abs(hips.Position.Y-0.9) > 1e-6 {
		t.Fatalf("hips position mismatch: %f", hips.Position.Y)
	}

	// HeadのローカルX+0.5はコンテナのY+90度回転を経てワールドZ軸へ移る
	head, _ := skeleton.Bone("mixamorig:Head")
	if math.Abs(head.Position.Z+0.5) > 1e-6 {
		t.Fatalf("rotated world position mismatch: %+v", head.Position)
	}
	if math.Abs(head.Position.Y-1.5) > 1e-6 {
		t.Fatalf("world Y accumulation mismatch: %+v", head.Position)
	}

	// バインド回転はローカル回転を保持する(ワールド合成ではない)
	armature, _ := skeleton.Bone("Armature")
	if math.Abs(armature.BindRotation.Y-0.7071068) > 1e-6 {
		t.Fatalf("armature bind rotation mismatch: %f", armature.BindRotation.Y)
	}
	if math.Abs(hips.BindRotation.W-1) > 1e-6 {
		t.Fatalf("hips bind rotation must stay identity: %f", hips.BindRotation.W)
	}
}

func TestGlbSkeletonRepositoryRejectsBrokenGLB(t *testing.T) {
	repository := NewGlbSkeletonRepository()
	tempDir := t.TempDir()

	shortPath := filepath.Join(tempDir, "short.glb")
	if err := os.WriteFile(shortPath, []byte("xx"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := repository.Load(shortPath); err == nil {
		t.Fatalf("short file must be rejected")
	}

	badMagicPath := filepath.Join(tempDir, "bad.glb")
	b := make([]byte, 64)
	if err := os.WriteFile(badMagicPath, b, 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := repository.Load(badMagicPath); err == nil {
		t.Fatalf("bad magic must be rejected")
	}

	if repository.CanLoad("avatar.vrm") {
		t.Fatalf("non-glb must be rejected")
	}
	if _, err := repository.Load("avatar.vrm"); err == nil {
		t.Fatalf("load must reject non-glb extension")
	}
}

func TestGlbSkeletonRepositoryRejectsNodeCycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cycle.glb")
	writeTestGLB(t, path, map[string]any{
		"asset": map[string]any{"version": "2.0"},
		"nodes": []any{
			map[string]any{"name": "a", "children": []int{1}},
			map[string]any{"name": "b", "children": []int{0}},
		},
	})
	if _, err := NewGlbSkeletonRepository().Load(path); err == nil {
		t.Fatalf("cyclic hierarchy must be rejected")
	}
}
