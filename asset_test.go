package gsplat

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestAssetServer_BuildHierarchy(t *testing.T) {
	server := NewAssetServer(nil)
	id := server.CreateSplatCloud(GenerateBoxCloud(500, mgl32.Vec3{6, 6, 6}, 1))

	if err := server.BuildHierarchy(id, DefaultBuildSettings()); err != nil {
		t.Fatalf("build failed: %v", err)
	}

	cloud, ok := server.SplatCloud(id)
	if !ok {
		t.Fatal("cloud not found after registration")
	}
	if cloud.Hierarchy == nil || !cloud.Hierarchy.IsValid() {
		t.Fatal("hierarchy not attached")
	}
	if cloud.Hierarchy.TotalSplatCount != 500 {
		t.Errorf("hierarchy covers %d splats, want 500", cloud.Hierarchy.TotalSplatCount)
	}
}

func TestAssetServer_UnknownAsset(t *testing.T) {
	server := NewAssetServer(nil)
	if err := server.BuildHierarchy("no-such-id", DefaultBuildSettings()); err == nil {
		t.Fatal("expected error for unknown asset")
	}

	if _, ok := server.SplatCloud("no-such-id"); ok {
		t.Fatal("lookup of unknown id should fail")
	}
}

func TestAssetServer_DistinctIds(t *testing.T) {
	server := NewAssetServer(nil)
	a := server.CreateSplatCloud(GenerateBoxCloud(10, mgl32.Vec3{1, 1, 1}, 1))
	b := server.CreateSplatCloud(GenerateBoxCloud(10, mgl32.Vec3{1, 1, 1}, 1))
	if a == b {
		t.Fatal("asset ids must be unique")
	}
}
