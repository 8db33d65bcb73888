package gsplat

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHierarchyRoundtrip(t *testing.T) {
	splats := GenerateBoxCloud(1200, mgl32.Vec3{12, 12, 12}, 99)
	h := buildTestHierarchy(t, splats, DefaultBuildSettings())
	require.NotEmpty(t, h.LODSplats)

	var buf bytes.Buffer
	require.NoError(t, WriteHierarchy(&buf, h))

	got, err := ReadHierarchy(&buf)
	require.NoError(t, err)

	assert.Equal(t, h.TotalSplatCount, got.TotalSplatCount)
	assert.Equal(t, h.SplatsPerCluster, got.SplatsPerCluster)
	assert.Equal(t, h.NumLevels, got.NumLevels)
	assert.Equal(t, h.NumLeafClusters, got.NumLeafClusters)
	assert.Equal(t, h.RootIndex, got.RootIndex)
	assert.Equal(t, h.Clusters, got.Clusters)
	assert.Equal(t, h.LODSplats, got.LODSplats)
}

func TestHierarchyFileRoundtrip(t *testing.T) {
	splats := GenerateShellCloud(800, 3, 44)
	h := buildTestHierarchy(t, splats, DefaultBuildSettings())

	path := filepath.Join(t.TempDir(), "cloud.gsph")
	require.NoError(t, SaveHierarchy(path, h))

	got, err := LoadHierarchy(path)
	require.NoError(t, err)
	assert.Equal(t, h.Clusters, got.Clusters)
	assert.True(t, got.IsValid())
}

func TestReadHierarchy_BadMagic(t *testing.T) {
	_, err := ReadHierarchy(bytes.NewReader([]byte("VOX \x01\x00\x00\x00")))
	require.Error(t, err)
}

func TestReadHierarchy_CorruptPayload(t *testing.T) {
	splats := GenerateBoxCloud(300, mgl32.Vec3{4, 4, 4}, 7)
	h := buildTestHierarchy(t, splats, DefaultBuildSettings())

	var buf bytes.Buffer
	require.NoError(t, WriteHierarchy(&buf, h))

	data := buf.Bytes()
	data[len(data)-1] ^= 0xFF

	_, err := ReadHierarchy(bytes.NewReader(data))
	require.ErrorContains(t, err, "digest mismatch")
}

func TestWriteHierarchy_Invalid(t *testing.T) {
	var buf bytes.Buffer
	var h Hierarchy
	h.Reset()
	require.Error(t, WriteHierarchy(&buf, &h))
	require.Error(t, WriteHierarchy(&buf, nil))
}

func TestReadHierarchy_Truncated(t *testing.T) {
	splats := GenerateBoxCloud(300, mgl32.Vec3{4, 4, 4}, 7)
	h := buildTestHierarchy(t, splats, DefaultBuildSettings())

	var buf bytes.Buffer
	require.NoError(t, WriteHierarchy(&buf, h))

	data := buf.Bytes()
	_, err := ReadHierarchy(bytes.NewReader(data[:len(data)/2]))
	require.Error(t, err)
}
