package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gsplat3d/gsplat"
)

func main() {
	count := flag.Int("count", 100000, "Number of procedural splats to generate")
	shape := flag.String("shape", "box", "Cloud shape: box or shell")
	seed := flag.Int64("seed", 1, "Random seed for the procedural cloud")
	splatsPerCluster := flag.Int("splats-per-cluster", gsplat.DefaultSplatsPerCluster, "Leaf cluster size")
	maxChildren := flag.Int("max-children", gsplat.DefaultMaxChildrenPerCluster, "Maximum children per parent cluster")
	ratio := flag.Int("lod-ratio", gsplat.DefaultLODReductionRatio, "Source splats per LOD splat")
	noLOD := flag.Bool("no-lod", false, "Skip LOD splat generation")
	out := flag.String("o", "hierarchy.gsph", "Output hierarchy file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logger := gsplat.NewDefaultLogger("lodbuild", *debug)

	var splats []gsplat.SplatRecord
	switch *shape {
	case "box":
		splats = gsplat.GenerateBoxCloud(*count, mgl32.Vec3{10, 10, 10}, *seed)
	case "shell":
		splats = gsplat.GenerateShellCloud(*count, 5, *seed)
	default:
		fmt.Fprintf(os.Stderr, "unknown shape %q (want box or shell)\n", *shape)
		os.Exit(2)
	}

	settings := gsplat.DefaultBuildSettings()
	settings.SplatsPerCluster = *splatsPerCluster
	settings.MaxChildrenPerCluster = *maxChildren
	settings.LODReductionRatio = *ratio
	settings.GenerateLOD = !*noLOD

	hierarchy, err := gsplat.NewBuilder(logger).Build(splats, settings)
	if err != nil {
		logger.Errorf("build failed: %v", err)
		os.Exit(1)
	}

	root := hierarchy.Root()
	logger.Infof("root cluster %d: %d splats, sphere radius %.3f, max error %.3f",
		root.ID, root.SplatCount, root.SphereRadius, root.MaxError)

	if err := gsplat.SaveHierarchy(*out, hierarchy); err != nil {
		logger.Errorf("write %s: %v", *out, err)
		os.Exit(1)
	}
	logger.Infof("wrote %s (%d clusters, %d LOD splats)",
		*out, len(hierarchy.Clusters), len(hierarchy.LODSplats))
}
