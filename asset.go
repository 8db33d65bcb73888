package gsplat

import (
	"fmt"

	"github.com/google/uuid"
)

// AssetId identifies a registered splat cloud.
type AssetId string

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

// SplatCloudAsset bundles a splat array with its built hierarchy. The splat
// slice is owned by the asset once registered; building with reordering
// enabled rewrites it in place.
type SplatCloudAsset struct {
	Splats     []SplatRecord
	Hierarchy  *Hierarchy
	SourcePath string
}

// AssetServer is a registry of splat cloud assets, in the spirit of an
// engine-side asset store: importers register clouds, the build step attaches
// hierarchies, consumers look them up by id.
type AssetServer struct {
	logger Logger
	clouds map[AssetId]*SplatCloudAsset
}

func NewAssetServer(logger Logger) *AssetServer {
	if logger == nil {
		logger = NopLogger{}
	}
	return &AssetServer{
		logger: logger,
		clouds: make(map[AssetId]*SplatCloudAsset),
	}
}

func (s *AssetServer) CreateSplatCloud(splats []SplatRecord) AssetId {
	return s.CreateSplatCloudFromSource(splats, "")
}

func (s *AssetServer) CreateSplatCloudFromSource(splats []SplatRecord, sourcePath string) AssetId {
	id := makeAssetId()
	s.clouds[id] = &SplatCloudAsset{
		Splats:     splats,
		SourcePath: sourcePath,
	}
	s.logger.Debugf("registered splat cloud %s (%d splats)", id, len(splats))
	return id
}

// SplatCloud returns the asset for id, if registered.
func (s *AssetServer) SplatCloud(id AssetId) (*SplatCloudAsset, bool) {
	cloud, ok := s.clouds[id]
	return cloud, ok
}

// BuildHierarchy builds and attaches the cluster hierarchy for a registered
// cloud. The cloud's splat slice is reordered in place when the settings ask
// for it.
func (s *AssetServer) BuildHierarchy(id AssetId, settings BuildSettings) error {
	cloud, ok := s.clouds[id]
	if !ok {
		return fmt.Errorf("unknown splat cloud asset: %s", id)
	}
	h, err := NewBuilder(s.logger).Build(cloud.Splats, settings)
	if err != nil {
		return fmt.Errorf("build hierarchy for %s: %w", id, err)
	}
	cloud.Hierarchy = h
	return nil
}
