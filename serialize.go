package gsplat

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/klauspost/compress/zstd"
)

// Hierarchy file format:
//
//	"GSPH"            magic
//	u8                format version
//	u64               xxhash64 of the compressed payload
//	u32               compressed payload length
//	[]byte            zstd-compressed body
//
// The body is a flat little-endian dump of the hierarchy's scalar counts,
// cluster records (child lists length-prefixed) and the LOD splat pool.

const (
	hierarchyMagic   = "GSPH"
	hierarchyVersion = 1
)

// WriteHierarchy serializes h to w.
func WriteHierarchy(w io.Writer, h *Hierarchy) error {
	if h == nil || !h.IsValid() {
		return errors.New("cannot serialize an invalid hierarchy")
	}

	var body bytes.Buffer
	writeBody(&body, h)

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("create zstd encoder: %w", err)
	}
	payload := enc.EncodeAll(body.Bytes(), nil)
	enc.Close()

	var header bytes.Buffer
	header.WriteString(hierarchyMagic)
	header.WriteByte(hierarchyVersion)
	_ = binary.Write(&header, binary.LittleEndian, xxhash.Sum64(payload))
	_ = binary.Write(&header, binary.LittleEndian, uint32(len(payload)))

	if _, err := w.Write(header.Bytes()); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// ReadHierarchy deserializes a hierarchy previously written by
// WriteHierarchy, verifying magic, version and payload digest.
func ReadHierarchy(r io.Reader) (*Hierarchy, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, err
	}
	if string(magic[:]) != hierarchyMagic {
		return nil, errors.New("not a valid hierarchy file")
	}

	var version [1]byte
	if _, err := io.ReadFull(r, version[:]); err != nil {
		return nil, err
	}
	if version[0] != hierarchyVersion {
		return nil, fmt.Errorf("unsupported hierarchy version: %d", version[0])
	}

	var digest uint64
	if err := binary.Read(r, binary.LittleEndian, &digest); err != nil {
		return nil, err
	}
	var payloadLen uint32
	if err := binary.Read(r, binary.LittleEndian, &payloadLen); err != nil {
		return nil, err
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	if xxhash.Sum64(payload) != digest {
		return nil, errors.New("hierarchy payload digest mismatch")
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	body, err := dec.DecodeAll(payload, nil)
	dec.Close()
	if err != nil {
		return nil, fmt.Errorf("decompress hierarchy payload: %w", err)
	}

	return readBody(bytes.NewReader(body))
}

// SaveHierarchy writes h to a file at path.
func SaveHierarchy(path string, h *Hierarchy) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteHierarchy(f, h)
}

// LoadHierarchy reads a hierarchy file from path.
func LoadHierarchy(path string) (*Hierarchy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadHierarchy(f)
}

func writeBody(buf *bytes.Buffer, h *Hierarchy) {
	le := binary.LittleEndian
	put := func(v any) { _ = binary.Write(buf, le, v) }

	put(h.TotalSplatCount)
	put(h.SplatsPerCluster)
	put(h.NumLevels)
	put(h.NumLeafClusters)
	put(h.RootIndex)

	put(uint32(len(h.Clusters)))
	for i := range h.Clusters {
		c := &h.Clusters[i]
		put(c.ID)
		put(c.ParentID)
		put(c.Level)
		put(uint32(len(c.Children)))
		for _, child := range c.Children {
			put(child)
		}
		put(c.Bounds.Min)
		put(c.Bounds.Max)
		put(c.SphereCenter)
		put(c.SphereRadius)
		put(c.SplatStart)
		put(c.SplatCount)
		put(c.MaxError)
		put(c.LODSplatStart)
		put(c.LODSplatCount)
	}

	put(uint32(len(h.LODSplats)))
	for i := range h.LODSplats {
		s := &h.LODSplats[i]
		put(s.Position)
		put(s.Rotation.V)
		put(s.Rotation.W)
		put(s.Scale)
		put(s.Opacity)
		put(s.Color)
	}
}

func readBody(r io.Reader) (*Hierarchy, error) {
	le := binary.LittleEndian
	h := &Hierarchy{}

	get := func(v any) error { return binary.Read(r, le, v) }

	for _, v := range []any{
		&h.TotalSplatCount, &h.SplatsPerCluster, &h.NumLevels,
		&h.NumLeafClusters, &h.RootIndex,
	} {
		if err := get(v); err != nil {
			return nil, err
		}
	}

	var clusterCount uint32
	if err := get(&clusterCount); err != nil {
		return nil, err
	}
	h.Clusters = make([]Cluster, clusterCount)
	for i := range h.Clusters {
		c := &h.Clusters[i]
		if err := get(&c.ID); err != nil {
			return nil, err
		}
		if err := get(&c.ParentID); err != nil {
			return nil, err
		}
		if err := get(&c.Level); err != nil {
			return nil, err
		}
		var childCount uint32
		if err := get(&childCount); err != nil {
			return nil, err
		}
		if childCount > clusterCount {
			return nil, fmt.Errorf("cluster %d: child count %d exceeds cluster count", i, childCount)
		}
		if childCount > 0 {
			c.Children = make([]uint32, childCount)
			if err := get(c.Children); err != nil {
				return nil, err
			}
		}
		if err := get(&c.Bounds.Min); err != nil {
			return nil, err
		}
		if err := get(&c.Bounds.Max); err != nil {
			return nil, err
		}
		if err := get(&c.SphereCenter); err != nil {
			return nil, err
		}
		if err := get(&c.SphereRadius); err != nil {
			return nil, err
		}
		if err := get(&c.SplatStart); err != nil {
			return nil, err
		}
		if err := get(&c.SplatCount); err != nil {
			return nil, err
		}
		if err := get(&c.MaxError); err != nil {
			return nil, err
		}
		if err := get(&c.LODSplatStart); err != nil {
			return nil, err
		}
		if err := get(&c.LODSplatCount); err != nil {
			return nil, err
		}
	}

	var lodCount uint32
	if err := get(&lodCount); err != nil {
		return nil, err
	}
	h.LODSplats = make([]LODSplat, lodCount)
	for i := range h.LODSplats {
		s := &h.LODSplats[i]
		var v mgl32.Vec3
		var w float32
		if err := get(&s.Position); err != nil {
			return nil, err
		}
		if err := get(&v); err != nil {
			return nil, err
		}
		if err := get(&w); err != nil {
			return nil, err
		}
		s.Rotation = mgl32.Quat{W: w, V: v}
		if err := get(&s.Scale); err != nil {
			return nil, err
		}
		if err := get(&s.Opacity); err != nil {
			return nil, err
		}
		if err := get(&s.Color); err != nil {
			return nil, err
		}
	}

	return h, nil
}
