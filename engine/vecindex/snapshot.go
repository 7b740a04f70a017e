package vecindex

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// Snapshot file layout, little-endian:
//
//	magic   uint32  "IVIX"
//	version uint32
//	dims    uint32
//	count   uint32
//	count × { idLen uint32, id bytes, dims × float32 }
//
// Vectors are written post-normalization, so a reloaded index reproduces
// the exact scores of the index that wrote it.
const (
	snapshotMagic   uint32 = 0x49564958 // "IVIX"
	snapshotVersion uint32 = 1
)

// WriteSnapshot serializes the current index generation to w.
func (ix *Index) WriteSnapshot(w io.Writer) error {
	snap := ix.cur.Load()
	if snap == nil {
		snap = &snapshot{}
	}

	bw := bufio.NewWriter(w)
	for _, v := range []uint32{snapshotMagic, snapshotVersion, uint32(snap.dims), uint32(len(snap.ids))} {
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("vecindex: write snapshot header: %w", err)
		}
	}

	for i, id := range snap.ids {
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(id))); err != nil {
			return fmt.Errorf("vecindex: write snapshot id: %w", err)
		}
		if _, err := bw.WriteString(id); err != nil {
			return fmt.Errorf("vecindex: write snapshot id: %w", err)
		}
		for _, f := range snap.vecs[i] {
			if err := binary.Write(bw, binary.LittleEndian, math.Float32bits(f)); err != nil {
				return fmt.Errorf("vecindex: write snapshot vector: %w", err)
			}
		}
	}
	return bw.Flush()
}

// ReadSnapshot replaces the index contents from a snapshot previously
// produced by WriteSnapshot. On error the current index is left untouched.
func (ix *Index) ReadSnapshot(r io.Reader) error {
	br := bufio.NewReader(r)

	var magic, version, dims, count uint32
	for _, p := range []*uint32{&magic, &version, &dims, &count} {
		if err := binary.Read(br, binary.LittleEndian, p); err != nil {
			return fmt.Errorf("vecindex: read snapshot header: %w", err)
		}
	}
	if magic != snapshotMagic {
		return fmt.Errorf("vecindex: read snapshot: bad magic 0x%08x", magic)
	}
	if version != snapshotVersion {
		return fmt.Errorf("vecindex: read snapshot: unsupported version %d", version)
	}

	snap := &snapshot{
		ids:  make([]string, 0, count),
		vecs: make([][]float32, 0, count),
		dims: int(dims),
	}
	for i := uint32(0); i < count; i++ {
		var idLen uint32
		if err := binary.Read(br, binary.LittleEndian, &idLen); err != nil {
			return fmt.Errorf("vecindex: read snapshot entry %d: %w", i, err)
		}
		idBytes := make([]byte, idLen)
		if _, err := io.ReadFull(br, idBytes); err != nil {
			return fmt.Errorf("vecindex: read snapshot entry %d: %w", i, err)
		}

		vec := make([]float32, dims)
		for j := range vec {
			var bits uint32
			if err := binary.Read(br, binary.LittleEndian, &bits); err != nil {
				return fmt.Errorf("vecindex: read snapshot entry %d: %w", i, err)
			}
			vec[j] = math.Float32frombits(bits)
		}
		snap.ids = append(snap.ids, string(idBytes))
		snap.vecs = append(snap.vecs, vec)
	}

	ix.cur.Store(snap)
	return nil
}

// SaveFile writes the snapshot to path via a temp file and rename.
func (ix *Index) SaveFile(path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("vecindex: save snapshot: %w", err)
	}
	if err := ix.WriteSnapshot(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("vecindex: save snapshot: %w", err)
	}
	return os.Rename(tmp, path)
}

// LoadFile reads a snapshot produced by SaveFile.
func (ix *Index) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("vecindex: load snapshot: %w", err)
	}
	defer f.Close()
	return ix.ReadSnapshot(f)
}
