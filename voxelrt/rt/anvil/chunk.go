package anvil

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/Tnze/go-mc/nbt"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Compression schemes of a region sector payload.
const (
	CompressionGzip         = 1
	CompressionZlib         = 2
	CompressionUncompressed = 3
)

var ErrCompression = errors.New("unsupported chunk compression")

type blockRecord struct {
	Name string `nbt:"Name"`
}

// legacySection is the Level.Sections layout used up to 1.17.
type legacySection struct {
	Y           int8          `nbt:"Y"`
	Palette     []blockRecord `nbt:"Palette"`
	BlockStates []uint64      `nbt:"BlockStates"`
}

// modernSection is the top level sections layout used from 1.18.
type modernSection struct {
	Y           int8 `nbt:"Y"`
	BlockStates struct {
		Palette []blockRecord `nbt:"palette"`
		Data    []uint64      `nbt:"data"`
	} `nbt:"block_states"`
}

type chunkRecord struct {
	DataVersion int32 `nbt:"DataVersion"`
	Level       struct {
		Sections []legacySection `nbt:"Sections"`
	} `nbt:"Level"`
	Sections []modernSection `nbt:"sections"`
}

// DataVersion of 20w17a, the first snapshot that stopped spanning block states across words.
const alignedPackingVersion = 2529

func paletteNames(records []blockRecord) []string {
	if len(records) == 0 {
		return nil
	}
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Name
	}
	return names
}

// sections normalizes either layout into Sections.
func (c *chunkRecord) sections() []Section {
	if len(c.Sections) > 0 {
		out := make([]Section, 0, len(c.Sections))
		for _, s := range c.Sections {
			out = append(out, Section{
				Y:           int(s.Y),
				Palette:     paletteNames(s.BlockStates.Palette),
				BlockStates: s.BlockStates.Data,
				Packing:     PackingAligned,
			})
		}
		return out
	}
	packing := PackingSpanning
	if c.DataVersion >= alignedPackingVersion {
		packing = PackingAligned
	}
	out := make([]Section, 0, len(c.Level.Sections))
	for _, s := range c.Level.Sections {
		out = append(out, Section{
			Y:           int(s.Y),
			Palette:     paletteNames(s.Palette),
			BlockStates: s.BlockStates,
			Packing:     packing,
		})
	}
	return out
}

// decodeChunk reads a sector payload: one compression byte followed by NBT.
func decodeChunk(data []byte) ([]Section, error) {
	if len(data) == 0 {
		return nil, errors.New("empty chunk payload")
	}
	var r io.Reader
	body := bytes.NewReader(data[1:])
	switch data[0] {
	case CompressionGzip:
		zr, err := gzip.NewReader(body)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	case CompressionZlib:
		zr, err := zlib.NewReader(body)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	case CompressionUncompressed:
		r = body
	default:
		return nil, fmt.Errorf("%w: %d", ErrCompression, data[0])
	}

	var record chunkRecord
	if _, err := nbt.NewDecoder(r).Decode(&record); err != nil {
		return nil, fmt.Errorf("decode chunk nbt: %w", err)
	}
	return record.sections(), nil
}
