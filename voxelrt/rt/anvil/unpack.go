package anvil

import (
	"fmt"
	"math/bits"
)

// SectionVolume is the number of blocks in a 16x16x16 section.
const SectionVolume = 4096

// SpanningBits derives the entry width of a legacy packed array, where
// entries run across word boundaries and the array holds exactly 4096 entries.
func SpanningBits(words int) int {
	return (words * 8 * 8) / SectionVolume
}

// MinAlignedBits is the narrowest entry width written for a 1.16+ packed array.
const MinAlignedBits = 4

// AlignedBits derives the entry width of a 1.16+ packed array from its palette
// size. The word count is ambiguous: 11 and 12 bits both need 820 words.
// A single entry palette needs no array at all.
func AlignedBits(paletteLen int) int {
	if paletteLen <= 1 {
		return 0
	}
	return max(MinAlignedBits, bits.Len(uint(paletteLen-1)))
}

// AlignedWords is the array length for entries of width bits that never
// cross a word boundary.
func AlignedWords(bits int) int {
	if bits == 0 {
		return 0
	}
	perWord := 64 / bits
	return (SectionVolume + perWord - 1) / perWord
}

func checkBits(bits int) error {
	if bits < 0 || bits > 16 {
		return fmt.Errorf("anvil: %d bits per block state out of range", bits)
	}
	return nil
}

// UnpackSpanning reads 4096 entries of width bits, packed contiguously from the
// low bit of data[0] and spilling into the next word where needed.
func UnpackSpanning(data []uint64, bits int, out *[SectionVolume]uint16) error {
	if err := checkBits(bits); err != nil {
		return err
	}
	if len(data)*64 < bits*SectionVolume {
		return fmt.Errorf("anvil: %d words too short for %d bit entries", len(data), bits)
	}
	if bits == 0 {
		clear(out[:])
		return nil
	}
	mask := uint64(1)<<bits - 1
	for i := range out {
		bit := i * bits
		word, offset := bit/64, bit%64
		v := data[word] >> offset
		if offset+bits > 64 {
			v |= data[word+1] << (64 - offset)
		}
		out[i] = uint16(v & mask)
	}
	return nil
}

// UnpackAligned reads 4096 entries of width bits that never cross a word boundary.
// The array must hold exactly AlignedWords(bits) words.
func UnpackAligned(data []uint64, bits int, out *[SectionVolume]uint16) error {
	if err := checkBits(bits); err != nil {
		return err
	}
	if len(data) != AlignedWords(bits) {
		return fmt.Errorf("anvil: %d words for %d bit entries, want %d", len(data), bits, AlignedWords(bits))
	}
	if bits == 0 {
		clear(out[:])
		return nil
	}
	perWord := 64 / bits
	mask := uint64(1)<<bits - 1
	for i := range out {
		word, slot := i/perWord, i%perWord
		out[i] = uint16((data[word] >> (slot * bits)) & mask)
	}
	return nil
}
