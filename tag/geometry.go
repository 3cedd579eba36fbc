package tag

const (
	smallSectors      = 0x20 // 4 block sectors
	smallSectorBlocks = 4
	largeSectorBlocks = 16
	largeStart        = smallSectors * smallSectorBlocks
)

// BlockCount is the number of blocks on a tag of the given size.
func BlockCount(size Size) int {
	return int(size) / BlockSize
}

// SectorCount is the number of sectors on a tag of the given size.
func SectorCount(size Size) int {
	if size == Size1K {
		return 0x10
	}
	return smallSectors + (MaxBlocks-largeStart)/largeSectorBlocks
}

// SectorSize is the number of blocks in the sector holding block.
func SectorSize(block int) int {
	if block < largeStart {
		return smallSectorBlocks
	}
	return largeSectorBlocks
}

func IsTrailerBlock(block int) bool {
	return (block+1)%SectorSize(block) == 0
}

func BlockToSector(block int) int {
	if block < largeStart {
		return block / smallSectorBlocks
	}
	return smallSectors + (block-largeStart)/largeSectorBlocks
}

// BlockToHeader returns the first block of the sector holding block.
func BlockToHeader(block int) int {
	return block - block%SectorSize(block)
}

// BlockToTrailer returns the trailer block of the sector holding block.
func BlockToTrailer(block int) int {
	return BlockToHeader(block) + SectorSize(block) - 1
}

// SectorToTrailer returns the trailer block of sector.
func SectorToTrailer(sector int) int {
	if sector < smallSectors {
		return sector*smallSectorBlocks + smallSectorBlocks - 1
	}
	return largeStart + (sector-smallSectors)*largeSectorBlocks + largeSectorBlocks - 1
}

// SectorHeaders lists the first block of every sector on a tag of size.
func SectorHeaders(size Size) []int {
	n := SectorCount(size)
	out := make([]int, 0, n)
	for b := 0; b < BlockCount(size); b += SectorSize(b) {
		out = append(out, b)
	}
	return out
}
