package monitor

import "strconv"

const HalvingBlocks = 210000

// Halving returns the blocks left before the next halving and the percent of the current epoch already mined
func Halving(block uint64) (remaining uint64, percent uint64) {
	remaining = ((block/HalvingBlocks)+1)*HalvingBlocks - block
	percent = (HalvingBlocks - remaining) * 100 / HalvingBlocks
	return remaining, percent
}

func halvingFromText(height string) (uint64, uint64) {
	block, err := strconv.ParseUint(height, 10, 64)
	if err != nil {
		block = 0
	}
	return Halving(block)
}
