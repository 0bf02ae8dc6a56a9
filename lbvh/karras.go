package lbvh

import "math/bits"

// delta returns the length of the common Morton-code prefix shared by
// sortedCodes[i] and sortedCodes[j], or -1 if j falls outside the array.
// Equal codes fall back to comparing the indices themselves so that
// duplicate-Morton inputs still yield a well-formed tree.
func delta(sortedCodes []uint32, i, j int) int32 {
	n := len(sortedCodes)
	if j < 0 || j >= n {
		return -1
	}
	if sortedCodes[i] == sortedCodes[j] {
		return 32 + int32(bits.LeadingZeros32(uint32(i)^uint32(j)))
	}
	return int32(bits.LeadingZeros32(sortedCodes[i] ^ sortedCodes[j]))
}

// determineRange finds the two endpoints of the range of leaves covered
// by internal node i, per Karras' direction-then-binary-search scheme.
func determineRange(sortedCodes []uint32, i int) (first, last int) {
	d := 1
	if delta(sortedCodes, i, i+1) < delta(sortedCodes, i, i-1) {
		d = -1
	}
	deltaMin := delta(sortedCodes, i, i-d)

	lmax := 2
	for delta(sortedCodes, i, i+lmax*d) > deltaMin {
		lmax *= 2
	}

	l := 0
	for t := lmax / 2; t >= 1; t /= 2 {
		if delta(sortedCodes, i, i+(l+t)*d) > deltaMin {
			l += t
		}
	}
	j := i + l*d

	if d < 0 {
		return j, i
	}
	return i, j
}

// findSplit binary-searches the position within [first,last) where the
// longest common prefix drops below the range's own common prefix.
func findSplit(sortedCodes []uint32, first, last int) int {
	commonPrefix := delta(sortedCodes, first, last)

	split := first
	step := last - first
	for {
		step = (step + 1) / 2
		newSplit := split + step
		if newSplit < last {
			if delta(sortedCodes, first, newSplit) > commonPrefix {
				split = newSplit
			}
		}
		if step <= 1 {
			break
		}
	}
	return split
}
