package subframe

import "github.com/ntpsec/gnssd/pkg/bitutil"

// BeiDou packs several fields across a 30-bit GPS-style word boundary
// embedded in its own framing; these two-way merges reassemble a field whose bits are split by that boundary.

func getbitu2(buff []byte, p1, l1, p2, l2 int) uint32 {
	return (bitutil.GetBitU(buff, p1, l1) << uint(l2)) + bitutil.GetBitU(buff, p2, l2)
}

func getbits2(buff []byte, p1, l1, p2, l2 int) int32 {
	if bitutil.GetBitU(buff, p1, 1) > 0 {
		return int32(bitutil.GetBits(buff, p1, l1)<<uint(l2)) + int32(bitutil.GetBitU(buff, p2, l2))
	}
	return int32(getbitu2(buff, p1, l1, p2, l2))
}

func mergeTwoU(a, b uint32, n int) uint32 { return (a << uint(n)) + b }
