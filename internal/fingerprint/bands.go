package fingerprint

const (
	BandCount = 4
	bandWidth = 16
)

// Bands are the four consecutive 16-bit windows of a similarity hash, most
// significant window first. Records sharing a band are only likely to be close;
// callers must still compare the full hashes.
type Bands [BandCount]uint16

func BandsOf(h uint64) Bands {
	var b Bands
	for i := 0; i < BandCount; i++ {
		shift := uint((BandCount - 1 - i) * bandWidth)
		b[i] = uint16(h >> shift)
	}
	return b
}

// Join reassembles the similarity hash from its bands.
func (b Bands) Join() uint64 {
	var h uint64
	for i := 0; i < BandCount; i++ {
		h = h<<bandWidth | uint64(b[i])
	}
	return h
}

// Shares reports whether any band position carries the same value.
func (b Bands) Shares(other Bands) bool {
	for i := 0; i < BandCount; i++ {
		if b[i] == other[i] {
			return true
		}
	}
	return false
}
