// Package blend composites straight-alpha RGBA8 pixels and parses the
// hex colors used in resource flags.
//
// All arithmetic is integer arithmetic with rounded division, so results
// are reproducible across platforms.
package blend

// div255 divides x by 255, rounding to nearest.
//
// Formula: (x + 128 + ((x + 128) >> 8)) >> 8
//
// Exact for every product of two bytes.
func div255(x uint32) uint32 {
	t := x + 128
	return (t + (t >> 8)) >> 8
}

// mulDiv255 multiplies two bytes and divides by 255, rounded.
func mulDiv255(a, b uint8) uint8 {
	return uint8(div255(uint32(a) * uint32(b)))
}

// divRound divides num by den rounding half up. den must be positive.
func divRound(num, den uint32) uint32 {
	return (num + den/2) / den
}
