package utils

///////////////////////////////////////////////////////////////////////////////
// Integer Formatting - For Cold-Path Diagnostics
///////////////////////////////////////////////////////////////////////////////

// Itoa formats a signed integer without fmt or strconv. One allocation for
// the returned string.
//
//go:nosplit
//go:inline
func Itoa(n int) string {
	if n < 0 {
		return "-" + Utoa(uint64(-n))
	}
	return Utoa(uint64(n))
}

// Utoa formats an unsigned 64-bit integer.
//
//go:nosplit
//go:inline
func Utoa(u uint64) string {
	var buf [20]byte
	i := len(buf)
	for {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
		if u == 0 {
			break
		}
	}
	return string(buf[i:])
}

///////////////////////////////////////////////////////////////////////////////
// Hash & Mixers - Deterministic Payload Generation
///////////////////////////////////////////////////////////////////////////////

// Mix64 applies a Murmur3-style avalanche to a 64-bit value.
// Used to derive reproducible item payloads from a sequence number.
//
//go:nosplit
//go:inline
func Mix64(x uint64) uint64 {
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}
