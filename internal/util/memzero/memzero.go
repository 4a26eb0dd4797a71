package memzero

import "crypto/subtle"

// Zero wipes b. The constant-time copy keeps the compiler from eliding the
// write.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	subtle.ConstantTimeCopy(1, b, make([]byte, len(b)))
}
