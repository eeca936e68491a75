package avs

import "unsafe"

// CstringToGo converts a C null-terminated string pointer to a Go string.
// Returns empty string if ptr is 0 (null).
func CstringToGo(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}

	// Scan for the terminator through a large but bounded slice. AviSynth
	// strings (error messages, saved strings, property keys) are short; a
	// string past this bound indicates memory corruption.
	const maxStringLen = 1 << 20
	bytes := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), maxStringLen)

	var length int
	for i := 0; i < maxStringLen; i++ {
		if bytes[i] == 0 {
			length = i
			break
		}
	}

	return string(bytes[:length])
}

// GoToCstring converts a Go string to a null-terminated byte slice suitable
// for passing to the host. The caller must keep the returned []byte alive
// (runtime.KeepAlive) for as long as the host may read the pointer.
func GoToCstring(s string) ([]byte, uintptr) {
	b := append([]byte(s), 0)
	return b, uintptr(unsafe.Pointer(&b[0]))
}
