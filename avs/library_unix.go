//go:build !windows

package avs

import (
	"runtime"

	"github.com/ebitengine/purego"
)

func defaultLibraryName() string {
	if runtime.GOOS == "darwin" {
		return "libavisynth.dylib"
	}
	return "libavisynth.so"
}

func platformOpenLibrary(path string) (uintptr, error) {
	// Lazy, process-local binding: the host API is resolved symbol by symbol,
	// and nothing outside this loader should see the library's exports.
	libHandle, err := purego.Dlopen(path, purego.RTLD_LAZY|purego.RTLD_LOCAL)
	if err != nil || libHandle == 0 {
		return 0, err
	}
	return libHandle, nil
}

func platformResolveSymbol(handle uintptr, symbol string) (uintptr, error) {
	return purego.Dlsym(handle, symbol)
}

func platformCloseLibrary(handle uintptr) error {
	if handle == 0 {
		return nil
	}
	return purego.Dlclose(handle)
}
