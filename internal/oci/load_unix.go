//go:build !windows

package oci

import (
	"runtime"

	"github.com/ebitengine/purego"
)

// loadOCILibrary opens the vendor shared library on POSIX platforms.
func loadOCILibrary(libPath string) (uintptr, error) {
	return purego.Dlopen(libPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

func defaultLibraryPath() string {
	if p := envLibPath(); p != "" {
		return p
	}
	if runtime.GOOS == "darwin" {
		return "libclntsh.dylib"
	}
	return "libclntsh.so"
}
