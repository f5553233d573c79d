//go:build windows

package oci

import "syscall"

// loadOCILibrary opens the vendor shared library on Windows.
func loadOCILibrary(libPath string) (uintptr, error) {
	handle, err := syscall.LoadLibrary(libPath)
	if err != nil {
		return 0, err
	}
	return uintptr(handle), nil
}

func defaultLibraryPath() string {
	if p := envLibPath(); p != "" {
		return p
	}
	return "oci.dll"
}
