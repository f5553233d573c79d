package oci

import (
	"os"
	"strings"
)

// envLibPath reads the OCIGO_LIB_PATH override (SPEC_FULL.md §6), mirroring
// the teacher's GODBC_LIBRARY_PATH.
func envLibPath() string {
	return os.Getenv("OCIGO_LIB_PATH")
}

// WideColumnNameFixEnabled reports whether the documented UTF-16
// column-name workaround is enabled via OCIGO_WIDE_COLUMN_NAME_FIX
// (spec §6: recognized values TRUE / 1, case-insensitive).
func WideColumnNameFixEnabled() bool {
	v := strings.TrimSpace(os.Getenv("OCIGO_WIDE_COLUMN_NAME_FIX"))
	return strings.EqualFold(v, "TRUE") || v == "1"
}

// CharsetOverride reads OCIGO_CHARSET, trimmed and upper-cased. Nothing in
// the driver calls it; the string-bridge mode comes from the DSN's charset
// option.
func CharsetOverride() string {
	return strings.ToUpper(strings.TrimSpace(os.Getenv("OCIGO_CHARSET")))
}
