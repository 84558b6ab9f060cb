package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tuncaytekle/docsync/internal/docsync"
)

// defaultName is used when a suggested name is empty after sanitization.
const defaultName = "Document"

// sanitizeName turns a user- or import-supplied name into a safe base name
// without extension. Directory separators and control characters are
// stripped, surrounding whitespace and dots are trimmed, and any trailing
// document extensions are collapsed.
func sanitizeName(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == 0:
			// Path separators and NUL would escape the flat directory.
		case r < 0x20 || r == 0x7f:
			// Control characters.
		default:
			b.WriteRune(r)
		}
	}

	name := b.String()
	for {
		name = strings.TrimSpace(name)
		if !strings.EqualFold(filepath.Ext(name), docsync.DocumentExt) {
			break
		}
		name = name[:len(name)-len(docsync.DocumentExt)]
	}
	name = strings.Trim(name, " .")

	if name == "" {
		return defaultName
	}
	return name
}

// collisionFreeName returns the first unused file name in dir from the
// deterministic sequence "base.pdf", "base 01.pdf", "base 02.pdf", …
// with the numeric suffix zero-padded to two digits.
func collisionFreeName(dir, base string) (string, error) {
	for i := 0; ; i++ {
		name := base + docsync.DocumentExt
		if i > 0 {
			name = fmt.Sprintf("%s %02d%s", base, i, docsync.DocumentExt)
		}

		_, err := os.Stat(filepath.Join(dir, name))
		if os.IsNotExist(err) {
			return name, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking name %s: %w", name, err)
		}
	}
}
