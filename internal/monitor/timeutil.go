package monitor

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// NormalizeEpochMS converts an epoch timestamp of unknown precision to
// milliseconds. Agent tools emit seconds, milliseconds, microseconds, or
// nanoseconds depending on version; the magnitude identifies the unit for
// any date in the plausible range. Non-positive values pass through
// unchanged.
func NormalizeEpochMS(v int64) int64 {
	switch {
	case v <= 0:
		return v
	case v < 10_000_000_000:
		return v * 1000
	case v > 10_000_000_000_000_000:
		return v / 1_000_000
	case v > 10_000_000_000_000:
		return v / 1000
	default:
		return v
	}
}

func nowMS() int64 {
	return time.Now().UnixMilli()
}

// modifiedMS returns a file's mtime in epoch milliseconds, or the current
// time when the file cannot be stat'ed.
func modifiedMS(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return nowMS()
	}
	return info.ModTime().UnixMilli()
}

// collectFiles walks root for files with the given extension (without dot,
// case-insensitive) and returns up to maxFiles paths, most recently
// modified first.
func collectFiles(root, ext string, maxFiles int) []string {
	type entry struct {
		path string
		mod  time.Time
	}
	var entries []entry
	suffix := "." + strings.ToLower(ext)

	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), suffix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		entries = append(entries, entry{path: path, mod: info.ModTime()})
		return nil
	})

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].mod.After(entries[j].mod)
	})
	if maxFiles > 0 && len(entries) > maxFiles {
		entries = entries[:maxFiles]
	}

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.path
	}
	return out
}

// readTail returns up to the last maxBytes bytes of a file.
func readTail(path string, maxBytes int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	n := size
	if maxBytes > 0 && n > maxBytes {
		n = maxBytes
	}
	if _, err := f.Seek(size-n, io.SeekStart); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// truncateText caps text at maxChars runes, appending "..." when cut.
func truncateText(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars]) + "..."
}
