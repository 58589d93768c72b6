package archive

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Version is written into every record and compared on rescan. Bumping it
// marks every previously written episode stale, forcing a re-capture.
const Version = "1.3.7"

// Marker labels are part of the on-disk contract; changing them would orphan
// archives written by earlier versions.
const (
	urlMarker     = "URL: "
	versionMarker = "BTB Downloader Version: "
)

// Index tracks which episode URLs already have a record on disk and which of
// those records were written by a different format version. There is no
// separate index file: the set of record files is the index, rebuilt by
// scanning the archive directory on every run.
type Index struct {
	Known map[string]bool
	Stale map[string]bool
}

// BuildIndex scans every record in dir. A missing directory is an empty
// archive, not an error. Files without a URL marker are silently skipped.
func BuildIndex(dir string) (*Index, error) {
	idx := &Index{
		Known: make(map[string]bool),
		Stale: make(map[string]bool),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return idx, nil
		}
		return nil, fmt.Errorf("read archive dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}

		url, version := scanRecord(filepath.Join(dir, entry.Name()))
		if url == "" {
			continue
		}
		idx.Known[url] = true
		if version != Version {
			idx.Stale[url] = true
		}
	}

	return idx, nil
}

// Has reports whether a record exists for the URL.
func (ix *Index) Has(url string) bool {
	return ix.Known[url]
}

// IsStale reports whether the URL's record was written by a different
// format version.
func (ix *Index) IsStale(url string) bool {
	return ix.Stale[url]
}

// MarkCurrent records that the URL now has an up-to-date record on disk.
func (ix *Index) MarkCurrent(url string) {
	ix.Known[url] = true
	delete(ix.Stale, url)
}

// scanRecord reads a record line by line until both marker lines have been
// seen, then stops; transcripts can be large and the markers sit in the
// header. No ordering between the two markers is assumed. Unreadable files
// are treated like files without markers.
func scanRecord(path string) (url, version string) {
	f, err := os.Open(path)
	if err != nil {
		return "", ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, urlMarker) {
			url = strings.TrimSpace(strings.TrimPrefix(line, urlMarker))
		} else if strings.HasPrefix(line, versionMarker) {
			version = strings.TrimSpace(strings.TrimPrefix(line, versionMarker))
		}
		if url != "" && version != "" {
			break
		}
	}
	return url, version
}
