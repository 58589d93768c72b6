package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"btb-downloader/pkg/domain"
)

// RenderRecord produces the full text of one episode record. Field order is
// fixed and the URL and version lines must stay parseable by BuildIndex.
func RenderRecord(ep domain.Episode, summary, transcript string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", ep.Title)
	fmt.Fprintf(&b, "Date: %s\n", ep.FormatDate())
	fmt.Fprintf(&b, "Length: %d mins\n", ep.LengthMinutes())
	fmt.Fprintf(&b, "%s%s\n", urlMarker, ep.CanonicalURL())
	fmt.Fprintf(&b, "%s%s\n", versionMarker, Version)
	fmt.Fprintf(&b, "Summary: %s\n\n", summary)
	b.WriteString("TRANSCRIPT:\n\n")
	b.WriteString(transcript)
	return b.String()
}

// WriteRecord writes the episode record into dir, overwriting any previous
// record with the same filename, and returns the written path.
func WriteRecord(dir string, ep domain.Episode, summary, transcript string) (string, error) {
	path := filepath.Join(dir, ep.Filename())
	if err := os.WriteFile(path, []byte(RenderRecord(ep, summary, transcript)), 0o644); err != nil {
		return "", fmt.Errorf("write record: %w", err)
	}
	return path, nil
}
