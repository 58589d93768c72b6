package content

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NoTranscript is returned when an episode page has no transcript container
// or the container yields no text.
const NoTranscript = "No transcript available."

// fragmentKind classifies one transcript span by its class attribute.
type fragmentKind int

const (
	fragmentIgnored fragmentKind = iota
	fragmentSpeaker
	fragmentTimestamp
	fragmentText
)

// classifyFragment maps a span's class attribute to its transcript role.
// Spans that match none of the known classes carry page chrome, not dialogue.
func classifyFragment(class string) fragmentKind {
	switch {
	case strings.Contains(class, "podcast-transcription-speaker"):
		return fragmentSpeaker
	case strings.Contains(class, "podcast-transcription-time"):
		return fragmentTimestamp
	case strings.Contains(class, "podcast-transcription-text"):
		return fragmentText
	default:
		return fragmentIgnored
	}
}

var (
	extraNewlines = regexp.MustCompile(`\n{3,}`)

	// speakerBoundary inserts a blank line where a line ends mid-sentence and
	// the next one starts with a capitalized word. Block headers end in a
	// colon and are excluded so an utterance stays attached to its header.
	// Cosmetic only: a speaker name appearing mid-sentence can trigger it
	// spuriously.
	speakerBoundary = regexp.MustCompile(`([^.:\n])\n([A-Z][a-z]+)`)
)

// ExtractTranscript reconstructs a speaker-attributed transcript from an
// episode page.
//
// The page flattens each transcript into an ordered run of spans with no
// grouping, so this is a single-pass state machine over the spans in
// document order: a speaker span updates the current speaker, a timestamp
// span opens a new block (headed "Name HH:MM:", or space-padded to the
// speaker name's width when the same speaker continues), and text spans
// append to the current block.
func ExtractTranscript(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse episode page: %w", err)
	}

	container := findTranscriptContainer(doc)
	if container == nil {
		return NoTranscript, nil
	}

	var chunks []string
	currentSpeaker := ""
	pendingNewSpeaker := false

	container.Find("span").Each(func(_ int, span *goquery.Selection) {
		class, _ := span.Attr("class")

		switch classifyFragment(class) {
		case fragmentSpeaker:
			currentSpeaker = strings.TrimSpace(span.Text())
			pendingNewSpeaker = true

		case fragmentTimestamp:
			timestamp := strings.TrimSpace(span.Text())
			if len(chunks) > 0 {
				chunks = append(chunks, "\n")
			}
			switch {
			case pendingNewSpeaker && currentSpeaker != "":
				chunks = append(chunks, currentSpeaker+" "+timestamp+":")
				pendingNewSpeaker = false
			case currentSpeaker != "":
				// Same speaker, new point in time: pad the header so the
				// timestamp aligns under the speaker name.
				pad := strings.Repeat(" ", len(currentSpeaker))
				chunks = append(chunks, pad+" "+timestamp+":")
			default:
				chunks = append(chunks, "Speaker "+timestamp+":")
			}

		case fragmentText:
			text := strings.TrimSpace(span.Text())
			if text == "" {
				return
			}
			switch {
			case len(chunks) > 0 && strings.HasSuffix(chunks[len(chunks)-1], ":"):
				// First utterance line after a block header.
				chunks = append(chunks, "\n"+text)
			case len(chunks) > 0 && !strings.HasSuffix(chunks[len(chunks)-1], "\n"):
				chunks = append(chunks, " "+text)
			default:
				chunks = append(chunks, text)
			}
		}
	})

	transcript := strings.TrimSpace(strings.Join(chunks, ""))
	transcript = extraNewlines.ReplaceAllString(transcript, "\n\n")
	transcript = speakerBoundary.ReplaceAllString(transcript, "$1\n\n$2")

	if transcript == "" {
		return NoTranscript, nil
	}
	return transcript, nil
}

// findTranscriptContainer locates the single transcript subtree: the div
// with id "transcription", or failing that any div whose class list contains
// "transcription" case-insensitively.
func findTranscriptContainer(doc *goquery.Document) *goquery.Selection {
	if sel := doc.Find("div#transcription"); sel.Length() > 0 {
		return sel.First()
	}

	var found *goquery.Selection
	doc.Find("div[class]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		class, _ := sel.Attr("class")
		if strings.Contains(strings.ToLower(class), "transcription") {
			found = sel
			return false
		}
		return true
	})
	return found
}
