package mediacore

import (
	"bufio"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// subtitleCue is one parsed subtitle entry.
type subtitleCue struct {
	start, end Ticks
	lines      []string // stripped of markup, one per display line
	original   string    // original text, markup intact
	format     string    // "srt" or "ass"
}

// subtitleTrack is a fully preloaded external subtitle file. Because the
// codec backend this core is wired against (reisen) exposes no subtitle
// demux, subtitle MediaComponents source their frames from here instead
// of a packet queue/decoder pair — see SPEC_FULL.md.
type subtitleTrack struct {
	cues []subtitleCue
	cursor int
}

var tagPattern = regexp.MustCompile(`\{[^}]*\}|<[^>]*>`)

// LoadSubtitleTrack parses an SRT or SSA/ASS subtitle file at path. The
// format is inferred from the extension.
func LoadSubtitleTrack(path string) (*subtitleTrack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.HasSuffix(strings.ToLower(path), ".ass") || strings.HasSuffix(strings.ToLower(path), ".ssa") {
		return parseASS(f)
	}
	return parseSRT(f)
}

func stripMarkup(text string) []string {
	cleaned := tagPattern.ReplaceAllString(text, "")
	var lines []string
	for _, l := range strings.Split(cleaned, "\n") {
		lines = append(lines, strings.TrimSpace(l))
	}
	return lines
}

var srtTimeRe = regexp.MustCompile(`(\d+):(\d+):(\d+)[,.](\d+)\s*-->\s*(\d+):(\d+):(\d+)[,.](\d+)`)

func parseSRT(f *os.File) (*subtitleTrack, error) {
	scanner := bufio.NewScanner(f)
	track := &subtitleTrack{}

	var cue *subtitleCue
	var textLines []string
	flush := func() {
		if cue != nil {
			cue.original = strings.Join(textLines, "\n")
			cue.lines = stripMarkup(cue.original)
			track.cues = append(track.cues, *cue)
		}
		cue = nil
		textLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		if m := srtTimeRe.FindStringSubmatch(line); m != nil {
			flush()
			cue = &subtitleCue{
				start:  srtTimestamp(m[1:5]),
				end:    srtTimestamp(m[5:9]),
				format: "srt",
			}
			continue
		}
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if cue == nil {
			continue // index-number line before the timestamp, or stray text
		}
		textLines = append(textLines, line)
	}
	flush()
	return track, scanner.Err()
}

func srtTimestamp(parts []string) Ticks {
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	s, _ := strconv.Atoi(parts[2])
	ms, _ := strconv.Atoi(parts[3])
	total := ((h*3600+m*60+s)*1000 + ms)
	return Ticks(total) * 10_000 // ms -> 100ns ticks
}

var assDialogueRe = regexp.MustCompile(`^Dialogue:\s*[^,]*,([^,]*),([^,]*),[^,]*,[^,]*,[^,]*,[^,]*,[^,]*,[^,]*,(.*)$`)
var assTimeRe = regexp.MustCompile(`(\d+):(\d+):(\d+)\.(\d+)`)

func parseASS(f *os.File) (*subtitleTrack, error) {
	scanner := bufio.NewScanner(f)
	track := &subtitleTrack{}
	for scanner.Scan() {
		line := scanner.Text()
		m := assDialogueRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		startStr, endStr, text := m[1], m[2], m[3]
		track.cues = append(track.cues, subtitleCue{
			start:    assTimestamp(startStr),
			end:      assTimestamp(endStr),
			original: text,
			lines:    stripMarkup(strings.ReplaceAll(text, `\N`, "\n")),
			format:   "ass",
		})
	}
	return track, scanner.Err()
}

func assTimestamp(s string) Ticks {
	m := assTimeRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0
	}
	h, _ := strconv.Atoi(m[1])
	mi, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])
	cs, _ := strconv.Atoi(m[4]) // centiseconds
	total := ((h*3600+mi*60+sec)*1000 + cs*10)
	return Ticks(total) * 10_000
}

// next returns the next cue as a MediaFrame, advancing the internal
// cursor, or nil once every cue has been delivered.
func (t *subtitleTrack) next() *MediaFrame {
	if t.cursor >= len(t.cues) {
		return nil
	}
	c := t.cues[t.cursor]
	t.cursor++
	return &MediaFrame{
		Type:          TypeSubtitle,
		StartTime:     c.start,
		Duration:      c.end - c.start,
		HasValidStart: true,
		SubtitleLines: c.lines,
		OriginalText:  c.original,
		FormatTag:     c.format,
	}
}

func (t *subtitleTrack) exhausted() bool { return t.cursor >= len(t.cues) }
