package mediacore

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:02,500
Hello <i>world</i>

2
00:00:03,000 --> 00:00:04,000
Second line
`

func writeTempSubtitle(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSubtitleTrackParsesSRT(t *testing.T) {
	path := writeTempSubtitle(t, "sample.srt", sampleSRT)
	track, err := LoadSubtitleTrack(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(track.cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(track.cues))
	}
	if track.cues[0].lines[0] != "Hello world" {
		t.Fatalf("expected markup stripped, got %q", track.cues[0].lines[0])
	}
}

func TestLoadSubtitleTrackMissingFile(t *testing.T) {
	if _, err := LoadSubtitleTrack(filepath.Join(t.TempDir(), "missing.srt")); err == nil {
		t.Fatal("expected an error for a missing subtitle file")
	}
}

func TestComponentSetWiresSubtitleComponent(t *testing.T) {
	path := writeTempSubtitle(t, "sample.srt", sampleSRT)
	track, err := LoadSubtitleTrack(path)
	if err != nil {
		t.Fatal(err)
	}

	cs := &ComponentSet{Subtitle: NewSubtitleComponent(track, defaultBufferCountThreshold, TicksFromDuration(0))}

	if got := cs.Get(TypeSubtitle); got == nil {
		t.Fatal("expected ComponentSet.Get(TypeSubtitle) to return the wired component")
	}
	if got := cs.MainType(); got != TypeSubtitle {
		t.Fatalf("expected Subtitle to be elected main when nothing else is present, got %v", got)
	}

	var visited []MediaType
	cs.ForEach(func(c *MediaComponent) { visited = append(visited, c.Type) })
	if len(visited) != 1 || visited[0] != TypeSubtitle {
		t.Fatalf("expected ForEach to visit only the subtitle component, got %v", visited)
	}

	frame, err := cs.Subtitle.ReceiveNextFrame()
	if err != nil {
		t.Fatal(err)
	}
	if frame == nil || frame.OriginalText != "Hello <i>world</i>" {
		t.Fatalf("expected the first cue's frame, got %+v", frame)
	}
}

func TestBuildComponentsSkipsSubtitleWhenDisabledOrUnset(t *testing.T) {
	o := NewOptions()
	if o.SubtitlePath != "" {
		t.Fatal("expected SubtitlePath to default empty")
	}
	e := NewEngine(nil, o, nil)
	if cs := e.buildComponents(&MediaContainer{}); cs.Subtitle != nil {
		t.Fatal("expected no subtitle component when SubtitlePath is unset")
	}

	o.Apply(WithSubtitleDisabled(true))
	path := writeTempSubtitle(t, "sample.srt", sampleSRT)
	o.Apply(WithSubtitlePath(path))
	if !o.IsSubtitleDisabled || o.SubtitlePath != path {
		t.Fatal("expected options to record the disabled flag and path independently")
	}
	if cs := e.buildComponents(&MediaContainer{}); cs.Subtitle != nil {
		t.Fatal("expected no subtitle component when subtitles are disabled")
	}
}
