package cue_test

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/ByLCY/scrollsub/cue"
	"github.com/ByLCY/scrollsub/layout"
)

const sampleSRT = "1\r\n00:00:00,000 --> 00:00:01,500\r\nthe quick\r\nbrown fox\r\n\r\n" +
	"2\r\n00:00:01,500 --> 00:00:03,000\r\n春眠不觉晓\r\n处处闻啼鸟\r\n\r\n\r\n" +
	"3\r\n00:01:01,250 --> 00:01:02,000\r\n<i>jumps</i>\r\n"

func TestParseSRT(t *testing.T) {
	doc, err := cue.ParseDocument(strings.NewReader(sampleSRT))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Format != cue.FormatSRT {
		t.Fatalf("expected srt, got %s", doc.Format)
	}
	if len(doc.Cues) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(doc.Cues))
	}
	if doc.Cues[1].ID != "2" || len(doc.Cues[1].Lines) != 2 {
		t.Fatalf("unexpected cue: %+v", doc.Cues[1])
	}

	phrases := doc.Phrases()
	want := []layout.Phrase{
		{Start: 0, End: 1.5, Text: "the quick brown fox"},
		{Start: 1.5, End: 3, Text: "春眠不觉晓处处闻啼鸟"},
		{Start: 61.25, End: 62, Text: "jumps"},
	}
	for i, p := range phrases {
		if p != want[i] {
			t.Fatalf("phrase %d: expected %+v, got %+v", i, want[i], p)
		}
	}
}

const sampleVTT = `WEBVTT - demo
Kind: captions

NOTE 这一块没有时间行

intro
00:01.000 --> 00:02.500 align:start position:10%
<v Narrator><b>Hello</b> there

00:00:02.500 --> 00:00:04.000
world
`

func TestParseVTT(t *testing.T) {
	doc, err := cue.ParseDocument(strings.NewReader(sampleVTT))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Format != cue.FormatVTT {
		t.Fatalf("expected vtt, got %s", doc.Format)
	}
	if len(doc.Cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(doc.Cues))
	}
	first := doc.Cues[0]
	if first.ID != "intro" || first.Start != 1 || first.End != 2.5 {
		t.Fatalf("unexpected first cue: %+v", first)
	}
	if got := first.Text(); got != "Hello there" {
		t.Fatalf("tags should be stripped, got %q", got)
	}
	if doc.Cues[1].ID != "" || doc.Cues[1].Start != 2.5 {
		t.Fatalf("unexpected second cue: %+v", doc.Cues[1])
	}
}

func TestParseEmpty(t *testing.T) {
	for _, input := range []string{"", "  \n\n", "WEBVTT\n\nNOTE nothing here"} {
		if _, err := cue.ParseString(input); !errors.Is(err, layout.ErrEmptyScript) {
			t.Fatalf("%q: expected ErrEmptyScript, got %v", input, err)
		}
	}
}

// TestParseSkipsBlankCues 正文为空的条目不产生短语。
func TestParseSkipsBlankCues(t *testing.T) {
	phrases, err := cue.ParseString("1\n00:00:00,000 --> 00:00:01,000\n<i></i>\n\n2\n00:00:01,000 --> 00:00:02,000\nok")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(phrases) != 1 || phrases[0].Text != "ok" {
		t.Fatalf("unexpected phrases: %+v", phrases)
	}
}

func TestParseTimestamp(t *testing.T) {
	cases := map[string]float64{
		"00:00:01,500": 1.5,
		"01:02:03.004": 3723.004,
		"02:03.25":     123.25,
		"00:00:00.5":   0.5,
	}
	for in, want := range cases {
		got, err := cue.ParseTimestamp(in)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", in, err)
		}
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("%s: expected %g, got %g", in, want, got)
		}
	}
	for _, in := range []string{"1.5", "aa:bb,ccc", "00:00:01"} {
		if _, err := cue.ParseTimestamp(in); err == nil {
			t.Fatalf("%s: expected error", in)
		}
	}
}

func TestWriteSRT(t *testing.T) {
	phrases := []layout.Phrase{
		{Start: 0, End: 1.5, Text: "A"},
		{Start: 3723.004, End: 3725, Text: " B "},
	}
	var buf bytes.Buffer
	if err := cue.WriteSRT(&buf, phrases); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:01,500\nA\n\n2\n01:02:03,004 --> 01:02:05,000\nB\n"
	if buf.String() != want {
		t.Fatalf("unexpected srt:\n%s", buf.String())
	}

	back, err := cue.Parse(&buf)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if len(back) != 2 || back[1].Text != "B" || math.Abs(back[1].Start-3723.004) > 1e-9 {
		t.Fatalf("unexpected reparse: %+v", back)
	}
	if got := cue.FormatTimestamp(61.25, cue.FormatVTT); got != "00:01:01.250" {
		t.Fatalf("unexpected vtt timestamp %s", got)
	}
}
