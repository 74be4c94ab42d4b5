package seotext

import (
	"strings"
	"testing"
)

func TestNormalize_FieldOrder(t *testing.T) {
	t.Parallel()

	content := Content{
		Title:       "Best SBC for OpenClaw",
		Description: "Boards that run it",
		Heading:     "Top Picks",
		Subheadings: []string{"Raspberry Pi 5", "Orange Pi 5"},
		FAQs: []FAQ{
			{Question: "Does it run?", Answer: "Yes."},
			{Question: "RAM?", Answer: "8GB"},
		},
		Body: "Full body text.",
	}

	got := Normalize(content)
	want := "best sbc for openclaw boards that run it top picks raspberry pi 5 orange pi 5 does it run? yes. ram? 8gb full body text."
	if got != want {
		t.Fatalf("normalize mismatch\nwant: %q\ngot:  %q", want, got)
	}
}

func TestNormalize_TitleOnly(t *testing.T) {
	t.Parallel()

	if got := Normalize(Content{Title: "  Can OpenClaw Run On Jetson Nano  "}); got != "can openclaw run on jetson nano" {
		t.Fatalf("unexpected title-only normalization: %q", got)
	}
	if got := Normalize(Content{}); got != "" {
		t.Fatalf("expected empty content to normalize to empty string, got %q", got)
	}
}

func TestNormalize_StripsMarkupAndControls(t *testing.T) {
	t.Parallel()

	content := Content{
		Title: "<h1>OpenClaw</h1>",
		Body:  "<p>Runs&nbsp;on <b>Pi</b>\u0007 5</p><script>var x = 'hidden';</script><style>p{}</style>done<br>now",
	}

	got := Normalize(content)
	want := "openclaw runs on pi 5 done now"
	if got != want {
		t.Fatalf("normalize mismatch\nwant: %q\ngot:  %q", want, got)
	}
}

func TestNormalize_KeepsComparisonText(t *testing.T) {
	t.Parallel()

	got := Normalize(Content{Title: "AT&T", Body: "latency < 5 ms"})
	if got != "at&t latency < 5 ms" {
		t.Fatalf("unexpected normalization of bare ampersand and less-than: %q", got)
	}
}

func TestNormalize_UnclosedRawTagStaysInItsField(t *testing.T) {
	t.Parallel()

	base := Content{
		Title: "OpenClaw embed guide",
		FAQs: []FAQ{
			{Question: "Where does the <script> tag go?", Answer: "In the page head."},
		},
	}
	first := base
	first.Body = "Flash the Raspberry Pi image and reboot."
	second := base
	second.Body = "Build the Jetson container from source."

	gotFirst := Normalize(first)
	gotSecond := Normalize(second)
	if gotFirst == gotSecond {
		t.Fatalf("expected different bodies to normalize differently, both got %q", gotFirst)
	}
	for _, tc := range []struct {
		got  string
		want string
	}{
		{got: gotFirst, want: "flash the raspberry pi image and reboot."},
		{got: gotSecond, want: "build the jetson container from source."},
		{got: gotFirst, want: "where does the tag go? in the page head."},
	} {
		if !strings.Contains(tc.got, tc.want) {
			t.Fatalf("expected %q in %q", tc.want, tc.got)
		}
	}
}

func TestStripMarkup_UnclosedRawTagKeepsText(t *testing.T) {
	t.Parallel()

	got := NormalizeText(StripMarkup("use <style> for <b>bold</b> &amp; more"))
	if got != "use for bold & more" {
		t.Fatalf("unexpected strip of unclosed style: %q", got)
	}
	if got := NormalizeText(StripMarkup("a<script>hidden()</script>b")); got != "a b" {
		t.Fatalf("expected closed script body dropped, got %q", got)
	}
}

func TestNormalizeText_KeepsReplacementChar(t *testing.T) {
	t.Parallel()

	withReplacement := NormalizeText("Pi\uFFFD5")
	if withReplacement == NormalizeText("Pi5") {
		t.Fatalf("expected U+FFFD to survive normalization, got %q", withReplacement)
	}
	if withReplacement != "pi\uFFFD5" {
		t.Fatalf("unexpected normalization: %q", withReplacement)
	}
}

func TestNormalizeText_CollapsesWhitespace(t *testing.T) {
	t.Parallel()

	if got := NormalizeText(" A\t\tB \n\n C "); got != "a b c" {
		t.Fatalf("unexpected whitespace collapse: %q", got)
	}
}
