package textfmt

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ascii untouched", "Heart rate 70 bpm.", "Heart rate 70 bpm."},
		{"hangul kept", "심박수는 안정적입니다", "심박수는 안정적입니다"},
		{"emoji dropped", "잘 주무셨어요 😴!", "잘 주무셨어요 !"},
		{"control characters dropped", "line1\nline2\ttab\r", "line1line2tab"},
		{"hangul jamo and cjk dropped", "ㄱㄴ 漢字 ok", "  ok"},
		{"latin-1 dropped", "café", "caf"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClean_OnlySupportedRunesRemainAndIdempotent(t *testing.T) {
	inputs := []string{
		"오늘의 걸음 수는 5,000보 🏃‍♂️ — great job!\n\n내일도 화이팅 ✨",
		"\x00\x1f\x7f 　힣힤가",
		strings.Repeat("가a😀", 50),
	}
	for _, in := range inputs {
		once := Clean(in)
		for _, r := range once {
			if !Supported(r) {
				t.Errorf("Clean(%q) left unsupported rune %U", in, r)
			}
		}
		if twice := Clean(once); twice != once {
			t.Errorf("Clean not idempotent: %q then %q", once, twice)
		}
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{
			name:  "short line unchanged",
			in:    "hello world",
			width: 20,
			want:  "hello world",
		},
		{
			name:  "greedy break",
			in:    "the quick brown fox jumps",
			width: 10,
			want:  "the quick\nbrown fox\njumps",
		},
		{
			name:  "long word split",
			in:    "abcdefghijkl xy",
			width: 5,
			want:  "abcde\nfghij\nkl xy",
		},
		{
			name:  "blank lines kept",
			in:    "first\n\n  \nsecond",
			width: 10,
			want:  "first\n\n\nsecond",
		},
		{
			name:  "leading and trailing whitespace trimmed",
			in:    "   padded text   ",
			width: 40,
			want:  "padded text",
		},
		{
			name:  "hangul counted in runes",
			in:    "가나다라 마바사아 자차카타",
			width: 9,
			want:  "가나다라 마바사아\n자차카타",
		},
		{
			name:  "internal whitespace kept",
			in:    "a  b",
			width: 10,
			want:  "a  b",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Wrap(tt.in, tt.width); got != tt.want {
				t.Errorf("Wrap(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
		})
	}
}

func TestWrap_IdempotentAndWithinWidth(t *testing.T) {
	text := "수면 분석 결과, 깊은 수면 시간이 평균보다 조금 짧았습니다. " +
		"Try to go to bed at a consistent time every night.\n\n" +
		"Supercalifragilisticexpialidocious words get split when they exceed the column.\n" +
		"\t들여쓰기된 문단도 처리됩니다."

	for _, width := range []int{1, 7, 20, 55, 80} {
		once := Wrap(text, width)
		for _, line := range strings.Split(once, "\n") {
			if n := utf8.RuneCountInString(line); n > width {
				t.Errorf("width %d: line %q has %d runes", width, line, n)
			}
		}
		if twice := Wrap(once, width); twice != once {
			t.Errorf("width %d: Wrap not idempotent\nonce:  %q\ntwice: %q", width, once, twice)
		}
	}
}

func TestWrap_PreservesParagraphCount(t *testing.T) {
	in := "one\n\ntwo\n\n\nthree"
	out := Wrap(in, 80)
	if strings.Count(out, "\n\n") != strings.Count(in, "\n\n") {
		t.Errorf("paragraph separators changed: %q -> %q", in, out)
	}
}
