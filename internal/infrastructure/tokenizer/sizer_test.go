package tokenizer

import "testing"

func TestCharSizerApproximation(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"12345678", 2},
	}
	s := charSizer{}
	for _, tc := range cases {
		if got := s.Size(tc.text); got != tc.want {
			t.Fatalf("Size(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestSizerDeterministic(t *testing.T) {
	s := New()
	text := "The quick brown fox jumps over the lazy dog."
	first := s.Size(text)
	if first <= 0 {
		t.Fatalf("Size() = %d, want positive for non-empty text", first)
	}
	for i := 0; i < 5; i++ {
		if got := s.Size(text); got != first {
			t.Fatalf("Size() = %d on repeat, want %d", got, first)
		}
	}
}

func TestSizerMonotonicOnRepetition(t *testing.T) {
	s := New()
	short := s.Size("word ")
	long := s.Size("word word word word word ")
	if long <= short {
		t.Fatalf("longer text sized %d, shorter %d", long, short)
	}
}

func TestSizerEmptyText(t *testing.T) {
	if got := New().Size(""); got != 0 {
		t.Fatalf("Size(\"\") = %d, want 0", got)
	}
}
