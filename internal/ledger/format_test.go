package ledger

import "testing"

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{150, "150"},
		{150.5, "150.5"},
		{150.25, "150.25"},
		{150.256, "150.26"},
		{0, "0"},
		{-3.5, "-3.5"},
		{1.0000000001, "1"}, // within epsilon of an integer
		{0.1, "0.1"},
		{1e19, "10000000000000000000"}, // past int64, still rendered exactly
	}
	for _, tc := range cases {
		if got := FormatNumber(tc.in); got != tc.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatLevel(t *testing.T) {
	if got := FormatLevel(nil); got != "unknown" {
		t.Errorf("FormatLevel(nil) = %q, want unknown", got)
	}
	level := 93
	if got := FormatLevel(&level); got != "93" {
		t.Errorf("FormatLevel(93) = %q", got)
	}
}

func TestFormatMaybe(t *testing.T) {
	if got := FormatMaybe(nil); got != "unknown" {
		t.Errorf("FormatMaybe(nil) = %q, want unknown", got)
	}
	v := 1234.5
	if got := FormatMaybe(&v); got != "1234.5" {
		t.Errorf("FormatMaybe(1234.5) = %q", got)
	}
}
