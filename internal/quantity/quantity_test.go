package quantity

import (
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Quantity
	}{
		{"0.5 Oz", Quantity{OK: true, Value: 0.5, Unit: "Oz"}},
		{"3", Quantity{OK: true, Value: 3}},
		{"  2 cups  ", Quantity{OK: true, Value: 2, Unit: "cups"}},
		{"1 large can", Quantity{OK: true, Value: 1, Unit: "large can"}},
		{"abc", Quantity{OK: false, Value: 1}},
		{"", Quantity{OK: false, Value: 1}},
		{"a pinch", Quantity{OK: false, Value: 1}},
		{"NaN", Quantity{OK: false, Value: 1}},
		{"Inf cups", Quantity{OK: false, Value: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Parse(tt.in)
			if got != tt.want {
				t.Fatalf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{4, "4"},
		{3.0000000001, "3"},
		{0.5, "0.50"},
		{1.239, "1.24"},
		{math.Copysign(0, -1), "0"},
		{-2, "-2"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := FormatValueWithin(2.0000005, 1e-6); got != "2" {
		t.Errorf("expected loose tolerance to round, got %q", got)
	}
	if got := FormatValueWithin(2.0000005, 1e-9); got != "2.00" {
		t.Errorf("expected tight tolerance to keep decimals, got %q", got)
	}
}

func TestPackageCount(t *testing.T) {
	tests := []struct {
		needed, size float64
		want         int
	}{
		{0.2, 5.0, 1},
		{0, 5.0, 0},
		{-1, 5.0, 0},
		{3.0, 0, 1},
		{3.0, -2, 1},
		{10, 5, 2},
		{11, 5, 3},
		{0.3, 0.1, 3},
	}
	for _, tt := range tests {
		if got := PackageCount(tt.needed, tt.size); got != tt.want {
			t.Errorf("PackageCount(%v, %v) = %d, want %d", tt.needed, tt.size, got, tt.want)
		}
	}
}

func TestCompare(t *testing.T) {
	if got := Compare("Oz", "oz"); got != Match {
		t.Fatalf("expected match, got %s", got)
	}
	if got := Compare("cup", "g"); got != Mismatch {
		t.Fatalf("expected mismatch, got %s", got)
	}
	if got := Compare("", "g"); got != Unknown || !got.Compatible() {
		t.Fatalf("expected compatible unknown, got %s", got)
	}
	if Mismatch.Compatible() {
		t.Fatal("mismatch must not be compatible")
	}
}

func TestQuantityString(t *testing.T) {
	q := Parse("2 Oz").Scale(2)
	if q.String() != "4 Oz" {
		t.Fatalf("unexpected string %q", q.String())
	}
	if Parse("1.5").String() != "1.50" {
		t.Fatalf("unexpected unitless string %q", Parse("1.5").String())
	}
}
