package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		name string
		in   string
		def  int
		want int
	}{
		{"empty uses default", "", 20, 20},
		{"valid number", "37", 20, 37},
		{"negative number", "-4", 20, -4},
		{"garbage uses default", "abc", 5, 5},
		{"trailing junk uses default", "12x", 5, 5},
		{"overflow uses default", "99999999999999999999", 7, 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AtoiDefault(tc.in, tc.def); got != tc.want {
				t.Errorf("AtoiDefault(%q, %d) = %d, want %d", tc.in, tc.def, got, tc.want)
			}
		})
	}
}
