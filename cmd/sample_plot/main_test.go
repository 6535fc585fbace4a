package main

import "testing"

func TestParseCoords(t *testing.T) {
	got, err := parseCoords(" 0, 3 ,73", 74)
	if err != nil {
		t.Fatalf("parseCoords: %v", err)
	}
	if len(got) != 3 || got[0] != 0 || got[1] != 3 || got[2] != 73 {
		t.Fatalf("parseCoords = %v", got)
	}
	for _, bad := range []string{"", "74", "-1", "a"} {
		if _, err := parseCoords(bad, 74); err == nil {
			t.Fatalf("parseCoords(%q) accepted", bad)
		}
	}
}
