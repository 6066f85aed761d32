package hwdetect

import "testing"

func TestLevelsTableIsDense(t *testing.T) {
	t.Parallel()

	lv := Levels()
	if len(lv) == 0 {
		t.Fatal("empty architecture table")
	}
	for i, l := range lv {
		if l.Rank != i {
			t.Errorf("level %s has rank %d at position %d", l.Target, l.Rank, i)
		}
		if len(l.Patterns) == 0 {
			t.Errorf("level %s has no match patterns", l.Target)
		}
	}
	fb := Fallback()
	if fb.Rank != 0 || fb.Target != "tgllp" {
		t.Fatalf("Fallback = %+v", fb)
	}
}

func TestMatchDevice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		rank   int
		target string
		family string
	}{
		{"Intel(R) Arc(TM) B580 Graphics", 8, "bmg-g21", "Xe2-HPG"},
		{"Intel(R) Arc(TM) B570 Graphics", 8, "bmg-g21", "Xe2-HPG"},
		{"Intel(R) Arc(TM) A770 Graphics", 4, "acm-g10", "Xe-HPG"},
		{"Intel(R) Arc(TM) A380 Graphics", 5, "acm-g11", "Xe-HPG"},
		{"Intel(R) Arc(TM) Graphics", 6, "mtl-m", "Xe-LPG"},
		{"Intel(R) Arc(TM) 140V GPU", 7, "lnl-m", "Xe2-LPG"},
		{"Intel(R) Iris(R) Xe Graphics", 0, "tgllp", "Gen12"},
		{"Intel(R) Iris(R) Xe MAX Graphics", 3, "dg1", "Xe-LP"},
		{"Intel(R) UHD Graphics 730", 0, "tgllp", "Gen12"},
		{"11th Gen Rocket Lake GT1", 1, "rkl", "Gen12"},
		{"Alder Lake-P GT2", 2, "adl", "Gen12"},
		{"Some Unknown Device", 0, "tgllp", "Gen12"},
		{"", 0, "tgllp", "Gen12"},
	}
	for _, tc := range tests {
		got := MatchDevice(tc.name)
		if got.Rank != tc.rank || got.Target != tc.target || got.Family != tc.family {
			t.Errorf("MatchDevice(%q) = rank %d %s/%s, want rank %d %s/%s",
				tc.name, got.Rank, got.Target, got.Family, tc.rank, tc.target, tc.family)
		}
	}
}

func TestMatchDeviceNewestFirst(t *testing.T) {
	t.Parallel()

	// Substrings for both rank 0 (iris xe) and rank 8 (battlemage):
	// the higher rank must win.
	got := MatchDevice("Iris Xe Battlemage Prototype")
	if got.Rank != 8 || got.Target != "bmg-g21" {
		t.Fatalf("MatchDevice = rank %d %s, want rank 8 bmg-g21", got.Rank, got.Target)
	}

	// "iris xe max" contains "iris xe"; DG1 (rank 3) must win over
	// Tiger Lake (rank 0).
	got = MatchDevice("iris xe max")
	if got.Rank != 3 || got.Target != "dg1" {
		t.Fatalf("MatchDevice = rank %d %s, want rank 3 dg1", got.Rank, got.Target)
	}
}

func TestMatchDeviceCaseInsensitive(t *testing.T) {
	t.Parallel()

	if got := MatchDevice("INTEL(R) ARC(TM) B580 GRAPHICS"); got.Target != "bmg-g21" {
		t.Fatalf("uppercase name classified as %s", got.Target)
	}
	if got := MatchDevice("tiger lake gt2"); got.Target != "tgllp" {
		t.Fatalf("lowercase name classified as %s", got.Target)
	}
}
