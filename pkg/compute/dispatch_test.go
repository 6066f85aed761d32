package compute

import "testing"

func TestGroupCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		total, local int
		want         uint32
	}{
		{100, 64, 2},
		{64, 64, 1},
		{0, 64, 1},
		{1, 64, 1},
		{65, 64, 2},
		{128, 64, 2},
		{129, 64, 3},
		{10, 1, 10},
		{1000000, 256, 3907},
		{5, 0, 5}, // degenerate local size clamps to 1
	}
	for _, tc := range tests {
		if got := GroupCount(tc.total, tc.local); got != tc.want {
			t.Errorf("GroupCount(%d, %d) = %d, want %d", tc.total, tc.local, got, tc.want)
		}
	}
}
