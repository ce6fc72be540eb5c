package fee

import "testing"

func TestCompute(t *testing.T) {
	cases := []struct {
		seconds int64
		want    int64
	}{
		{0, 0},
		{-30, 0},
		{1, 100},
		{9, 100},
		{10, 100},
		{11, 200},
		{95, 1000},
		{100, 1000},
		{101, 1100},
		{190, 1900},
		{3600, 36000},
	}
	for _, c := range cases {
		if got := Compute(c.seconds); got != c.want {
			t.Errorf("Compute(%d) = %d, want %d", c.seconds, got, c.want)
		}
	}
}
