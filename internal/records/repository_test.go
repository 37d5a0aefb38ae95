package records

import "testing"

func TestClampPage(t *testing.T) {
	cases := []struct {
		name                   string
		start, maxItems        int
		wantStart, wantMaxItems int
	}{
		{"within bounds", 10, 50, 10, 50},
		{"exactly max page size", 0, 100, 0, 100},
		{"over max page size", 0, 101, 0, 100},
		{"negative start", -5, 10, 0, 10},
		{"negative max items", 0, -1, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotStart, gotMax := clampPage(tc.start, tc.maxItems)
			if gotStart != tc.wantStart || gotMax != tc.wantMaxItems {
				t.Fatalf("clampPage(%d,%d) = (%d,%d), want (%d,%d)",
					tc.start, tc.maxItems, gotStart, gotMax, tc.wantStart, tc.wantMaxItems)
			}
		})
	}
}
