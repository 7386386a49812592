package capacity

import "testing"

func ptr(n int) *int { return &n }

func TestCanAdmit(t *testing.T) {
	tests := []struct {
		name    string
		current int
		limit   *int
		want    bool
	}{
		{"unset limit", 100, nil, true},
		{"zero limit is unset", 3, ptr(0), true},
		{"below limit", 1, ptr(2), true},
		{"at limit", 2, ptr(2), false},
		{"over limit", 5, ptr(2), false},
		{"empty target", 0, ptr(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAdmit(tt.current, tt.limit); got != tt.want {
				t.Errorf("CanAdmit(%d, %v) = %v, want %v", tt.current, tt.limit, got, tt.want)
			}
		})
	}
}
