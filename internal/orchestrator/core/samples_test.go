package core

import (
	"testing"
)

func TestSampleHistory(t *testing.T) {
	tests := []struct {
		name    string
		cap     int
		samples []uint64
		want    []uint64
		avg     uint64
	}{
		{
			name: "empty history",
			cap:  4,
			avg:  0,
		},
		{
			name:    "below capacity",
			cap:     4,
			samples: []uint64{10, 20},
			want:    []uint64{10, 20},
			avg:     15,
		},
		{
			name:    "exactly at capacity",
			cap:     3,
			samples: []uint64{1, 2, 3},
			want:    []uint64{1, 2, 3},
			avg:     2,
		},
		{
			name:    "oldest dropped past capacity",
			cap:     3,
			samples: []uint64{1, 2, 3, 4, 5},
			want:    []uint64{3, 4, 5},
			avg:     4,
		},
		{
			name:    "wraps repeatedly",
			cap:     2,
			samples: []uint64{1, 2, 3, 4, 5, 6, 7},
			want:    []uint64{6, 7},
			avg:     6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSampleHistory(tt.cap)
			for _, v := range tt.samples {
				h.Record(v)
			}

			if got := h.Len(); got != len(tt.want) {
				t.Errorf("Len() = %d, want %d", got, len(tt.want))
			}
			if got := h.Average(); got != tt.avg {
				t.Errorf("Average() = %d, want %d", got, tt.avg)
			}

			values := h.Values()
			if len(values) != len(tt.want) {
				t.Fatalf("Values() = %v, want %v", values, tt.want)
			}
			for i, v := range tt.want {
				if values[i] != v {
					t.Errorf("Values()[%d] = %d, want %d", i, values[i], v)
				}
			}
		})
	}
}

func TestHashBytesDeterministic(t *testing.T) {
	a := HashBytes([]byte("payload"))
	b := HashBytes([]byte("payload"))
	if a != b {
		t.Error("same input must produce the same hash")
	}

	c := HashBytes([]byte("Payload"))
	if a == c {
		t.Error("different input must produce a different hash")
	}

	parsed, err := ParseHash(a.String())
	if err != nil {
		t.Fatalf("ParseHash(%q): %v", a.String(), err)
	}
	if parsed != a {
		t.Error("ParseHash must round-trip String()")
	}
}

func TestParseHashRejectsBadInput(t *testing.T) {
	if _, err := ParseHash("zz"); err == nil {
		t.Error("expected error for non-hex input")
	}
	if _, err := ParseHash("abcd"); err == nil {
		t.Error("expected error for short input")
	}
}
