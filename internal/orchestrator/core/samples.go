package core

// SampleHistory keeps the last N execution-time samples in a fixed-capacity
// ring buffer. Once full, recording drops the oldest sample in O(1); this is
// the one place FIFO rotation is allowed instead of a capacity error.
type SampleHistory struct {
	buf  []uint64
	head int
	size int
}

func NewSampleHistory(capacity int) *SampleHistory {
	if capacity <= 0 {
		capacity = 1
	}
	return &SampleHistory{buf: make([]uint64, capacity)}
}

// Record appends a sample, evicting the oldest once at capacity.
func (s *SampleHistory) Record(v uint64) {
	tail := (s.head + s.size) % len(s.buf)
	s.buf[tail] = v
	if s.size < len(s.buf) {
		s.size++
	} else {
		s.head = (s.head + 1) % len(s.buf)
	}
}

func (s *SampleHistory) Len() int {
	return s.size
}

// Average returns the mean of the retained samples, zero when empty.
func (s *SampleHistory) Average() uint64 {
	if s.size == 0 {
		return 0
	}
	var sum uint64
	for i := 0; i < s.size; i++ {
		sum += s.buf[(s.head+i)%len(s.buf)]
	}
	return sum / uint64(s.size)
}

// Values returns the samples oldest first.
func (s *SampleHistory) Values() []uint64 {
	out := make([]uint64, s.size)
	for i := 0; i < s.size; i++ {
		out[i] = s.buf[(s.head+i)%len(s.buf)]
	}
	return out
}
