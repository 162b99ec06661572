package regime

// ring is a fixed-capacity circular buffer of float64 samples.
// 가득 차면 가장 오래된 값을 덮어쓴다.
type ring struct {
	buf   []float64
	next  int
	count int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]float64, capacity)}
}

// Push appends a value, evicting the oldest when full
func (r *ring) Push(v float64) {
	r.buf[r.next] = v
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Len returns the number of stored samples
func (r *ring) Len() int {
	return r.count
}

// Cap returns the buffer capacity
func (r *ring) Cap() int {
	return len(r.buf)
}

// Values returns the samples oldest-first
func (r *ring) Values() []float64 {
	out := make([]float64, 0, r.count)
	if r.count < len(r.buf) {
		return append(out, r.buf[:r.count]...)
	}
	out = append(out, r.buf[r.next:]...)
	return append(out, r.buf[:r.next]...)
}

// Last returns the most recent sample, false when empty
func (r *ring) Last() (float64, bool) {
	if r.count == 0 {
		return 0, false
	}
	idx := (r.next - 1 + len(r.buf)) % len(r.buf)
	return r.buf[idx], true
}

// Tail returns up to n of the most recent samples, oldest-first
func (r *ring) Tail(n int) []float64 {
	values := r.Values()
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

// Restore refills the ring from an oldest-first snapshot
func (r *ring) Restore(values []float64) {
	r.next = 0
	r.count = 0
	start := 0
	if len(values) > len(r.buf) {
		start = len(values) - len(r.buf)
	}
	for _, v := range values[start:] {
		r.Push(v)
	}
}
