package indicators

// window is a fixed-size ring buffer with a running sum.
type window struct {
	buf  []float64
	head int
	n    int
	sum  float64
}

func newWindow(size int) *window {
	return &window{buf: make([]float64, size)}
}

// push adds x, evicting the oldest value once the window is full.
func (w *window) push(x float64) {
	if w.n == len(w.buf) {
		w.sum -= w.buf[w.head]
	} else {
		w.n++
	}
	w.buf[w.head] = x
	w.sum += x
	w.head = (w.head + 1) % len(w.buf)
}

func (w *window) full() bool { return w.n == len(w.buf) }

func (w *window) mean() float64 { return w.sum / float64(w.n) }

// oldest returns the value that will be evicted next.
func (w *window) oldest() float64 {
	if !w.full() {
		return w.buf[0]
	}
	return w.buf[w.head]
}

func (w *window) reset() {
	for i := range w.buf {
		w.buf[i] = 0
	}
	w.head, w.n, w.sum = 0, 0, 0
}
