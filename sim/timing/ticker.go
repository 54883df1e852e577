package timing

// A Ticker is an object that updates states once per frame. Tick reports
// whether it made progress.
type Ticker interface {
	Tick() bool
}

// TickerFunc adapts a function to the Ticker interface.
type TickerFunc func() bool

// Tick calls f.
func (f TickerFunc) Tick() bool {
	return f()
}
