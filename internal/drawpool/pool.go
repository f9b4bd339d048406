// Package drawpool implements anti-repetition random index selection.
//
// A Pool picks indices from a fixed-size source list such that no index
// repeats within the last few draws. A Manager multiplexes independent
// pools by key so separate categories (track rotation, station IDs, solo
// bridges) each get their own no-repeat guarantee.
package drawpool

// DefaultNoRepeatWindow is the number of recent draws an index stays
// ineligible for when no explicit window is configured.
const DefaultNoRepeatWindow = 3

// Pool selects indices from [0, sourceSize) while keeping the most recent
// draws out of circulation. The window is clamped to sourceSize-1 so the
// drawable set can never be starved.
type Pool struct {
	drawable []int
	recent   []int
	window   int
}

// New creates a pool over sourceSize indices with the given no-repeat window.
func New(sourceSize, window int) *Pool {
	if window > sourceSize-1 {
		window = sourceSize - 1
	}
	if window < 0 {
		window = 0
	}

	drawable := make([]int, sourceSize)
	for i := range drawable {
		drawable[i] = i
	}

	return &Pool{
		drawable: drawable,
		recent:   make([]int, 0, window),
		window:   window,
	}
}

// Next maps raw onto the drawable set and returns the chosen index. The
// index is held back for the next window draws. The second return is false
// when nothing is drawable, which only happens for an empty source.
func (p *Pool) Next(raw uint32) (int, bool) {
	if len(p.drawable) == 0 {
		return 0, false
	}

	i := int(raw % uint32(len(p.drawable)))
	v := p.drawable[i]
	p.drawable = append(p.drawable[:i], p.drawable[i+1:]...)
	p.recent = append(p.recent, v)

	// An index ages back into circulation once it leaves the window.
	if len(p.recent) > p.window {
		p.drawable = append(p.drawable, p.recent[0])
		p.recent = p.recent[1:]
	}

	return v, true
}

// Manager lazily constructs one Pool per key. Keys are fully independent:
// drawing from one category never affects another's recent history.
type Manager struct {
	window int
	pools  map[string]*Pool
}

// NewManager creates a manager whose pools use the given no-repeat window.
func NewManager(window int) *Manager {
	return &Manager{
		window: window,
		pools:  make(map[string]*Pool),
	}
}

// Draw selects an index from the pool registered under key, creating the
// pool with sourceSize entries on first use.
func (m *Manager) Draw(key string, sourceSize int, raw uint32) (int, bool) {
	pool, ok := m.pools[key]
	if !ok {
		pool = New(sourceSize, m.window)
		m.pools[key] = pool
	}
	return pool.Next(raw)
}

// Reset discards every pool so the next Draw for each key starts fresh.
func (m *Manager) Reset() {
	m.pools = make(map[string]*Pool)
}
