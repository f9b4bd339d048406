package station

// staticStation cycles the track list in declared order, forever. No
// randomness, no transitions: the whole month is one long rotation.
type staticStation struct {
	*scheduler
}

func (st *staticStation) NextSegment() (*Synced, error) {
	return st.rotateTrack(st.epochMS())
}

func (st *staticStation) Current() (*Synced, error) {
	return st.syncTo(st.NextSegment)
}
