package station

import "github.com/avrabel/longwave/internal/catalog"

// talkshowStation strictly alternates track and transition. Tracks follow
// the fixed rotation; transitions are a non-repeating draw from the
// station-ID group. The rotation cursor only moves on track steps.
type talkshowStation struct {
	*scheduler
}

func (st *talkshowStation) NextSegment() (*Synced, error) {
	epochMS := st.epochMS()

	if st.prev == nil || !st.prev.IsTrack {
		return st.rotateTrack(epochMS)
	}

	ids := st.meta.Group(catalog.GroupIDs)
	idx, ok := st.pools.Draw(catalog.GroupIDs, len(ids), st.src.Next())
	if !ok {
		return nil, emptyGroup(catalog.GroupIDs)
	}

	seg := st.build(ids[idx], false, epochMS)
	st.advance(seg)
	return seg, nil
}

func (st *talkshowStation) Current() (*Synced, error) {
	return st.syncTo(st.NextSegment)
}
