package station

import (
	"github.com/avrabel/longwave/internal/catalog"
	"github.com/avrabel/longwave/internal/rng"
)

// transitionChance is the percentage chance a step plays a transition
// instead of a track, once a transition is allowed at all.
const transitionChance = 50

// dynamicStation mixes tracks and transitions stochastically. One raw
// value is drawn per step and reused for every decision in that step:
// the track/transition coin flip, the pool draw, the transition category
// parity, and the voice-over pick. Keeping a single draw per step is what
// makes the sequence cheap to replay.
type dynamicStation struct {
	*scheduler
}

func (st *dynamicStation) NextSegment() (*Synced, error) {
	epochMS := st.epochMS()
	raw := st.src.Next()

	// A track must always follow a transition (and open the stream).
	forceTrack := st.prev == nil || !st.prev.IsTrack

	if !forceTrack && rng.Float(raw)*100 < transitionChance {
		return st.transition(raw, epochMS)
	}
	return st.track(raw, epochMS)
}

func (st *dynamicStation) track(raw uint32, epochMS int64) (*Synced, error) {
	tracks := st.meta.Group(catalog.GroupTracks)
	idx, ok := st.pools.Draw(catalog.GroupTracks, len(tracks), raw)
	if !ok {
		return nil, ErrNoTracks
	}
	desc := tracks[idx]

	seg := st.build(desc, true, epochMS)
	if n := len(desc.VoiceOvers); n > 0 {
		// Plain modulo, not pool-gated: voice-over repeats are fine.
		vo := desc.VoiceOvers[int(raw%uint32(n))]
		seg.VoiceOver = &Synced{
			Path:     st.res.Resolve(vo.Path),
			StartMS:  seg.StartMS,
			Duration: vo.EffectiveDuration(),
		}
	}

	st.advance(seg)
	return seg, nil
}

func (st *dynamicStation) transition(raw uint32, epochMS int64) (*Synced, error) {
	group := catalog.GroupIDs
	if raw%2 == 1 {
		group = catalog.GroupMonoSolos
	}

	items := st.meta.Group(group)
	idx, ok := st.pools.Draw(group, len(items), raw)
	if !ok {
		return nil, emptyGroup(group)
	}

	seg := st.build(items[idx], false, epochMS)
	st.advance(seg)
	return seg, nil
}

func (st *dynamicStation) Current() (*Synced, error) {
	return st.syncTo(st.NextSegment)
}
