package station

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/avrabel/longwave/internal/catalog"
)

// prefixResolver resolves paths the way the remote data root would.
type prefixResolver struct{}

func (prefixResolver) Resolve(rel string) string {
	return "https://cdn.example.net/radio/" + rel
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// midMonth is a little over 13 days into the epoch, enough for a few
// thousand simulation steps per query.
var midMonth = time.Date(2026, time.March, 14, 15, 9, 26, 0, time.UTC)

func testMeta(stationType string) *catalog.Meta {
	return &catalog.Meta{
		Type: stationType,
		Info: catalog.Info{Name: "Test"},
		FileGroups: map[string][]catalog.Segment{
			catalog.GroupTracks: {
				{Path: "t/track0.ogg", Duration: 190},
				{Path: "t/track1.ogg", Duration: 215, AudibleDuration: 180},
				{Path: "t/track2.ogg", Duration: 204},
				{Path: "t/track3.ogg", Duration: 178},
			},
			catalog.GroupIDs: {
				{Path: "id/id0.ogg", Duration: 6},
				{Path: "id/id1.ogg", Duration: 8},
				{Path: "id/id2.ogg", Duration: 5},
			},
			catalog.GroupMonoSolos: {
				{Path: "ms/solo0.ogg", Duration: 12},
				{Path: "ms/solo1.ogg", Duration: 9},
			},
		},
	}
}

func mustNew(t *testing.T, meta *catalog.Meta, opts ...Option) Station {
	t.Helper()
	opts = append([]Option{WithClock(fixedClock(midMonth))}, opts...)
	st, err := New("stations/test", meta, prefixResolver{}, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return st
}

func TestNew_NilMetadata(t *testing.T) {
	if _, err := New("stations/test", nil, prefixResolver{}); !errors.Is(err, ErrNoMetadata) {
		t.Fatalf("New(nil meta) err = %v, want ErrNoMetadata", err)
	}
}

func TestStatic_FixedRotation(t *testing.T) {
	st := mustNew(t, testMeta(TypeStatic))

	want := []string{"track0", "track1", "track2", "track3", "track0", "track1", "track2"}
	for i, name := range want {
		seg, err := st.NextSegment()
		if err != nil {
			t.Fatalf("NextSegment %d: %v", i, err)
		}
		if !strings.Contains(seg.Path, name) {
			t.Errorf("step %d path = %q, want %s", i, seg.Path, name)
		}
		if !seg.IsTrack {
			t.Errorf("step %d IsTrack = false, want true", i)
		}
	}
}

func TestStatic_SegmentsAreContiguous(t *testing.T) {
	st := mustNew(t, testMeta(TypeStatic))

	prevEnd := MonthStart(midMonth).UnixMilli()
	for i := 0; i < 10; i++ {
		seg, err := st.NextSegment()
		if err != nil {
			t.Fatalf("NextSegment %d: %v", i, err)
		}
		if seg.StartMS != prevEnd {
			t.Errorf("step %d starts at %d, want %d", i, seg.StartMS, prevEnd)
		}
		prevEnd = seg.EndMS()
	}
}

func TestStatic_AudibleDurationDrivesTiming(t *testing.T) {
	st := mustNew(t, testMeta(TypeStatic))

	st.NextSegment() // track0
	seg, err := st.NextSegment()
	if err != nil {
		t.Fatalf("NextSegment: %v", err)
	}
	// track1 declares 215s nominal but 180s audible.
	if seg.Duration != 180 {
		t.Errorf("Duration = %v, want audible 180", seg.Duration)
	}
}

func TestTalkshow_StrictAlternation(t *testing.T) {
	st := mustNew(t, testMeta(TypeTalkshow))

	var flags []bool
	for i := 0; i < 40; i++ {
		seg, err := st.NextSegment()
		if err != nil {
			t.Fatalf("NextSegment %d: %v", i, err)
		}
		flags = append(flags, seg.IsTrack)
	}

	if !flags[0] {
		t.Fatal("first segment must be a track")
	}
	for i := 1; i < len(flags); i++ {
		if flags[i] == flags[i-1] {
			t.Fatalf("consecutive equal isTrack flags at steps %d,%d", i-1, i)
		}
	}
}

func TestTalkshow_TracksKeepRotationOrder(t *testing.T) {
	st := mustNew(t, testMeta(TypeTalkshow))

	want := []string{"track0", "track1", "track2", "track3", "track0"}
	got := 0
	for i := 0; i < 20 && got < len(want); i++ {
		seg, err := st.NextSegment()
		if err != nil {
			t.Fatalf("NextSegment %d: %v", i, err)
		}
		if !seg.IsTrack {
			continue
		}
		if !strings.Contains(seg.Path, want[got]) {
			t.Errorf("track %d path = %q, want %s", got, seg.Path, want[got])
		}
		got++
	}
	if got != len(want) {
		t.Fatalf("saw %d tracks, want %d", got, len(want))
	}
}

func TestTalkshow_NoVoiceOvers(t *testing.T) {
	meta := testMeta(TypeTalkshow)
	meta.FileGroups[catalog.GroupTracks][0].VoiceOvers = []catalog.Segment{
		{Path: "vo/v0.ogg", Duration: 10},
	}
	st := mustNew(t, meta)

	for i := 0; i < 10; i++ {
		seg, err := st.NextSegment()
		if err != nil {
			t.Fatalf("NextSegment %d: %v", i, err)
		}
		if seg.VoiceOver != nil {
			t.Fatalf("step %d carries a voice-over; alternating stations never do", i)
		}
	}
}

func TestDynamic_TrackAlwaysFollowsTransition(t *testing.T) {
	st := mustNew(t, testMeta(TypeDynamic))

	var prev *Synced
	for i := 0; i < 500; i++ {
		seg, err := st.NextSegment()
		if err != nil {
			t.Fatalf("NextSegment %d: %v", i, err)
		}
		if prev != nil && !prev.IsTrack && !seg.IsTrack {
			t.Fatalf("two consecutive transitions at steps %d,%d", i-1, i)
		}
		prev = seg
	}
}

func TestDynamic_PlaysBothTransitionCategories(t *testing.T) {
	st := mustNew(t, testMeta(TypeDynamic))

	sawID, sawSolo := false, false
	for i := 0; i < 1000 && !(sawID && sawSolo); i++ {
		seg, err := st.NextSegment()
		if err != nil {
			t.Fatalf("NextSegment %d: %v", i, err)
		}
		if seg.IsTrack {
			continue
		}
		if strings.Contains(seg.Path, "/id/") {
			sawID = true
		}
		if strings.Contains(seg.Path, "/ms/") {
			sawSolo = true
		}
	}
	if !sawID || !sawSolo {
		t.Errorf("transition categories seen: id=%v mono_solo=%v, want both", sawID, sawSolo)
	}
}

func TestDynamic_VoiceOverResolvedAndStamped(t *testing.T) {
	meta := testMeta(TypeDynamic)
	for i := range meta.FileGroups[catalog.GroupTracks] {
		meta.FileGroups[catalog.GroupTracks][i].VoiceOvers = []catalog.Segment{
			{Path: "vo/v0.ogg", Duration: 11},
			{Path: "vo/v1.ogg", Duration: 14},
		}
	}
	st := mustNew(t, meta)

	for i := 0; i < 50; i++ {
		seg, err := st.NextSegment()
		if err != nil {
			t.Fatalf("NextSegment %d: %v", i, err)
		}
		if !seg.IsTrack {
			continue
		}
		if seg.VoiceOver == nil {
			t.Fatalf("track at step %d missing voice-over", i)
		}
		if !strings.HasPrefix(seg.VoiceOver.Path, "https://cdn.example.net/radio/vo/") {
			t.Errorf("voice-over path not resolved: %q", seg.VoiceOver.Path)
		}
		if seg.VoiceOver.StartMS != seg.StartMS {
			t.Errorf("voice-over start %d != track start %d", seg.VoiceOver.StartMS, seg.StartMS)
		}
	}
}

func TestNew_UnknownTypeIsDynamic(t *testing.T) {
	// A dynamic station eventually plays transitions; a static one never
	// does. Unrecognized types must behave like dynamic.
	st := mustNew(t, testMeta("experimental_v2"))

	sawTransition := false
	for i := 0; i < 200; i++ {
		seg, err := st.NextSegment()
		if err != nil {
			t.Fatalf("NextSegment %d: %v", i, err)
		}
		if !seg.IsTrack {
			sawTransition = true
			break
		}
	}
	if !sawTransition {
		t.Error("unknown type never played a transition; default should be the stochastic scheduler")
	}
}

func TestCurrent_SyncStability(t *testing.T) {
	for _, typ := range []string{TypeStatic, TypeTalkshow, TypeDynamic} {
		t.Run(typ, func(t *testing.T) {
			a := mustNew(t, testMeta(typ))
			b := mustNew(t, testMeta(typ))

			segA, err := a.Current()
			if err != nil {
				t.Fatalf("Current a: %v", err)
			}
			segB, err := b.Current()
			if err != nil {
				t.Fatalf("Current b: %v", err)
			}

			if segA.Path != segB.Path {
				t.Errorf("paths differ: %q != %q", segA.Path, segB.Path)
			}
			if segA.StartMS != segB.StartMS {
				t.Errorf("start timestamps differ: %d != %d", segA.StartMS, segB.StartMS)
			}
		})
	}
}

func TestCurrent_RepeatableWithoutTimePassing(t *testing.T) {
	st := mustNew(t, testMeta(TypeDynamic))

	first, err := st.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	second, err := st.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}

	if first.Path != second.Path || first.StartMS != second.StartMS {
		t.Errorf("back-to-back Current calls differ: %+v vs %+v", first, second)
	}
}

func TestCurrent_SeekOffsetWithinSegment(t *testing.T) {
	for _, typ := range []string{TypeStatic, TypeTalkshow, TypeDynamic} {
		t.Run(typ, func(t *testing.T) {
			st := mustNew(t, testMeta(typ))

			seg, err := st.Current()
			if err != nil {
				t.Fatalf("Current: %v", err)
			}

			offset := midMonth.UnixMilli() - seg.StartMS
			if offset < 0 || offset >= int64(seg.Duration*1000) {
				t.Errorf("seek offset %dms outside [0, %vms)", offset, seg.Duration*1000)
			}
		})
	}
}

func TestCurrent_NextSegmentFollowsCurrent(t *testing.T) {
	st := mustNew(t, testMeta(TypeDynamic))

	cur, err := st.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	next, err := st.NextSegment()
	if err != nil {
		t.Fatalf("NextSegment: %v", err)
	}

	if next.StartMS != cur.EndMS() {
		t.Errorf("upcoming segment starts at %d, want %d (end of current)", next.StartMS, cur.EndMS())
	}
}

func TestCurrent_MonthRolloverReseeds(t *testing.T) {
	march := time.Date(2026, time.March, 31, 23, 59, 0, 0, time.UTC)
	april := time.Date(2026, time.April, 1, 0, 2, 30, 0, time.UTC)

	now := march
	st, err := New("stations/test", testMeta(TypeDynamic), prefixResolver{},
		WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := st.Current(); err != nil {
		t.Fatalf("Current in March: %v", err)
	}

	now = april
	seg, err := st.Current()
	if err != nil {
		t.Fatalf("Current in April: %v", err)
	}

	aprilEpoch := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	if seg.StartMS < aprilEpoch {
		t.Errorf("segment starts at %d, before the April epoch %d", seg.StartMS, aprilEpoch)
	}
}

func TestCurrent_EmptyTrackList(t *testing.T) {
	meta := testMeta(TypeDynamic)
	meta.FileGroups[catalog.GroupTracks] = nil

	st := mustNew(t, meta)
	if _, err := st.Current(); !errors.Is(err, ErrNoTracks) {
		t.Fatalf("Current err = %v, want ErrNoTracks", err)
	}
}

func TestTalkshow_EmptyIDGroup(t *testing.T) {
	meta := testMeta(TypeTalkshow)
	meta.FileGroups[catalog.GroupIDs] = nil

	st := mustNew(t, meta)
	if _, err := st.Current(); !errors.Is(err, ErrEmptyGroup) {
		t.Fatalf("Current err = %v, want ErrEmptyGroup", err)
	}
}

func TestCurrent_ZeroDurationTracksDoNotHang(t *testing.T) {
	meta := testMeta(TypeStatic)
	meta.FileGroups[catalog.GroupTracks] = []catalog.Segment{{Path: "t/zero.ogg", Duration: 0}}

	clock := fixedClock(time.Date(2026, time.March, 1, 0, 0, 1, 0, time.UTC))
	st, err := New("stations/test", meta, prefixResolver{}, WithClock(clock))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := st.Current(); err == nil {
		t.Fatal("Current should fail on a schedule that never advances time")
	}
}
