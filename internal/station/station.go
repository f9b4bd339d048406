// Package station computes which segment a station is playing at the
// current instant, without talking to anything. Each query re-simulates
// segment selection from the start of the current UTC month using a
// seeded number source, so every listener lands on the same segment at
// the same offset.
package station

import (
	"errors"
	"fmt"
	"time"

	"github.com/avrabel/longwave/internal/catalog"
	"github.com/avrabel/longwave/internal/drawpool"
	"github.com/avrabel/longwave/internal/rng"
)

// Station type values recognized by New. Anything else selects the
// weighted-stochastic scheduler.
const (
	TypeStatic   = "static"
	TypeTalkshow = "talkshow"
	TypeDynamic  = "dynamic"
)

var (
	// ErrNoTracks is returned when a station declares no primary tracks.
	// Without it the replay loop could never advance simulated time.
	ErrNoTracks = errors.New("station has no tracks")

	// ErrEmptyGroup is returned when a selection policy needs a file
	// group that is empty or missing.
	ErrEmptyGroup = errors.New("file group is empty")

	// ErrNoMetadata is returned by New when metadata is missing.
	ErrNoMetadata = errors.New("station metadata not loaded")
)

// maxReplaySteps caps a single re-simulation. A month of one-second
// segments stays well under it; hitting the cap means segment durations
// are broken in a way that would otherwise loop forever.
const maxReplaySteps = 4 << 20

var errReplayStalled = errors.New("replay exceeded step limit, check segment durations")

// Resolver maps a metadata-relative asset path to a fetchable location.
type Resolver interface {
	Resolve(rel string) string
}

// Clock supplies the current time. Injected in tests.
type Clock func() time.Time

// Synced is a segment pinned to absolute time. StartMS is epoch
// milliseconds; the seek offset for a listener is now minus StartMS.
type Synced struct {
	Path      string
	StartMS   int64
	Duration  float64 // seconds counted toward timing
	IsTrack   bool
	VoiceOver *Synced
}

// EndMS returns the instant the segment stops occupying the timeline.
func (s *Synced) EndMS() int64 {
	return s.StartMS + int64(s.Duration*1000)
}

// Station produces a station's time-stamped segment stream.
//
// NextSegment advances the simulation one step and returns the upcoming
// segment; Current resets the simulation to the month epoch and replays
// it up to the present instant. Neither is safe for concurrent use on
// the same instance; give each concurrent consumer its own Station.
type Station interface {
	Path() string
	Meta() *catalog.Meta
	NextSegment() (*Synced, error)
	Current() (*Synced, error)
}

// Option configures a Station created by New.
type Option func(*scheduler)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *scheduler) { s.clock = c }
}

// WithNoRepeatWindow overrides the draw pools' no-repeat window.
func WithNoRepeatWindow(n int) Option {
	return func(s *scheduler) { s.window = n }
}

// New creates the scheduler variant declared by the metadata's type.
// Unrecognized types get the weighted-stochastic default.
func New(path string, meta *catalog.Meta, res Resolver, opts ...Option) (Station, error) {
	if meta == nil {
		return nil, ErrNoMetadata
	}

	base := &scheduler{
		path:   path,
		meta:   meta,
		res:    res,
		clock:  time.Now,
		window: drawpool.DefaultNoRepeatWindow,
	}
	for _, opt := range opts {
		opt(base)
	}
	// Seeded for the current epoch up front so NextSegment streams
	// deterministically even before the first Current call.
	base.src = rng.New(uint32(MonthStart(base.clock()).Unix()))
	base.pools = drawpool.NewManager(base.window)

	switch meta.Type {
	case TypeStatic:
		return &staticStation{scheduler: base}, nil
	case TypeTalkshow:
		return &talkshowStation{scheduler: base}, nil
	default:
		return &dynamicStation{scheduler: base}, nil
	}
}

// scheduler holds the state shared by all variants. It deliberately has
// no NextSegment of its own: only the concrete variants are constructible.
type scheduler struct {
	path   string
	meta   *catalog.Meta
	res    Resolver
	clock  Clock
	window int

	src   *rng.Source
	pools *drawpool.Manager

	accumulated float64 // simulated seconds since the month epoch
	cursor      int
	prev        *Synced
}

func (s *scheduler) Path() string {
	return s.path
}

func (s *scheduler) Meta() *catalog.Meta {
	return s.meta
}

// epochMS reads the current synchronization epoch off the clock. Always
// recomputed, never cached, so a month rollover takes effect immediately.
func (s *scheduler) epochMS() int64 {
	return MonthStart(s.clock()).UnixMilli()
}

// reset rewinds all per-run state to the given epoch. Every Current call
// starts here, which is what keeps instances stateless between queries.
func (s *scheduler) reset(epoch time.Time) {
	s.accumulated = 0
	s.cursor = 0
	s.prev = nil
	s.pools.Reset()
	s.src.Reset(uint32(epoch.Unix()))
}

// build stamps a descriptor with its absolute start time and resolves its
// path against the active data root.
func (s *scheduler) build(desc catalog.Segment, isTrack bool, epochMS int64) *Synced {
	return &Synced{
		Path:     s.res.Resolve(desc.Path),
		StartMS:  epochMS + int64(s.accumulated*1000),
		Duration: desc.EffectiveDuration(),
		IsTrack:  isTrack,
	}
}

// advance commits a built segment as the previous one and moves simulated
// time past it.
func (s *scheduler) advance(seg *Synced) {
	s.accumulated += seg.Duration
	s.prev = seg
}

// rotateTrack is the fixed-rotation track policy shared by the static and
// talkshow variants.
func (s *scheduler) rotateTrack(epochMS int64) (*Synced, error) {
	tracks := s.meta.Group(catalog.GroupTracks)
	if len(tracks) == 0 {
		return nil, ErrNoTracks
	}

	desc := tracks[s.cursor%len(tracks)]
	s.cursor++

	seg := s.build(desc, true, epochMS)
	s.advance(seg)
	return seg, nil
}

// syncTo replays the simulation from the month epoch until the segment
// covering the present instant is reached. step is the variant's
// NextSegment.
func (s *scheduler) syncTo(step func() (*Synced, error)) (*Synced, error) {
	if len(s.meta.Group(catalog.GroupTracks)) == 0 {
		return nil, ErrNoTracks
	}

	now := s.clock()
	s.reset(MonthStart(now))
	nowMS := now.UnixMilli()

	for i := 0; i < maxReplaySteps; i++ {
		seg, err := step()
		if err != nil {
			return nil, err
		}
		if seg.EndMS() > nowMS {
			return seg, nil
		}
	}
	return nil, errReplayStalled
}

func emptyGroup(name string) error {
	return fmt.Errorf("%s: %w", name, ErrEmptyGroup)
}
