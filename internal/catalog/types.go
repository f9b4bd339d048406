// Package catalog loads and exposes station metadata: the global station
// index, each station's declared file groups, and presentation info. It
// resolves the relative asset paths found in metadata against whichever
// data root (local directory or remote URL) answered the startup probe.
package catalog

import "path"

// File group names used by the schedulers.
const (
	GroupTracks    = "tracks"
	GroupIDs       = "id"
	GroupMonoSolos = "mono_solo"
)

// Segment describes one playable unit as declared in station metadata.
// Paths are relative to the active data root until resolved.
type Segment struct {
	Path            string    `json:"path"`
	Duration        float64   `json:"duration"`
	AudibleDuration float64   `json:"audible_duration,omitempty"`
	VoiceOvers      []Segment `json:"voiceovers,omitempty"`
}

// EffectiveDuration returns the duration counted toward playback timing:
// the audible duration when declared, otherwise the nominal one.
func (s Segment) EffectiveDuration() float64 {
	if s.AudibleDuration > 0 {
		return s.AudibleDuration
	}
	return s.Duration
}

// Info holds a station's presentation metadata.
type Info struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Icon        map[string]string `json:"icon,omitempty"`
}

// Meta is a station's full metadata document.
type Meta struct {
	Type       string               `json:"type"`
	Info       Info                 `json:"info"`
	FileGroups map[string][]Segment `json:"file_groups"`
}

// Group returns the named file group, or nil when absent.
func (m *Meta) Group(name string) []Segment {
	if m.FileGroups == nil {
		return nil
	}
	return m.FileGroups[name]
}

// iconFallback is the order tried when the requested icon variant is
// missing from the metadata.
var iconFallback = []string{"webp", "png", "jpg", "svg"}

// PreferredIcon returns the relative icon path for the requested variant,
// falling back through the known formats. The second return is false when
// the station declares no usable icon at all.
func (m *Meta) PreferredIcon(variant string) (string, bool) {
	if len(m.Info.Icon) == 0 {
		return "", false
	}
	if p, ok := m.Info.Icon[variant]; ok && p != "" {
		return p, true
	}
	for _, v := range iconFallback {
		if p, ok := m.Info.Icon[v]; ok && p != "" {
			return p, true
		}
	}
	return "", false
}

// IndexEntry is one station listed in the global index.
type IndexEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Index is the global station index document.
type Index struct {
	Stations []IndexEntry `json:"stations"`
}

// metaPath returns the metadata resource for a station path.
func metaPath(station string) string {
	return path.Join(station, "station.json")
}
