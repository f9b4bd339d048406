package icons

// Style represents the icon style to use.
type Style string

const (
	StyleNerd    Style = "nerd"
	StyleUnicode Style = "unicode"
	StyleNone    Style = "none"
)

// Icons holds the icon characters for the current style.
type Icons struct {
	Station    string
	Track      string
	Transition string
	VoiceOver  string
	Live       string
}

var (
	nerdIcons = Icons{
		Station:    " ", // nf-md-radio_tower
		Track:      " ", // nf-fa-music
		Transition: " ", // nf-fa-bolt
		VoiceOver:  " ", // nf-fa-microphone
		Live:       "",  // nf-fa-circle
	}

	unicodeIcons = Icons{
		Station:    "📻 ",
		Track:      "🎵 ",
		Transition: "⚡ ",
		VoiceOver:  "🎙 ",
		Live:       "●",
	}

	noneIcons = Icons{
		Station:    "",
		Track:      "",
		Transition: "",
		VoiceOver:  "[vo]",
		Live:       "*",
	}

	// current holds the active icon set
	current = noneIcons
)

// Init initializes the icons based on the style.
// Call this once at startup with the config value.
func Init(style string) {
	switch Style(style) {
	case StyleNerd:
		current = nerdIcons
	case StyleUnicode:
		current = unicodeIcons
	case StyleNone:
		current = noneIcons
	default:
		current = noneIcons
	}
}

// FormatStation formats a station name with the appropriate icon.
func FormatStation(name string) string {
	return current.Station + name
}

// FormatTrack formats a track title with the appropriate icon.
func FormatTrack(name string) string {
	return current.Track + name
}

// FormatTransition formats a transition title with the appropriate icon.
func FormatTransition(name string) string {
	return current.Transition + name
}

// VoiceOver returns the voice-over indicator.
func VoiceOver() string {
	return current.VoiceOver
}

// Live returns the on-air indicator.
func Live() string {
	return current.Live
}
