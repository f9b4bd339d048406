package main

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"path"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"

	"github.com/avrabel/longwave/internal/catalog"
	"github.com/avrabel/longwave/internal/config"
	"github.com/avrabel/longwave/internal/errmsg"
	"github.com/avrabel/longwave/internal/icons"
	"github.com/avrabel/longwave/internal/station"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

	playerBarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	selectedStyle = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type tickMsg time.Time

type indexMsg struct {
	index *catalog.Index
	err   error
}

type tunedMsg struct {
	entry catalog.IndexEntry
	st    station.Station
	err   error
}

type model struct {
	cfg      *config.Config
	resolver *catalog.Resolver
	loader   *catalog.Loader
	cache    *catalog.Cache

	stations []catalog.IndexEntry
	cursor   int

	tuned    station.Station
	tunedTo  catalog.IndexEntry
	current  *station.Synced
	upcoming *station.Synced
	seekBar  progress.Model

	status string
	width  int
	height int
}

func initialModel() (model, error) {
	cfg, err := config.Load()
	if err != nil {
		return model{}, err
	}
	if !cfg.HasDataRoot() {
		return model{}, fmt.Errorf("no data root configured; set local_root or remote_root in config.toml")
	}

	icons.Init(cfg.Icons)

	var cache *catalog.Cache
	var status string
	cacheCfg := cfg.GetCacheConfig()
	if *cacheCfg.Enabled {
		cache, err = catalog.OpenCache(cacheCfg.TTLDays)
		if err != nil {
			// The cache is an optimization; run without it.
			status = errmsg.Format(errmsg.OpCacheOpen, err)
			cache = nil
		}
	}

	resolver := catalog.NewResolver(cfg.LocalRoot, cfg.RemoteRoot)

	return model{
		cfg:      cfg,
		resolver: resolver,
		loader:   catalog.NewLoader(resolver, cache),
		cache:    cache,
		seekBar:  progress.New(progress.WithSolidFill("63"), progress.WithoutPercentage()),
		status:   status,
	}, nil
}

func (m model) Init() tea.Cmd {
	return probeCmd(m.resolver)
}

func probeCmd(res *catalog.Resolver) tea.Cmd {
	return func() tea.Msg {
		idx, err := res.Probe(context.Background())
		return indexMsg{index: idx, err: err}
	}
}

func tuneCmd(m model, entry catalog.IndexEntry) tea.Cmd {
	window := m.cfg.GetSchedulerConfig().NoRepeatWindow
	return func() tea.Msg {
		meta, err := m.loader.Load(context.Background(), entry.Path)
		if err != nil {
			return tunedMsg{entry: entry, err: err}
		}
		st, err := station.New(entry.Path, meta, m.resolver, station.WithNoRepeatWindow(window))
		return tunedMsg{entry: entry, st: st, err: err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.seekBar.Width = msg.Width - 6

	case indexMsg:
		if msg.err != nil {
			m.status = errmsg.Format(errmsg.OpIndexLoad, msg.err)
			return m, nil
		}
		m.stations = msg.index.Stations
		m.status = ""
		if m.cfg.DefaultStation != "" {
			for i, entry := range m.stations {
				if entry.Path == m.cfg.DefaultStation {
					m.cursor = i
					return m, tuneCmd(m, entry)
				}
			}
		}
		return m, nil

	case tunedMsg:
		if msg.err != nil {
			m.status = errmsg.FormatWith(errmsg.OpTune, msg.entry.Name, msg.err)
			return m, nil
		}
		m.tuned = msg.st
		m.tunedTo = msg.entry
		m.seekBar = progress.New(
			progress.WithGradient(accentHex(msg.entry.Name), "#FAFAFA"),
			progress.WithoutPercentage(),
		)
		m.seekBar.Width = m.width - 6
		m.status = ""
		m = m.resync()
		return m, tickCmd()

	case tickMsg:
		if m.tuned != nil {
			m = m.resync()
			return m, tickCmd()
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cache != nil {
				m.cache.Close()
			}
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.stations)-1 {
				m.cursor++
			}
		case "enter":
			if m.cursor < len(m.stations) {
				return m, tuneCmd(m, m.stations[m.cursor])
			}
		case "r":
			return m, probeCmd(m.resolver)
		}
	}

	return m, nil
}

// resync recomputes the playing segment and the one after it. The station
// replays its whole month from scratch here; that is what keeps every
// listener in agreement without shared state.
func (m model) resync() model {
	cur, err := m.tuned.Current()
	if err != nil {
		m.status = errmsg.Format(errmsg.OpSync, err)
		m.current = nil
		m.upcoming = nil
		return m
	}
	m.current = cur
	m.upcoming, _ = m.tuned.NextSegment()
	m.status = ""
	return m
}

func (m model) View() string {
	var b strings.Builder

	accent := lipgloss.Color(accentHex(m.tunedTo.Name))
	b.WriteString(titleStyle.Foreground(accent).Render("longwave"))
	b.WriteString(dimStyle.Render("  every listener hears the same thing"))
	b.WriteString("\n\n")

	if len(m.stations) == 0 && m.status == "" {
		b.WriteString(dimStyle.Render("  loading station index…"))
		b.WriteString("\n")
	}

	nameWidth := 28
	for i, entry := range m.stations {
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}

		name := runewidth.Truncate(entry.Name, nameWidth, "…")
		line := marker + icons.FormatStation(name)
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(accentHex(entry.Name)))
		if i == m.cursor {
			style = style.Inherit(selectedStyle)
		}
		b.WriteString(style.Render(line))

		if m.tuned != nil && entry.Path == m.tunedTo.Path {
			b.WriteString(" " + icons.Live())
		}
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}

	if m.tuned != nil && m.current != nil {
		b.WriteString("\n")
		b.WriteString(m.playerBar())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  enter: tune  r: reload index  q: quit"))
	return b.String()
}

func (m model) playerBar() string {
	cur := m.current
	now := time.Now().UnixMilli()

	offset := time.Duration(now-cur.StartMS) * time.Millisecond
	total := time.Duration(cur.Duration * float64(time.Second))

	title := segmentTitle(cur)
	if cur.VoiceOver != nil {
		title += " " + icons.VoiceOver()
	}

	right := fmt.Sprintf("%s / %s", formatDuration(offset), formatDuration(total))
	started := dimStyle.Render("started " + humanize.Time(time.UnixMilli(cur.StartMS)))

	innerWidth := m.width - 2
	if innerWidth < 10 {
		innerWidth = 10
	}

	left := " " + icons.Live() + " " + title
	left = ansi.Truncate(left, innerWidth-lipgloss.Width(right)-2, "…")
	padding := innerWidth - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if padding < 0 {
		padding = 0
	}
	topLine := left + strings.Repeat(" ", padding) + right + " "

	ratio := 0.0
	if total > 0 {
		ratio = float64(offset) / float64(total)
		if ratio > 1 {
			ratio = 1
		}
	}
	barLine := " " + m.seekBar.ViewAs(ratio)

	bottom := " " + started
	if m.upcoming != nil {
		next := "next: " + segmentTitle(m.upcoming)
		bottom += dimStyle.Render("   " + ansi.Truncate(next, innerWidth-lipgloss.Width(bottom)-4, "…"))
	}

	content := topLine + "\n" + barLine + "\n" + bottom
	return playerBarStyle.Width(innerWidth).Render(content)
}

func segmentTitle(seg *station.Synced) string {
	name := path.Base(seg.Path)
	name = strings.TrimSuffix(name, path.Ext(name))
	if seg.IsTrack {
		return icons.FormatTrack(name)
	}
	return icons.FormatTransition(name)
}

// accentHex derives a stable per-station color from its name, so the
// palette is the same for every listener.
func accentHex(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name)) //nolint:errcheck // fnv never fails
	hue := float64(h.Sum32() % 360)
	return colorful.Hsv(hue, 0.55, 0.90).Hex()
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}

func main() {
	m, err := initialModel()
	if err != nil {
		fmt.Printf("Error initializing: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
