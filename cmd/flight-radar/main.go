// Mock Flights Radar
// Terminal map that drains the flight feed once per frame
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/unklstewy/mockflights/internal/feedpump"
	"github.com/unklstewy/mockflights/internal/logging"
	"github.com/unklstewy/mockflights/pkg/config"
	"github.com/unklstewy/mockflights/pkg/flightsim"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")
	remoteURL  = flag.String("remote", "", "WebSocket feed URL, e.g. ws://localhost:8080/ws (default: in-process simulation)")
)

// frameMsg carries the reports drained during one frame.
type frameMsg struct {
	runID   string
	reports []flightsim.Report
}

// runFinishedMsg is sent when the in-process simulation stops stepping.
type runFinishedMsg struct{}

// feedClosedMsg is sent when a remote feed ends.
type feedClosedMsg struct {
	err error
}

type blip struct {
	report     flightsim.Report
	dLon, dLat float64
}

type model struct {
	source     string
	runID      string
	flights    map[string]*blip
	order      []string // first-seen order
	selected   int
	frames     uint64
	reports    uint64
	finished   bool
	closed     bool
	err        error
	showLabels bool
	width      int
	height     int
}

func newModel(source string) model {
	return model{
		source:     source,
		flights:    make(map[string]*blip),
		showLabels: true,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "l":
			m.showLabels = !m.showLabels
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.order)-1 {
				m.selected++
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case frameMsg:
		m.frames++
		if msg.runID != "" {
			m.runID = msg.runID
		}
		for _, r := range msg.reports {
			m.upsert(r)
		}

	case runFinishedMsg:
		m.finished = true

	case feedClosedMsg:
		m.closed = true
		m.err = msg.err
	}

	return m, nil
}

// upsert records the latest report for a flight, keyed by name.
func (m *model) upsert(r flightsim.Report) {
	m.reports++
	b, ok := m.flights[r.Name]
	if !ok {
		m.flights[r.Name] = &blip{report: r}
		m.order = append(m.order, r.Name)
		return
	}
	b.dLon = r.Longitude - b.report.Longitude
	b.dLat = r.Latitude - b.report.Latitude
	b.report = r
}

func (m model) selectedName() string {
	if m.selected < 0 || m.selected >= len(m.order) {
		return ""
	}
	return m.order[m.selected]
}

func (m model) View() string {
	var s strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)
	s.WriteString(titleStyle.Render("MOCK FLIGHTS RADAR"))
	s.WriteString("\n\n")

	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	state := "live"
	switch {
	case m.closed:
		state = "feed closed"
	case m.finished:
		state = "run finished"
	}
	s.WriteString(statusStyle.Render(fmt.Sprintf("  %s | run %s | %s | tracked %d | off map %d | frames %d | reports %d",
		m.source, shortID(m.runID), state, len(m.flights), m.offMap(), m.frames, m.reports)))
	s.WriteString("\n")

	s.WriteString(m.renderMap())
	s.WriteString("\n")
	s.WriteString(m.renderDetail())
	s.WriteString("\n")

	if m.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		s.WriteString(errStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
		s.WriteString("\n")
	}

	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	s.WriteString(helpStyle.Render("  ↑/↓ select • l labels • q quit"))
	return s.String()
}

func shortID(id string) string {
	if id == "" {
		return "-"
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *remoteURL != "" {
		cfg.Radar.RemoteURL = *remoteURL
	}

	// The terminal belongs to the TUI, so logs go to a file
	logCfg := cfg.Logging
	logCfg.OutputPaths = []string{cfg.Radar.LogFile}
	logger, err := logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := "local"
	if cfg.Radar.RemoteURL != "" {
		source = cfg.Radar.RemoteURL
	}
	p := tea.NewProgram(newModel(source), tea.WithAltScreen())

	if cfg.Radar.RemoteURL != "" {
		go func() {
			err := streamRemote(ctx, cfg.Radar.RemoteURL, p.Send, logger)
			p.Send(feedClosedMsg{err: err})
		}()
	} else {
		sim := flightsim.New(flightsim.WithLogger(logger))
		if err := sim.Start(ctx); err != nil {
			return fmt.Errorf("failed to start simulation: %w", err)
		}
		defer sim.Stop()

		go func() {
			select {
			case <-sim.Done():
				p.Send(runFinishedMsg{})
			case <-ctx.Done():
			}
		}()

		pump := feedpump.New(sim, cfg.Feed.FrameInterval(), cfg.Feed.BatchSize, logger)
		go func() {
			err := pump.Run(ctx, func(_ context.Context, batch []flightsim.Report) error {
				p.Send(frameMsg{runID: sim.ID(), reports: batch})
				return nil
			})
			if err != nil {
				logger.Error("Feed pump stopped", zap.Error(err))
			}
		}()
	}

	logger.Info("Radar started", zap.String("source", source))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
