package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gowri-arun/astraq-kg/pkg/client"
)

// Config
const (
	pollRate       = 2 * time.Second
	viewportHeight = 20
)

// Styles
var (
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			Width(100)

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			Width(100)

	satelliteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	productStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	edgeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type tickMsg time.Time

type dataMsg struct {
	stats *client.Stats
	dump  *client.GraphDump
	err   error
}

type model struct {
	api      *client.Client
	spinner  spinner.Model
	viewport viewport.Model
	stats    *client.Stats
	dump     *client.GraphDump
	err      error
	ready    bool
}

func initialModel(api *client.Client) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return model{
		api:     api,
		spinner: s,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		fetchData(m.api),
		tick(),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tickMsg:
		cmds = append(cmds, fetchData(m.api), tick())

	case dataMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.stats = msg.stats
			m.dump = msg.dump
			m.updateViewportContent()
		}

		if !m.ready {
			m.ready = true
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, viewportHeight)
			m.viewport.Style = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				PaddingRight(2)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = viewportHeight
		}
	}

	return m, tea.Batch(cmds...)
}

// updateViewportContent renders satellites with the products they
// produce, one tree per satellite.
func (m *model) updateViewportContent() {
	if m.dump == nil {
		return
	}

	names := make(map[string]string)
	for _, node := range m.dump.Nodes {
		key := node.Label + "/" + node.ID
		if name := node.Properties["name"]; name != "" {
			names[key] = name
		} else {
			names[key] = node.ID
		}
	}

	produces := make(map[string][]string)
	for _, edge := range m.dump.Edges {
		if edge.Type != "PRODUCES" {
			continue
		}
		from := edge.From.Label + "/" + edge.From.ID
		to := edge.To.Label + "/" + edge.To.ID
		produces[from] = append(produces[from], names[to])
	}

	satellites := make([]string, 0)
	for _, node := range m.dump.Nodes {
		if node.Label == "Satellite" {
			satellites = append(satellites, node.Label+"/"+node.ID)
		}
	}
	sort.Slice(satellites, func(i, j int) bool {
		return names[satellites[i]] < names[satellites[j]]
	})

	var sb strings.Builder
	for _, sat := range satellites {
		sb.WriteString(satelliteStyle.Render(names[sat]))
		sb.WriteString("\n")
		products := produces[sat]
		sort.Strings(products)
		for _, product := range products {
			sb.WriteString(edgeStyle.Render("  └─ "))
			sb.WriteString(productStyle.Render(product))
			sb.WriteString("\n")
		}
	}

	m.viewport.SetContent(sb.String())
}

func (m model) View() string {
	if !m.ready {
		return fmt.Sprintf("\n%s Initializing...", m.spinner.View())
	}

	// Top Pane: Graph Statistics
	var statsList strings.Builder
	statsList.WriteString(lipgloss.NewStyle().Bold(true).Underline(true).Render("Graph Contents") + "\n\n")

	if m.stats == nil {
		statsList.WriteString(subtleStyle.Render("No data yet."))
	} else {
		labels := make([]string, 0, len(m.stats.NodeCounts))
		for label := range m.stats.NodeCounts {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			statsList.WriteString(fmt.Sprintf("• %-10s %d\n", label, m.stats.NodeCounts[label]))
		}

		types := make([]string, 0, len(m.stats.EdgeCounts))
		for typ := range m.stats.EdgeCounts {
			types = append(types, typ)
		}
		sort.Strings(types)
		for _, typ := range types {
			statsList.WriteString(subtleStyle.Render(fmt.Sprintf("  %-10s %d\n", typ, m.stats.EdgeCounts[typ])))
		}
	}

	topPane := paneStyle.Render(statsList.String())

	// Bottom Pane: Satellite Tree
	header := headerStyle.Render(fmt.Sprintf("%s Satellite Explorer", m.spinner.View()))
	bottomPane := m.viewport.View()

	// Status Footer
	var status string
	if m.err != nil {
		status = errorStyle.Render(fmt.Sprintf("Offline: %v", m.err))
	} else if m.stats != nil {
		status = okStyle.Render(fmt.Sprintf("Online • %d Nodes • %d Edges", m.stats.TotalNodes, m.stats.TotalEdges))
	}
	footer := subtleStyle.Render(fmt.Sprintf("\n%s\nPress q to quit", status))

	return lipgloss.JoinVertical(lipgloss.Left, topPane, header, bottomPane, footer)
}

// Commands

func fetchData(api *client.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pollRate)
		defer cancel()

		stats, err := api.GetStats(ctx)
		if err != nil {
			return dataMsg{err: err}
		}

		dump, err := api.GetGraph(ctx)
		if err != nil {
			return dataMsg{err: err}
		}

		return dataMsg{
			stats: stats,
			dump:  dump,
			err:   nil,
		}
	}
}

func tick() tea.Cmd {
	return tea.Tick(pollRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func main() {
	api := client.NewClient(os.Getenv("ASTRAKG_ENDPOINT"))
	p := tea.NewProgram(initialModel(api), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}
