package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cola/pkg/core/layout"
	"github.com/matzehuels/cola/pkg/graph"
	"github.com/matzehuels/cola/pkg/pipeline"
)

// defaultTickInterval is the delay between layout ticks in watch mode.
const defaultTickInterval = 50 * time.Millisecond

// maxWatchRows caps the node table in watch mode.
const maxWatchRows = 12

// Watch styles
var (
	watchRunningStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	watchDoneStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	watchStoppedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	watchDimStyle     = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// watch command
// =============================================================================

// watchCommand creates the watch command, which runs a layout in the
// terminal one tick per frame.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		output   string
		interval time.Duration
		flags    layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "watch [graph.json]",
		Short: "Run a layout interactively, one tick per frame",
		Long: `Run a layout interactively, one tick per frame.

The phases run first, then the layout keeps ticking with a little energy
until it converges. Press s to stop, r to resume and q to quit. With
--output the final positions are written as layout.json on exit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd)
			if err != nil {
				return err
			}
			return c.runWatch(cmd.Context(), args[0], opts, output, interval)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the final layout to this file")
	cmd.Flags().DurationVar(&interval, "interval", defaultTickInterval, "delay between ticks")
	flags.register(cmd.Flags())

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, input string, opts graph.Options, output string, interval time.Duration) error {
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	l, start, err := pipeline.Build(g, opts, c.Logger, nil)
	if err != nil {
		return err
	}
	if opts.PowerGraph {
		if _, err := l.PowerGraphGroups(); err != nil {
			return err
		}
	}
	start.KeepRunning = true

	spinner := newSpinnerWithContext(ctx, "Running layout phases...")
	spinner.Start()
	if err := l.Start(start); err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	p := tea.NewProgram(newWatchModel(l, g, interval), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if m, ok := final.(watchModel); ok && m.err != nil {
		return m.err
	}

	if output != "" {
		res := graph.NewResult(l, g)
		if err := graph.WriteResultFile(res, output); err != nil {
			return fmt.Errorf("write output %s: %w", output, err)
		}
		printSuccess("Layout written")
		printFile(output)
	}
	return nil
}

// =============================================================================
// watchModel - tick-by-tick layout view
// =============================================================================

// tickMsg asks the model to advance the layout by one tick.
type tickMsg struct{}

// watchModel is the bubbletea model for watch mode. Ticking pauses when
// the layout converges or is stopped; resuming restarts it.
type watchModel struct {
	layout   *layout.Layout
	src      graph.Graph
	interval time.Duration

	status  layout.Status
	ticks   int
	ticking bool
	err     error
}

func newWatchModel(l *layout.Layout, src graph.Graph, interval time.Duration) watchModel {
	if interval <= 0 {
		interval = defaultTickInterval
	}
	return watchModel{layout: l, src: src, interval: interval, status: layout.StatusRunning, ticking: true}
}

func (m watchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m watchModel) Init() tea.Cmd {
	return m.tick()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "s":
			m.layout.Stop()
		case "r":
			m.layout.Resume()
			m.status = layout.StatusRunning
			if !m.ticking {
				m.ticking = true
				return m, m.tick()
			}
		}
	case tickMsg:
		status, err := m.layout.Tick()
		if err != nil {
			m.err = err
			return m, tea.Quit
		}
		m.status = status
		if status != layout.StatusRunning {
			m.ticking = false
			return m, nil
		}
		m.ticks++
		return m, m.tick()
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("cola watch"))
	b.WriteString("  ")
	b.WriteString(m.statusLabel())
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s %s   %s %s   %s %s\n\n",
		watchDimStyle.Render("alpha"), StyleNumber.Render(strconv.FormatFloat(m.layout.Alpha(), 'g', 4, 64)),
		watchDimStyle.Render("stress"), StyleNumber.Render(strconv.FormatFloat(m.layout.Stress(), 'g', 6, 64)),
		watchDimStyle.Render("ticks"), StyleNumber.Render(strconv.Itoa(m.ticks)))

	b.WriteString(m.positionsTable())
	b.WriteString("\n\n")
	b.WriteString(watchDimStyle.Render("s stop  r resume  q quit"))
	return b.String()
}

func (m watchModel) statusLabel() string {
	switch m.status {
	case layout.StatusConverged:
		return watchDoneStyle.Render("converged")
	case layout.StatusStopped:
		return watchStoppedStyle.Render("stopped")
	default:
		return watchRunningStyle.Render("running")
	}
}

func (m watchModel) positionsTable() string {
	pos := m.layout.Positions()
	rows := len(pos)
	if rows > maxWatchRows {
		rows = maxWatchRows
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Node", "X", "Y").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})
	for i := 0; i < rows; i++ {
		t.Row(nodeName(i, m.src), fmt.Sprintf("%.1f", pos[i].X), fmt.Sprintf("%.1f", pos[i].Y))
	}

	out := t.Render()
	if len(pos) > rows {
		out += "\n" + watchDimStyle.Render(fmt.Sprintf("  ... %d more", len(pos)-rows))
	}
	return out
}
