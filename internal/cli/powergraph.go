package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cola/pkg/core/powergraph"
	"github.com/matzehuels/cola/pkg/graph"
	"github.com/matzehuels/cola/pkg/pipeline"
)

// powerGraphCommand creates the powergraph command, which shows how the
// links of a graph compress into power edges between groups.
func (c *CLI) powerGraphCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "powergraph [graph.json]",
		Short: "Group nodes with shared neighbours and show the power edges",
		Long: `Group nodes with shared neighbours and show the power edges.

Nodes that link to the same neighbours are merged into groups, and links
between whole groups become single power edges. With --output the graph is
written back with the groups installed, ready for 'layout'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPowerGraph(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the grouped graph to this file")

	return cmd
}

func (c *CLI) runPowerGraph(ctx context.Context, input, output string) error {
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	l, _, err := pipeline.Build(g, graph.Options{}, c.Logger, nil)
	if err != nil {
		return err
	}
	prog := newProgress(c.Logger)
	res, err := l.PowerGraphGroups()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Found %d groups", len(res.Groups)))

	fmt.Println(powerGraphView(res, g))

	if output != "" {
		grouped := graph.FromLayout(l.Graph())
		if err := graph.WriteGraphFile(grouped, output); err != nil {
			return fmt.Errorf("write output %s: %w", output, err)
		}
		printFile(output)
	}
	return nil
}

// powerGraphView renders the groups and power edges as two tables plus a
// one-line summary.
func powerGraphView(res powergraph.Result, g graph.Graph) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styled := func(row, col int) lipgloss.Style {
		switch {
		case row == -1:
			return headerStyle
		case col == 0:
			return StyleNumber
		default:
			return lipgloss.NewStyle()
		}
	}

	groups := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Group", "Nodes", "Subgroups").
		StyleFunc(styled)
	for i, pg := range res.Groups {
		groups.Row("g"+strconv.Itoa(i), nodeNames(pg.Leaves, g), groupNames(pg.Groups))
	}

	edges := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Source", "Target", "Type").
		StyleFunc(styled)
	for i, e := range res.PowerEdges {
		edges.Row(strconv.Itoa(i), endpointName(e.Source, g), endpointName(e.Target, g), strconv.Itoa(e.Type))
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Groups"))
	b.WriteString("\n")
	b.WriteString(groups.Render())
	b.WriteString("\n\n")
	b.WriteString(StyleTitle.Render("Power edges"))
	b.WriteString("\n")
	b.WriteString(edges.Render())
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d links compressed to %d power edges", len(g.Links), len(res.PowerEdges))))
	return b.String()
}

func nodeName(i int, g graph.Graph) string {
	if i >= 0 && i < len(g.Nodes) {
		if label := g.Nodes[i].DisplayLabel(); label != "" {
			return label
		}
	}
	return strconv.Itoa(i)
}

func nodeNames(leaves []int, g graph.Graph) string {
	if len(leaves) == 0 {
		return "-"
	}
	names := make([]string, len(leaves))
	for i, v := range leaves {
		names[i] = nodeName(v, g)
	}
	return strings.Join(names, ", ")
}

func groupNames(groups []int) string {
	if len(groups) == 0 {
		return "-"
	}
	names := make([]string, len(groups))
	for i, v := range groups {
		names[i] = "g" + strconv.Itoa(v)
	}
	return strings.Join(names, ", ")
}

func endpointName(e powergraph.Endpoint, g graph.Graph) string {
	if e.Group {
		return e.String()
	}
	return nodeName(e.Index, g)
}
