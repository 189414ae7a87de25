package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/chazu/masonry/pkg/build"
	"github.com/chazu/masonry/pkg/decompose"
	"github.com/chazu/masonry/pkg/scene"
)

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

var (
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleError   = lipgloss.NewStyle().Foreground(colorRed)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
)

// fallbackColumn is the index of the fallbacks column in the summary table.
const fallbackColumn = 5

// renderSummary draws one table row per exported record followed by a
// status line.
func renderSummary(res *build.Result) string {
	rows := make([][]string, 0, len(res.Records))
	for _, r := range res.Records {
		rows = append(rows, []string{
			r.Name,
			r.Material,
			fmt.Sprintf("%g, %g, %g", r.Position[0], r.Position[1], r.Position[2]),
			strconv.Itoa(len(r.Solids)),
			strconv.FormatFloat(pieceVolume(r.Solids), 'g', 6, 64),
			strconv.Itoa(r.Failures),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Box", "Material", "Position", "Solids", "Piece volume", "Fallbacks").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == fallbackColumn && row < len(res.Records) && res.Records[row].Failures > 0 {
				return styleWarning
			}
			if col >= 3 {
				return styleNumber
			}
			return lipgloss.NewStyle()
		})

	return t.Render() + "\n" + statusLine(res) + "\n"
}

// pieceVolume sums the material solids of a record. Fallback markers stand
// in for holes that were not cut and carry no material of their own.
func pieceVolume(solids []scene.Solid) float64 {
	pieces := make([]scene.Solid, 0, len(solids))
	for _, s := range solids {
		if s.Role != scene.RoleMarker {
			pieces = append(pieces, s)
		}
	}
	return decompose.Volume(pieces)
}

func statusLine(res *build.Result) string {
	if !res.OK() {
		return styleError.Render(fmt.Sprintf("%s %d errors", iconError, len(res.Errors)))
	}
	line := styleSuccess.Render(fmt.Sprintf("%s %d records", iconSuccess, len(res.Records)))
	if n := len(res.Meshes); n > 0 {
		line += styleDim.Render(fmt.Sprintf(", %d meshes", n))
	}
	if n := res.Fallbacks(); n > 0 {
		line += " " + styleWarning.Render(fmt.Sprintf("%s %d fallbacks", iconWarning, n))
	}
	if n := len(res.Warnings); n > 0 {
		line += " " + styleWarning.Render(fmt.Sprintf("%s %d warnings", iconWarning, n))
	}
	return line
}
