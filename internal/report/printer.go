package report

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/davecgh/go-spew/spew"
	"golang.org/x/term"

	"volgen/internal/diagnostic"
	"volgen/internal/layout"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB"))

	narrowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD75F"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD75F"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

var columns = []string{"OFFSET", "SIZE", "ALIGN", "TRANSPORT", "PATH", "TYPE", "CHAIN"}

// Printer writes reports to w.
type Printer struct {
	w      io.Writer
	styled bool
}

// NewPrinter returns a Printer that styles its output only when w is a
// terminal.
func NewPrinter(w io.Writer) *Printer {
	styled := false
	if f, ok := w.(*os.File); ok {
		styled = term.IsTerminal(int(f.Fd()))
	}

	return &Printer{w: w, styled: styled}
}

// NewPlainPrinter returns a Printer that never styles its output.
func NewPlainPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Styled reports whether the printer emits terminal styling.
func (p *Printer) Styled() bool {
	return p.styled
}

func (p *Printer) paint(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}

	return s.Render(text)
}

// Set prints the layout table of every struct in the set, separated by blank
// lines.
func (p *Printer) Set(set *layout.Set) error {
	for i, l := range set.Layouts {
		if i > 0 {
			if _, err := fmt.Fprintln(p.w); err != nil {
				return err
			}
		}

		if err := p.Layout(l); err != nil {
			return err
		}
	}

	return nil
}

// Layout prints one struct: a title line with its directive, size and
// alignment, then one row per flattened cell. Cells moved in units narrower
// than their natural alignment are marked.
func (p *Printer) Layout(l *layout.Layout) error {
	title := fmt.Sprintf("%s %s size=%d align=%d", l.Struct.Name, l.Struct.Directive, l.Size, l.Align)

	leaves := layout.Flatten(l)
	narrow := make([]bool, len(leaves))
	rows := make([][]string, 0, len(leaves))

	for i, leaf := range leaves {
		transport := strconv.FormatInt(leaf.Transport, 10)
		if leaf.Transport < leaf.Type.Align {
			transport += "*"
			narrow[i] = true
		}

		rows = append(rows, []string{
			strconv.FormatInt(leaf.Offset, 10),
			strconv.FormatInt(leaf.Type.Size, 10),
			strconv.FormatInt(leaf.Type.Align, 10),
			transport,
			leaf.Path,
			leaf.Type.Name,
			leaf.Chain.String(),
		})
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		Headers(columns...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle()
			if col < len(columns)-1 {
				s = s.PaddingRight(2)
			}

			if !p.styled {
				return s
			}

			switch {
			case row == table.HeaderRow:
				return s.Inherit(headerStyle)
			case narrow[row]:
				return s.Inherit(narrowStyle)
			default:
				return s
			}
		})

	_, err := fmt.Fprintf(p.w, "%s\n%s\n", p.paint(titleStyle, title), t.Render())

	return err
}

// Diagnostics prints every diagnostic, errors first, one per line.
func (p *Printer) Diagnostics(diags diagnostic.Diagnostics) error {
	for _, d := range diags.All() {
		style := infoStyle

		switch d.Severity {
		case diagnostic.DiagnosticError:
			style = errorStyle
		case diagnostic.DiagnosticWarning:
			style = warningStyle
		}

		line := p.paint(style, d.Severity.String()+": "+d.String())
		if _, err := fmt.Fprintln(p.w, line); err != nil {
			return err
		}
	}

	return nil
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump writes a go-spew dump of v.
func (p *Printer) Dump(v any) {
	dumpConfig.Fdump(p.w, v)
}
