package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"golang.org/x/term"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	classStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	plainStyle = lipgloss.NewStyle()
)

type renderer struct {
	color bool
}

func newRenderer(f *os.File) *renderer {
	return &renderer{color: term.IsTerminal(int(f.Fd()))}
}

func (r *renderer) style(s lipgloss.Style) lipgloss.Style {
	if r.color {
		return s
	}
	return plainStyle
}

func (r *renderer) classTable(rows []classRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-24s %-28s %5s %5s  %-16s %s\n", "TYPE", "LAYOUT", "SIZE", "ALIGN", "CLASS", "ACCESS")
	for _, row := range rows {
		fmt.Fprintf(&b, "%-24s %-28s %5d %5d  %s %s\n",
			r.style(typeStyle).Render(row.typ),
			row.layout,
			row.size,
			row.align,
			r.style(classStyle).Render(fmt.Sprintf("%-16s", row.class)),
			row.access)
	}
	return b.String()
}

func (r *renderer) dump(d *listDump) string {
	var b strings.Builder

	title := "va_list"
	if d.name != "" {
		title += " " + d.name
	}
	b.WriteString(r.style(titleStyle).Render(title))
	fmt.Fprintf(&b, " %s backend, %s\n\n", d.backend, humanize.IBytes(d.capacity))

	if len(d.slots) == 0 {
		b.WriteString("empty list (shared, no buffer)\n")
		return b.String()
	}

	fmt.Fprintf(&b, "base %#x, %d slots, %s\n\n", uint64(d.base), len(d.slots), humanize.IBytes(d.slotBytes))
	fmt.Fprintf(&b, "%3s  %-18s %-18s  %-24s %-16s %s\n", "#", "ADDRESS", "SLOT", "TYPE", "CLASS", "VALUE")
	for i, s := range d.slots {
		fmt.Fprintf(&b, "%3d  %#-18x %#018x  %s %s %s\n",
			i,
			uint64(s.addr),
			s.raw,
			r.style(typeStyle).Render(fmt.Sprintf("%-24s", s.typ)),
			r.style(classStyle).Render(fmt.Sprintf("%-16s", s.class)),
			r.style(valueStyle).Render(s.decoded))
	}

	if len(d.satellites) > 0 {
		b.WriteString("\nsatellites:\n")
		var total uint64
		for _, sat := range d.satellites {
			fmt.Fprintf(&b, "  %#x  %s\n", uint64(sat.Address()), humanize.IBytes(sat.Size()))
			total += sat.Size()
		}
		fmt.Fprintf(&b, "  %s in %s\n",
			humanize.IBytes(total),
			english.Plural(len(d.satellites), "satellite", ""))
	}
	return b.String()
}
