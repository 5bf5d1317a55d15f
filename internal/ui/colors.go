package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title  lipgloss.Style
	accent lipgloss.Style
	err    lipgloss.Style
	muted  lipgloss.Style
}

// NewPalette builds a [Palette] from hex colors for titles, highlighted values, errors and secondary text.
func NewPalette(title, accent, err, muted string) *Palette {
	return &Palette{
		title:  NewBold(title).MarginBottom(1),
		accent: NewBold(accent),
		err:    NewBold(err),
		muted:  NewEm(muted),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
