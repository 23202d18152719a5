package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

var styleVariants = []string{"midnight", "daylight", "receipt"}

type Theme struct {
	Name         string
	Header       lipgloss.Style
	Status       lipgloss.Style
	PanelBorder  lipgloss.Style
	PanelBody    lipgloss.Style
	Selected     lipgloss.Style
	Overlay      lipgloss.Style
	OverlayTitle lipgloss.Style
	Accent       lipgloss.Style
	Price        lipgloss.Style
	Warn         lipgloss.Style
	Muted        lipgloss.Style
	Card         lipgloss.Style
	Dot          lipgloss.Style
	DotActive    lipgloss.Style

	MarkdownStyle string
	Meter         [2]color.Color
}

func DefaultTheme() Theme {
	return ThemeForVariant("midnight")
}

func ThemeForVariant(variant string) Theme {
	switch variant {
	case "daylight":
		return daylightTheme()
	case "receipt":
		return receiptTheme()
	default:
		return midnightTheme()
	}
}

// nextStyleVariant cycles through the built-in themes.
func nextStyleVariant(current string) string {
	for i, v := range styleVariants {
		if v == current {
			return styleVariants[(i+1)%len(styleVariants)]
		}
	}
	return styleVariants[0]
}

func midnightTheme() Theme {
	gold := lipgloss.Color("#FFC857")
	coral := lipgloss.Color("#FF6F91")
	ink := lipgloss.Color("#0E1420")
	slate := lipgloss.Color("#1B2740")
	powder := lipgloss.Color("#EAF2FF")
	cyan := lipgloss.Color("#5EEBFF")
	border := lipgloss.Color("#4B5F8A")

	return Theme{
		Name:        "midnight",
		Header:      lipgloss.NewStyle().Background(ink).Foreground(powder).Bold(true).Padding(0, 1),
		Status:      lipgloss.NewStyle().Background(slate).Foreground(powder).Padding(0, 1),
		PanelBorder: lipgloss.NewStyle().Foreground(border),
		PanelBody:   lipgloss.NewStyle().Foreground(powder),
		Selected:    lipgloss.NewStyle().Foreground(cyan).Bold(true),
		Overlay: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(coral).
			Background(ink).
			Foreground(powder).
			Padding(1, 2),
		OverlayTitle:  lipgloss.NewStyle().Foreground(coral).Bold(true),
		Accent:        lipgloss.NewStyle().Foreground(cyan).Bold(true),
		Price:         lipgloss.NewStyle().Foreground(gold),
		Warn:          lipgloss.NewStyle().Foreground(coral).Bold(true),
		Muted:         lipgloss.NewStyle().Foreground(lipgloss.Color("#9CAAC6")),
		Card:          lipgloss.NewStyle().Foreground(powder),
		Dot:           lipgloss.NewStyle().Foreground(border),
		DotActive:     lipgloss.NewStyle().Foreground(gold).Bold(true),
		MarkdownStyle: "dark",
		Meter:         [2]color.Color{cyan, gold},
	}
}

func daylightTheme() Theme {
	honey := lipgloss.Color("#B86E00")
	rose := lipgloss.Color("#C2334D")
	paper := lipgloss.Color("#FBF8F1")
	fog := lipgloss.Color("#E6E1D6")
	charcoal := lipgloss.Color("#2B2B2B")
	teal := lipgloss.Color("#0F7C80")

	return Theme{
		Name:        "daylight",
		Header:      lipgloss.NewStyle().Background(teal).Foreground(paper).Bold(true).Padding(0, 1),
		Status:      lipgloss.NewStyle().Background(fog).Foreground(charcoal).Padding(0, 1),
		PanelBorder: lipgloss.NewStyle().Foreground(lipgloss.Color("#A39E93")),
		PanelBody:   lipgloss.NewStyle().Foreground(charcoal),
		Selected:    lipgloss.NewStyle().Foreground(teal).Bold(true),
		Overlay: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(rose).
			Background(paper).
			Foreground(charcoal).
			Padding(1, 2),
		OverlayTitle:  lipgloss.NewStyle().Foreground(rose).Bold(true),
		Accent:        lipgloss.NewStyle().Foreground(teal).Bold(true),
		Price:         lipgloss.NewStyle().Foreground(honey),
		Warn:          lipgloss.NewStyle().Foreground(rose).Bold(true),
		Muted:         lipgloss.NewStyle().Foreground(lipgloss.Color("#7A756B")),
		Card:          lipgloss.NewStyle().Foreground(charcoal),
		Dot:           lipgloss.NewStyle().Foreground(lipgloss.Color("#C9C3B6")),
		DotActive:     lipgloss.NewStyle().Foreground(teal).Bold(true),
		MarkdownStyle: "light",
		Meter:         [2]color.Color{teal, honey},
	}
}

func receiptTheme() Theme {
	lime := lipgloss.Color("#9CF5A2")
	amber := lipgloss.Color("#E5D47A")
	red := lipgloss.Color("#FF6B6B")
	deep := lipgloss.Color("#07150A")
	forest := lipgloss.Color("#12301A")
	glow := lipgloss.Color("#C5F7C4")

	return Theme{
		Name:        "receipt",
		Header:      lipgloss.NewStyle().Background(deep).Foreground(glow).Padding(0, 1),
		Status:      lipgloss.NewStyle().Background(forest).Foreground(glow).Padding(0, 1),
		PanelBorder: lipgloss.NewStyle().Foreground(lipgloss.Color("#1F5C2F")),
		PanelBody:   lipgloss.NewStyle().Foreground(glow),
		Selected:    lipgloss.NewStyle().Foreground(lime).Bold(true),
		Overlay: lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(amber).
			Background(deep).
			Foreground(glow).
			Padding(1, 2),
		OverlayTitle:  lipgloss.NewStyle().Foreground(amber).Bold(true),
		Accent:        lipgloss.NewStyle().Foreground(lime).Bold(true),
		Price:         lipgloss.NewStyle().Foreground(amber),
		Warn:          lipgloss.NewStyle().Foreground(red).Bold(true),
		Muted:         lipgloss.NewStyle().Foreground(lipgloss.Color("#73A17A")),
		Card:          lipgloss.NewStyle().Foreground(glow),
		Dot:           lipgloss.NewStyle().Foreground(forest),
		DotActive:     lipgloss.NewStyle().Foreground(lime).Bold(true),
		MarkdownStyle: "notty",
		Meter:         [2]color.Color{lime, amber},
	}
}
