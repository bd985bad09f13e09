package app

import (
	"slices"

	"github.com/lineCode/ner/internal/model"
	"github.com/lineCode/ner/internal/theme"
)

// paletteFor returns the default palette with the config's color
// overrides applied.
func paletteFor(cfg *model.AppConfig) (*theme.Palette, error) {
	p := theme.DefaultPalette()

	names := make([]string, 0, len(cfg.Colors))
	for name := range cfg.Colors {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		c := cfg.Colors[name]
		if err := p.Override(name, c.Fg, c.Bg); err != nil {
			return nil, err
		}
	}
	return p, nil
}
