package overlay

// Pure rendering decisions shared by the native paint path. Everything here
// is deterministic so it can be tested without an X connection.

// categoryColor returns the 24-bit 0xRRGGBB text color for a category.
func categoryColor(c Category) uint32 {
	switch c {
	case CategoryHelltide:
		return 0xff5a3c
	case CategoryLegion:
		return 0x9b6bff
	case CategoryWorldBoss:
		return 0xffc53c
	default:
		return 0xe6e6e6
	}
}

// outlineColor is the dark halo painted behind toast text for contrast
// against arbitrary desktop content.
const outlineColor uint32 = 0x141414

// outlineOffsets are the four offsets the text is pre-painted at in the
// outline color before the main pass.
var outlineOffsets = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// fontForScale picks a core X font name for a scale factor. Core fonts do
// not scale, so the sizes are bucketed.
func fontForScale(scale float64) string {
	s := ClampScale(scale)
	switch {
	case s < 0.8:
		return "6x13"
	case s < 1.2:
		return "8x13"
	case s < 1.6:
		return "9x15"
	default:
		return "10x20"
	}
}

// lineLayout places the title and body lines within the surface. Returns
// baseline y coordinates in surface-local pixels.
func lineLayout(scale float64) (titleY, bodyY, lineStep int) {
	_, h := SurfaceSize(scale)
	titleY = h / 3
	lineStep = int(16 * ClampScale(scale))
	bodyY = titleY + lineStep + lineStep/2
	return titleY, bodyY, lineStep
}

// textInset is the left padding for toast text lines, scaled.
func textInset(scale float64) int {
	return int(12 * ClampScale(scale))
}

// configModeLines is the instructional text shown while the surface is
// interactive.
func configModeLines() []string {
	return []string{
		"Drag to reposition",
		"Exit config mode to save",
	}
}

// splitBody breaks a body string into at most max lines of at most width
// characters, breaking on spaces where possible. Core fonts are monospaced
// so a character budget is a faithful width budget.
func splitBody(body string, width, max int) []string {
	if body == "" {
		return nil
	}
	var lines []string
	rest := body
	for len(rest) > 0 && len(lines) < max {
		if len(rest) <= width {
			lines = append(lines, rest)
			break
		}
		cut := width
		for i := width; i > 0; i-- {
			if rest[i-1] == ' ' {
				cut = i - 1
				break
			}
		}
		if cut == 0 {
			cut = width
		}
		lines = append(lines, rest[:cut])
		rest = rest[cut:]
		for len(rest) > 0 && rest[0] == ' ' {
			rest = rest[1:]
		}
	}
	return lines
}

// fontCellWidth is the advance width of the bucketed core font.
func fontCellWidth(scale float64) int {
	switch fontForScale(scale) {
	case "6x13":
		return 6
	case "8x13":
		return 8
	case "9x15":
		return 9
	default:
		return 10
	}
}

// bodyCharWidth is the per-line character budget for the body text at a
// given scale, derived from the bucketed font cell width.
func bodyCharWidth(scale float64) int {
	w, _ := SurfaceSize(scale)
	budget := (w - 2*textInset(scale)) / fontCellWidth(scale)
	if budget < 8 {
		budget = 8
	}
	return budget
}
