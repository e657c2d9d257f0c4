//go:build linux

package overlay

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"
)

// paint redraws the surface from current shared state. Fonts are opened and
// closed on every invocation so a scale change never serves a stale size.
func (rl *runLoop) paint() {
	xproto.ChangeWindowAttributes(rl.conn, rl.win, xproto.CwBackPixel, []uint32{rl.bgRGB})
	xproto.ClearArea(rl.conn, false, rl.win, 0, 0, 0, 0)

	font, ok := rl.openFont()
	if !ok {
		return
	}
	defer xproto.CloseFont(rl.conn, font)
	xproto.ChangeGC(rl.conn, rl.gc, xproto.GcFont, []uint32{uint32(font)})

	if rl.phase == stateConfigMode {
		rl.paintLines(configModeLines(), 0xe6e6e6)
		return
	}

	payload := rl.mgr.state.getPayload()
	// Core fonts draw raw bytes, so the placeholder body stays ASCII.
	if payload.Title == "" && payload.Body == "" {
		payload.Title = "helltime"
		payload.Body = "-"
	}
	lines := []string{payload.Title}
	lines = append(lines, splitBody(payload.Body, bodyCharWidth(rl.scale), 3)...)
	rl.paintLines(lines, categoryColor(payload.Category))
}

// openFont opens the bucketed core font for the current scale, falling back
// to "fixed" when the preferred size is unavailable.
func (rl *runLoop) openFont() (xproto.Font, bool) {
	font, err := xproto.NewFontId(rl.conn)
	if err != nil {
		return 0, false
	}
	for _, name := range []string{fontForScale(rl.scale), "fixed"} {
		if xproto.OpenFontChecked(rl.conn, font, uint16(len(name)), name).Check() == nil {
			return font, true
		}
	}
	return 0, false
}

// paintLines draws each line horizontally centered, with a four-direction
// dark outline behind the main color for contrast.
func (rl *runLoop) paintLines(lines []string, color uint32) {
	w, _ := SurfaceSize(rl.scale)
	titleY, _, step := lineLayout(rl.scale)
	cell := fontCellWidth(rl.scale)

	y := titleY
	for i, line := range lines {
		if line == "" {
			y += step
			continue
		}
		if len(line) > 254 {
			line = line[:254]
		}
		x := (w - len(line)*cell) / 2
		if x < textInset(rl.scale) {
			x = textInset(rl.scale)
		}
		if i == 1 {
			y += step / 2
		}
		for _, off := range outlineOffsets {
			rl.drawText(line, x+off[0], y+off[1], outlineColor)
		}
		rl.drawText(line, x, y, color)
		y += step
	}
}

// drawText issues a foreground-only PolyText8 so previously drawn outline
// pixels survive the main pass.
func (rl *runLoop) drawText(s string, x, y int, color uint32) {
	xproto.ChangeGC(rl.conn, rl.gc, xproto.GcForeground, []uint32{color})
	item := make([]byte, 0, len(s)+2)
	item = append(item, byte(len(s)), 0)
	item = append(item, s...)
	xproto.PolyText8(rl.conn, xproto.Drawable(rl.win), rl.gc, int16(x), int16(y), item)
}

// applyOpacity sets _NET_WM_WINDOW_OPACITY so compositing window managers
// blend the surface.
func (rl *runLoop) applyOpacity(alpha float64) {
	a := ClampAlpha(alpha)
	val := uint(a * float64(0xffffffff))
	if err := xprop.ChangeProp32(rl.xu, rl.win, "_NET_WM_WINDOW_OPACITY", "CARDINAL", val); err != nil {
		rl.log.Debug("set opacity", "error", err)
	}
}
