package boardimage

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/park285/oware-session/internal/domain"
	"github.com/park285/oware-session/internal/view"
)

const (
	Width  = 760
	Height = 320

	boardX     = 20
	boardY     = 60
	boardW     = 720
	boardH     = 200
	storeW     = 60
	pitsLeft   = 100
	colWidth   = 93
	pitRadius  = 38
	topRowY    = boardY + 55
	bottomRowY = boardY + 145

	backgroundColor = "#1c1f2e"
	boardColor      = "#7a4a26"
	pitActive       = "#c8955a"
	pitInactive     = "#8c8580"
	storeColor      = "#5e3519"
)

var (
	textPrimary = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	textSeeds   = color.NRGBA{R: 33, G: 20, B: 10, A: 255}
	textStatus  = color.NRGBA{R: 255, G: 214, B: 120, A: 255}
)

// PitCenter returns the pixel centre of a board slot. Bottom houses run left
// to right, top houses right to left, so sowing reads counter-clockwise.
func PitCenter(slot int) image.Point {
	col, y := slot, bottomRowY
	if slot >= domain.HousesPerSide {
		col, y = domain.SlotCount-1-slot, topRowY
	}
	return image.Point{X: pitsLeft + colWidth/2 + col*colWidth, Y: y}
}

// StoreRects returns the top (left) and bottom (right) score stores.
func StoreRects() (top, bottom image.Rectangle) {
	top = image.Rect(boardX+10, boardY+20, boardX+10+storeW, boardY+boardH-20)
	bottom = image.Rect(boardX+boardW-10-storeW, boardY+20, boardX+boardW-10, boardY+boardH-20)
	return top, bottom
}

var (
	baseCache   = map[bool]*image.RGBA{}
	baseCacheMu sync.RWMutex
)

// Render draws the frame as a PNG.
func Render(in view.Instructions) ([]byte, error) {
	img, err := RenderImage(in)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderImage draws the frame without encoding it.
func RenderImage(in view.Instructions) (*image.RGBA, error) {
	active := !in.DisableAll
	base, err := boardBase(active)
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(base.Bounds())
	draw.Draw(img, img.Bounds(), base, image.Point{}, draw.Src)

	drawer := &font.Drawer{Dst: img, Face: basicfont.Face7x13}

	drawCenteredText(drawer, image.Rect(0, 10, Width, boardY-10), in.Banner, textPrimary)
	for i, s := range in.Slots {
		c := PitCenter(i)
		drawCenteredText(drawer, image.Rect(c.X-pitRadius, c.Y-pitRadius, c.X+pitRadius, c.Y+pitRadius), s.Text, textSeeds)
	}
	top, bottom := StoreRects()
	drawCenteredText(drawer, top, in.TopScoreText, textPrimary)
	drawCenteredText(drawer, bottom, in.BottomScoreText, textPrimary)
	drawCenteredText(drawer, image.Rect(0, boardY+boardH+10, Width, Height-10), in.StatusText, textStatus)
	return img, nil
}

func boardBase(active bool) (*image.RGBA, error) {
	baseCacheMu.RLock()
	if img, ok := baseCache[active]; ok {
		baseCacheMu.RUnlock()
		return img, nil
	}
	baseCacheMu.RUnlock()

	icon, err := oksvg.ReadIconStream(strings.NewReader(boardSVG(active)))
	if err != nil {
		return nil, fmt.Errorf("parse board svg: %w", err)
	}
	icon.SetTarget(0, 0, Width, Height)

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	scanner := rasterx.NewScannerGV(Width, Height, img, img.Bounds())
	raster := rasterx.NewDasher(Width, Height, scanner)
	icon.Draw(raster, 1.0)

	baseCacheMu.Lock()
	baseCache[active] = img
	baseCacheMu.Unlock()
	return img, nil
}

func boardSVG(active bool) string {
	pit := pitActive
	if !active {
		pit = pitInactive
	}
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, Width, Height, Width, Height)
	fmt.Fprintf(&b, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`, Width, Height, backgroundColor)
	fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" rx="24" ry="24" fill="%s"/>`, boardX, boardY, boardW, boardH, boardColor)
	top, bottom := StoreRects()
	for _, r := range []image.Rectangle{top, bottom} {
		fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" rx="26" ry="26" fill="%s"/>`, r.Min.X, r.Min.Y, r.Dx(), r.Dy(), storeColor)
	}
	for slot := 0; slot < domain.SlotCount; slot++ {
		c := PitCenter(slot)
		fmt.Fprintf(&b, `<circle cx="%d" cy="%d" r="%d" fill="%s"/>`, c.X, c.Y, pitRadius, pit)
	}
	b.WriteString(`</svg>`)
	return b.String()
}

func drawCenteredText(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	metrics := drawer.Face.Metrics()
	width := drawer.MeasureString(text).Round()
	x := rect.Min.X + (rect.Dx()-width)/2
	if x < rect.Min.X {
		x = rect.Min.X
	}
	baseline := rect.Min.Y + (rect.Dy()+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}
