package main

import (
	"fmt"
	"hash/fnv"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/lawnchairsociety/wavefield/internal/grid"
	"github.com/lawnchairsociety/wavefield/internal/wfc"
)

// canvas is the part of tcell.Screen the viewer draws on
type canvas interface {
	Clear()
	Size() (int, int)
	SetContent(x, y int, mainc rune, combc []rune, style tcell.Style)
	Show()
}

var palette = []tcell.Color{
	tcell.ColorGreen,
	tcell.ColorBlue,
	tcell.ColorYellow,
	tcell.ColorTeal,
	tcell.ColorOlive,
	tcell.ColorPurple,
	tcell.ColorMaroon,
	tcell.ColorNavy,
	tcell.ColorSilver,
	tcell.ColorLime,
	tcell.ColorAqua,
	tcell.ColorFuchsia,
}

// quarter turn glyphs; rotation 0 shows the texture's initial instead
var turnGlyphs = [4]rune{0, '▶', '▼', '◀'}

var (
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
	failedStyle = tcell.StyleDefault.Foreground(tcell.ColorRed)
	gapStyle    = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
)

// viewer pans a window over the field, generating sectors as they come
// into view
type viewer struct {
	screen    canvas
	generator *wfc.Generator
	seed      int64

	// camera is the global cell at the top-left of the screen
	camX, camY int

	failed *grid.InfiniteGrid[error]
}

func newViewer(screen canvas, generator *wfc.Generator, seed int64) *viewer {
	return &viewer{
		screen:    screen,
		generator: generator,
		seed:      seed,
		failed:    grid.New[error](),
	}
}

// sectorOf splits a global cell coordinate into sector and local parts
func sectorOf(global, size int) (int32, int) {
	s := global / size
	local := global % size
	if local < 0 {
		s--
		local += size
	}
	return int32(s), local
}

// tileLook picks a glyph and style for a texture and rotation
func tileLook(texture string, rotation float64) (rune, tcell.Style) {
	h := fnv.New32a()
	h.Write([]byte(texture))
	style := tcell.StyleDefault.Foreground(palette[h.Sum32()%uint32(len(palette))])

	quarter := int(math.Round(rotation/(math.Pi/2))) % 4
	if quarter < 0 {
		quarter += 4
	}
	if quarter != 0 {
		return turnGlyphs[quarter], style
	}
	for _, r := range texture {
		return r, style
	}
	return '?', style
}

// ensure generates a sector unless it exists or already failed
func (v *viewer) ensure(sx, sy int32) error {
	if err, ok := v.failed.Get(sx, sy); ok {
		return err
	}
	if _, err := v.generator.Generate(sx, sy); err != nil {
		v.failed.Set(sx, sy, err)
		return err
	}
	return nil
}

func (v *viewer) draw() {
	v.screen.Clear()
	width, height := v.screen.Size()
	if width <= 0 || height <= 1 {
		v.screen.Show()
		return
	}
	rows := height - 1
	cfg := v.generator.Field().Config()

	minSX, _ := sectorOf(v.camX, cfg.SectorWidth)
	maxSX, _ := sectorOf(v.camX+width-1, cfg.SectorWidth)
	minSY, _ := sectorOf(v.camY, cfg.SectorHeight)
	maxSY, _ := sectorOf(v.camY+rows-1, cfg.SectorHeight)

	for sy := minSY; sy <= maxSY; sy++ {
		for sx := minSX; sx <= maxSX; sx++ {
			originX := int(sx)*cfg.SectorWidth - v.camX
			originY := int(sy)*cfg.SectorHeight - v.camY

			if err := v.ensure(sx, sy); err != nil {
				v.fillSector(originX, originY, cfg, width, rows)
				continue
			}
			v.generator.Field().EachRenderRecord(sx, sy, func(rec wfc.RenderRecord) {
				x, y := originX+rec.CellX, originY+rec.CellY
				if x < 0 || x >= width || y < 0 || y >= rows {
					return
				}
				glyph, style := tileLook(rec.Texture, rec.Rotation)
				v.screen.SetContent(x, y, glyph, nil, style)
			})
		}
	}

	v.drawStatus(width, height-1)
	v.screen.Show()
}

// fillSector marks a sector that could not be generated
func (v *viewer) fillSector(originX, originY int, cfg wfc.FieldConfig, width, rows int) {
	for ly := 0; ly < cfg.SectorHeight; ly++ {
		for lx := 0; lx < cfg.SectorWidth; lx++ {
			x, y := originX+lx, originY+ly
			if x < 0 || x >= width || y < 0 || y >= rows {
				continue
			}
			if (lx+ly)%2 == 0 {
				v.screen.SetContent(x, y, 'x', nil, failedStyle)
			} else {
				v.screen.SetContent(x, y, '.', nil, gapStyle)
			}
		}
	}
}

func (v *viewer) drawStatus(width, y int) {
	cfg := v.generator.Field().Config()
	sx, _ := sectorOf(v.camX, cfg.SectorWidth)
	sy, _ := sectorOf(v.camY, cfg.SectorHeight)

	status := fmt.Sprintf(" cell (%d, %d)  sector (%d, %d)  sectors %d  failed %d  seed %d  [hjkl/arrows pan, HJKL by sector, q quit]",
		v.camX, v.camY, sx, sy, len(v.generator.Field().Sectors()), v.failed.Len(), v.seed)

	col := 0
	for _, r := range status {
		if col >= width {
			break
		}
		v.screen.SetContent(col, y, r, nil, statusStyle)
		col++
	}
	for ; col < width; col++ {
		v.screen.SetContent(col, y, ' ', nil, statusStyle)
	}
}

// handleKey applies a key press and reports whether the viewer should keep running
func (v *viewer) handleKey(key tcell.Key, r rune) bool {
	cfg := v.generator.Field().Config()

	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		v.camX--
	case tcell.KeyRight:
		v.camX++
	case tcell.KeyUp:
		v.camY--
	case tcell.KeyDown:
		v.camY++
	case tcell.KeyRune:
		switch r {
		case 'q':
			return false
		case 'h':
			v.camX--
		case 'l':
			v.camX++
		case 'k':
			v.camY--
		case 'j':
			v.camY++
		case 'H':
			v.camX -= cfg.SectorWidth
		case 'L':
			v.camX += cfg.SectorWidth
		case 'K':
			v.camY -= cfg.SectorHeight
		case 'J':
			v.camY += cfg.SectorHeight
		case '0':
			v.camX, v.camY = 0, 0
		}
	}
	return true
}

func (v *viewer) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.handleKey(ev.Key(), ev.Rune())
	case *tcell.EventResize:
		if s, ok := v.screen.(tcell.Screen); ok {
			s.Sync()
		}
	case nil:
		return false
	}
	return true
}

// run draws and handles events until the user quits
func (v *viewer) run(screen tcell.Screen) {
	for {
		v.draw()
		if !v.handleEvent(screen.PollEvent()) {
			return
		}
	}
}
