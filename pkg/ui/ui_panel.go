package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	titleHeight   = 30.0
	sectionHeight = 25.0
	labelOffset   = 15.0
	scrollStep    = 20.0
)

// Widget is anything the panel can stack.
type Widget interface {
	// Update handles one frame of input and reports whether the widget's
	// value changed.
	Update(in Input) bool
	Draw(screen *ebiten.Image)
	Height() float64
	Place(x, y float64)
}

// row is either a section header (widget nil) or a labelled widget.
type row struct {
	title  string
	widget Widget
	y      float64 // top of the row once laid out
}

// UIPanel stacks widgets in titled sections inside a scrollable box.
type UIPanel struct {
	X, Y          float64
	Width, Height float64
	Title         string
	ScrollOffset  float64

	// Styling
	BGColor     color.RGBA
	BorderColor color.RGBA

	rows []row
}

func NewUIPanel(x, y, width, height float64) *UIPanel {
	return &UIPanel{
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		Title:       "Configuration",
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

func (p *UIPanel) AddSection(title string) {
	p.rows = append(p.rows, row{title: title})
	p.layout()
}

func (p *UIPanel) AddSlider(label string, min, max, value float64) *Slider {
	s := NewSlider(0, 0, p.Width-20, label, min, max, value)
	p.add(label, s)
	return s
}

func (p *UIPanel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(0, 0, label, value)
	p.add(label, c)
	return c
}

func (p *UIPanel) AddButton(label string, onClick func()) *Button {
	b := NewButton(0, 0, p.Width-20, 20, label, onClick)
	p.add("", b)
	return b
}

func (p *UIPanel) add(label string, w Widget) {
	p.rows = append(p.rows, row{title: label, widget: w})
	p.layout()
}

// SetHeight fits the panel to a resized window.
func (p *UIPanel) SetHeight(h float64) {
	p.Height = h
	p.clampScroll()
	p.layout()
}

// Contains reports whether (x, y) is on the panel, so that clicks there
// are not handed to the simulation.
func (p *UIPanel) Contains(x, y float64) bool {
	return x >= p.X && x <= p.X+p.Width && y >= p.Y && y <= p.Y+p.Height
}

// ContentHeight is the height of all rows plus the title.
func (p *UIPanel) ContentHeight() float64 {
	h := titleHeight
	for _, r := range p.rows {
		h += p.rowHeight(r)
	}
	return h
}

// Update scrolls on wheel input over the panel and forwards the input to
// visible widgets. It reports whether any widget value changed.
func (p *UIPanel) Update(in Input) bool {
	if in.WheelY != 0 && p.Contains(in.CursorX, in.CursorY) {
		p.ScrollOffset -= in.WheelY * scrollStep
		p.clampScroll()
		p.layout()
	}

	changed := false
	for _, r := range p.rows {
		if r.widget == nil || !p.visible(r) {
			continue
		}
		if r.widget.Update(in) {
			changed = true
		}
	}
	return changed
}

func (p *UIPanel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	sectionBG := color.RGBA{R: 60, G: 60, B: 70, A: 255}
	for _, r := range p.rows {
		if !p.visible(r) {
			continue
		}
		switch w := r.widget.(type) {
		case nil:
			vector.FillRect(screen,
				float32(p.X+5), float32(r.y),
				float32(p.Width-10), 20,
				sectionBG, true)
			ebitenutil.DebugPrintAt(screen, r.title, int(p.X+10), int(r.y+5))
		case *Slider:
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s: %.3g", r.title, w.Value), int(p.X+10), int(r.y))
			w.Draw(screen)
		default:
			if r.title != "" {
				ebitenutil.DebugPrintAt(screen, r.title, int(p.X+10), int(r.y))
			}
			w.Draw(screen)
		}
	}
}

// layout assigns every row its on-screen position for the current scroll.
func (p *UIPanel) layout() {
	y := p.Y + titleHeight - p.ScrollOffset
	for i := range p.rows {
		r := &p.rows[i]
		r.y = y
		if r.widget != nil {
			offset := labelOffset
			if r.title == "" {
				offset = 0
			}
			r.widget.Place(p.X+10, y+offset)
		}
		y += p.rowHeight(*r)
	}
}

func (p *UIPanel) rowHeight(r row) float64 {
	if r.widget == nil {
		return sectionHeight
	}
	return r.widget.Height()
}

// visible is true when the row lies fully between the title and the
// bottom edge.
func (p *UIPanel) visible(r row) bool {
	return r.y >= p.Y+titleHeight-1 && r.y+p.rowHeight(r) <= p.Y+p.Height
}

func (p *UIPanel) clampScroll() {
	maxScroll := max(p.ContentHeight()-p.Height+10, 0)
	p.ScrollOffset = min(max(p.ScrollOffset, 0), maxScroll)
}
