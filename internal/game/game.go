// Package game is the ebiten front end of the flock: window, input,
// tuning panel and rendering.
package game

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-flock-quadtree/pkg/config"
	"github.com/lao-tseu-is-alive/go-flock-quadtree/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-quadtree/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-quadtree/pkg/telemetry"
	"github.com/lao-tseu-is-alive/go-flock-quadtree/pkg/ui"
	"github.com/tochemey/goakt/v3/log"
)

const panelWidth = 260

var backgroundColor = color.RGBA{R: 10, G: 10, B: 30, A: 255}

// controls is the input of one frame.
type controls struct {
	mouse       ui.Input
	togglePause bool
	toggleRings bool
	quit        bool
}

func readControls() controls {
	return controls{
		mouse:       ui.ReadInput(),
		togglePause: inpututil.IsKeyJustPressed(ebiten.KeySpace),
		toggleRings: inpututil.IsKeyJustPressed(ebiten.KeyR),
		quit:        inpututil.IsKeyJustPressed(ebiten.KeyEscape),
	}
}

type Game struct {
	cfg    *config.Config
	flock  *flock.Flock
	logger log.Logger
	reload <-chan *config.Config
	csv    *telemetry.CSVWriter

	// window size reported by Layout, applied on the next Update
	width, height      int
	appliedW, appliedH int

	paused  bool
	ticks   int
	simTime float64

	// UI Controls
	panel       *ui.UIPanel
	sliders     paramSliders
	widgetRings *ui.Checkbox

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64 // Rolling average in ms

	white    *ebiten.Image
	vertices []ebiten.Vertex
	indices  []uint16
}

// New builds the flock described by cfg. Configs received on reload are
// applied between ticks; reload may be nil.
func New(cfg *config.Config, logger log.Logger, reload <-chan *config.Config) (*Game, error) {
	f, err := newFlock(cfg, logger)
	if err != nil {
		return nil, err
	}
	csv, err := telemetry.CreateCSV(cfg.Telemetry.Path)
	if err != nil {
		return nil, err
	}

	g := &Game{
		cfg:      cfg,
		flock:    f,
		logger:   logger,
		reload:   reload,
		csv:      csv,
		width:    int(cfg.World.Width),
		height:   int(cfg.World.Height),
		appliedW: int(cfg.World.Width),
		appliedH: int(cfg.World.Height),
	}
	g.buildPanel()
	return g, nil
}

func newFlock(cfg *config.Config, logger log.Logger) (*flock.Flock, error) {
	world := geometry.RectFromSize(cfg.World.Width, cfg.World.Height)
	boids := flock.InitialBoids(cfg.Flock.InitialCount, cfg.World.Width, cfg.World.Height, cfg.Boid)
	f, err := flock.New(world, boids,
		flock.WithLogger(logger),
		flock.WithParams(cfg.Boid),
		flock.WithCapacity(cfg.Index.Capacity),
	)
	if err != nil {
		return nil, fmt.Errorf("creating flock: %w", err)
	}
	return f, nil
}

func (g *Game) buildPanel() {
	g.panel = ui.NewUIPanel(10, 10, panelWidth, float64(g.height)-20)
	g.panel.Title = "Flock tuning"
	g.sliders = addParamSliders(g.panel, g.cfg.Boid)

	g.panel.AddSection("Visualization")
	g.widgetRings = g.panel.AddCheckbox("Show Radius Rings (R)", false)

	g.panel.AddSection("Population")
	g.panel.AddButton("Reset flock", g.reset)
}

// Close flushes the telemetry output.
func (g *Game) Close() error {
	return g.csv.Close()
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		g.updateAvg = g.updateAvg*0.95 + float64(elapsed.Microseconds())/1000.0*0.05
	}()
	return g.update(readControls(), 1/float64(ebiten.TPS()))
}

func (g *Game) update(c controls, dt float64) error {
	if c.quit {
		return ebiten.Termination
	}

	// 1. Window size
	g.applyResize()

	// 2. Panel and mouse
	if g.panel.Update(c.mouse) {
		g.tune(g.sliders.params(g.flock.Params()))
	}
	if c.mouse.JustPressed && !g.panel.Contains(c.mouse.CursorX, c.mouse.CursorY) {
		// rejected spawns are logged by the flock
		_, _ = g.flock.Spawn(geometry.Vector2D{X: c.mouse.CursorX, Y: c.mouse.CursorY})
	}

	// 3. Hot-reloaded configuration (non-blocking)
	g.drainReload()

	// 4. Keys
	if c.togglePause {
		g.paused = !g.paused
	}
	if c.toggleRings {
		g.widgetRings.Value = !g.widgetRings.Value
	}

	// 5. Simulation
	if !g.paused {
		g.flock.Tick(dt)
		g.ticks++
		g.simTime += dt
		g.sample()
	}
	return nil
}

func (g *Game) applyResize() {
	if g.width == g.appliedW && g.height == g.appliedH {
		return
	}
	if err := g.flock.Resize(float64(g.width), float64(g.height)); err != nil {
		// minimised windows report a zero size; keep the last boundary
		g.logger.Debugf("game: %v", err)
		return
	}
	g.appliedW, g.appliedH = g.width, g.height
	g.panel.SetHeight(float64(g.height) - 20)
}

func (g *Game) drainReload() {
	for {
		select {
		case cfg := <-g.reload:
			if cfg.World != g.cfg.World || cfg.Index != g.cfg.Index {
				g.logger.Warnf("game: world and index changes apply after a reset")
			}
			g.cfg = cfg
			g.sliders.set(cfg.Boid)
			g.tune(cfg.Boid)
		default:
			return
		}
	}
}

func (g *Game) tune(p flock.Params) {
	if err := g.flock.Tune(p); err != nil {
		g.logger.Warnf("game: tuning rejected: %v", err)
	}
}

// reset rebuilds the population from the current config and tuning.
func (g *Game) reset() {
	cfg := *g.cfg
	cfg.Boid = g.flock.Params()
	f, err := newFlock(&cfg, g.logger)
	if err != nil {
		g.logger.Errorf("game: reset failed: %v", err)
		return
	}
	g.flock = f
	g.appliedW, g.appliedH = int(cfg.World.Width), int(cfg.World.Height)
	g.ticks, g.simTime = 0, 0
	g.logger.Infof("game: flock reset with %d agents", f.Len())
}

func (g *Game) sample() {
	every := g.cfg.Telemetry.Every
	if g.csv == nil || every <= 0 || g.ticks%every != 0 {
		return
	}
	s := telemetry.Collect(g.ticks, g.simTime, g.flock.All())
	if err := g.csv.Write(s); err != nil {
		g.logger.Errorf("game: %v", err)
		g.csv = nil
	}
}

// Layout follows the window so that resizing changes the flock boundary.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		g.drawAvg = g.drawAvg*0.95 + float64(elapsed.Microseconds())/1000.0*0.05
	}()

	screen.Fill(backgroundColor)

	// 1. Agents
	viewport := geometry.RectFromSize(float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy()))
	g.drawFlock(screen, viewport)

	// 2. UI Panel
	g.panel.Draw(screen)

	// 3. Stats
	state := ""
	if g.paused {
		state = "\nPAUSED"
	}
	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\nAgents: %d\n\nUpdate: %.2fms\nDraw:   %.2fms%s",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.flock.Len(),
		g.updateAvg,
		g.drawAvg,
		state)
	ebitenutil.DebugPrintAt(screen, msg, screen.Bounds().Dx()-150, 10)
}

func (g *Game) drawFlock(screen *ebiten.Image, viewport geometry.Rect) {
	if g.white == nil {
		g.white = ebiten.NewImage(3, 3)
		g.white.Fill(color.White)
	}
	g.vertices, g.indices = g.vertices[:0], g.indices[:0]

	for v := range g.flock.ExportVisible(viewport) {
		if g.widgetRings.Value {
			drawRings(screen, v)
		}
		g.vertices, g.indices = appendTriangle(g.vertices, g.indices, v)
		if len(g.vertices)+3 > math.MaxUint16 {
			g.flushTriangles(screen)
		}
	}
	g.flushTriangles(screen)
}

func (g *Game) flushTriangles(screen *ebiten.Image) {
	if len(g.indices) == 0 {
		return
	}
	screen.DrawTriangles(g.vertices, g.indices, g.white, &ebiten.DrawTrianglesOptions{})
	g.vertices, g.indices = g.vertices[:0], g.indices[:0]
}

func drawRings(screen *ebiten.Image, v flock.BoidView) {
	x, y := float32(v.Position.X), float32(v.Position.Y)
	vector.StrokeCircle(screen, x, y, float32(v.SeparationRadius), 1, color.RGBA{R: 255, G: 80, B: 80, A: 90}, true)
	vector.StrokeCircle(screen, x, y, float32(v.AlignmentRadius), 1, color.RGBA{R: 80, G: 255, B: 80, A: 60}, true)
	vector.StrokeCircle(screen, x, y, float32(v.CohesionRadius), 1, color.RGBA{R: 80, G: 80, B: 255, A: 60}, true)
}

// appendTriangle adds the arrow of one agent, pointing along its velocity
// and tinted with its blended colour.
func appendTriangle(vs []ebiten.Vertex, is []uint16, v flock.BoidView) ([]ebiten.Vertex, []uint16) {
	angle := v.Velocity.Angle()
	length := 3 * v.Size
	width := 2.5 * v.Size
	r, gr, b := float32(v.Color.R), float32(v.Color.G), float32(v.Color.B)

	base := uint16(len(vs))
	for _, p := range [3]struct{ a, d float64 }{{0, length}, {2.5, width}, {-2.5, width}} {
		vs = append(vs, ebiten.Vertex{
			DstX:   float32(v.Position.X + math.Cos(angle+p.a)*p.d),
			DstY:   float32(v.Position.Y + math.Sin(angle+p.a)*p.d),
			SrcX:   1,
			SrcY:   1,
			ColorR: r,
			ColorG: gr,
			ColorB: b,
			ColorA: 1,
		})
	}
	is = append(is, base, base+1, base+2)
	return vs, is
}
