package display

import (
	"errors"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/junsooki/AirGIF/internal/decoder"
	"github.com/junsooki/AirGIF/internal/input"
	"github.com/junsooki/AirGIF/internal/logger"
	"github.com/junsooki/AirGIF/internal/looper"
)

// Options configures the window.
type Options struct {
	Title  string
	Width  int
	Height int
}

// EbitenDisplay draws the latest frame with Ebitengine. Its Update loop is
// the foreground goroutine: it drains the looper every tick.
type EbitenDisplay struct {
	src       FrameSource
	loop      *looper.Looper
	onCommand CommandHandler
	opts      Options
	log       *logger.Logger

	ebitenImage *ebiten.Image
	uploaded    *decoder.Frame
	wasVisible  bool
	dirty       bool
	screenW     int
	screenH     int
}

// NewEbitenDisplay creates an Ebitengine-based display.
func NewEbitenDisplay(src FrameSource, loop *looper.Looper, onCommand CommandHandler, opts Options, log *logger.Logger) *EbitenDisplay {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 640, 480
	}
	if log == nil {
		log = logger.Nop()
	}
	return &EbitenDisplay{
		src:        src,
		loop:       loop,
		onCommand:  onCommand,
		opts:       opts,
		log:        log.Component("display"),
		wasVisible: true,
	}
}

// Run starts the Ebitengine game loop. Must be called from the main goroutine.
func (d *EbitenDisplay) Run() error {
	ebiten.SetWindowSize(d.opts.Width, d.opts.Height)
	ebiten.SetWindowTitle(d.opts.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetScreenClearedEveryFrame(false)
	return ebiten.RunGame(d)
}

// Visible reports whether the window can currently be seen. It is only
// meaningful on the Update goroutine.
func (d *EbitenDisplay) Visible() bool {
	return !ebiten.IsWindowMinimized()
}

// Invalidate schedules a redraw. It is the player's redraw subscriber and
// runs on the Update goroutine.
func (d *EbitenDisplay) Invalidate(*decoder.Frame) {
	d.dirty = true
}

// --- ebiten.Game interface ---

func (d *EbitenDisplay) Update() error {
	d.loop.Drain()

	visible := d.Visible()
	if visible && !d.wasVisible {
		if err := d.handle(input.CommandResume); err != nil {
			return err
		}
	}
	d.wasVisible = visible

	for _, k := range inpututil.AppendJustPressedKeys(nil) {
		cmd, ok := keyCommand(k)
		if !ok {
			continue
		}
		if err := d.handle(cmd); err != nil {
			return err
		}
	}
	return nil
}

func (d *EbitenDisplay) handle(cmd input.Command) error {
	if d.onCommand == nil {
		return nil
	}
	err := d.onCommand(cmd)
	if errors.Is(err, input.ErrQuit) {
		return ebiten.Termination
	}
	if err != nil {
		d.log.Error().Err(err).Str("cmd", string(cmd)).Msg("command failed")
	}
	return nil
}

func (d *EbitenDisplay) Draw(screen *ebiten.Image) {
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	if sw != d.screenW || sh != d.screenH {
		d.screenW, d.screenH = sw, sh
		d.dirty = true
	}
	frame := d.src.CurrentFrame()
	if frame == nil && d.uploaded != nil {
		// Cleared since the last draw.
		d.dirty = true
	}
	if !d.dirty {
		return
	}
	d.dirty = false
	screen.Clear()

	if frame == nil || frame.Image == nil {
		d.uploaded = nil
		return
	}

	fw, fh := frame.Image.Bounds().Dx(), frame.Image.Bounds().Dy()
	if fw == 0 || fh == 0 {
		return
	}
	if d.ebitenImage == nil ||
		d.ebitenImage.Bounds().Dx() != fw ||
		d.ebitenImage.Bounds().Dy() != fh {
		d.ebitenImage = ebiten.NewImage(fw, fh)
		d.uploaded = nil
	}
	if frame != d.uploaded {
		d.ebitenImage.WritePixels(frame.Image.Pix)
		d.uploaded = frame
	}

	scale, offsetX, offsetY := aspectFitTransform(float64(sw), float64(sh), float64(fw), float64(fh))

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	screen.DrawImage(d.ebitenImage, op)
}

func (d *EbitenDisplay) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// aspectFitTransform returns scale and offsets to fit frame into view with letterboxing.
func aspectFitTransform(viewW, viewH, frameW, frameH float64) (scale, offsetX, offsetY float64) {
	scale = math.Min(viewW/frameW, viewH/frameH)
	offsetX = (viewW - frameW*scale) / 2
	offsetY = (viewH - frameH*scale) / 2
	return
}

// keyCommand maps Ebitengine keys to playback commands.
func keyCommand(k ebiten.Key) (input.Command, bool) {
	m := map[ebiten.Key]input.Command{
		ebiten.KeySpace:          input.CommandToggle,
		ebiten.KeyC:              input.CommandClear,
		ebiten.KeyR:              input.CommandReload,
		ebiten.KeyEqual:          input.CommandFaster,
		ebiten.KeyNumpadAdd:      input.CommandFaster,
		ebiten.KeyMinus:          input.CommandSlower,
		ebiten.KeyNumpadSubtract: input.CommandSlower,
		ebiten.KeyDigit0:         input.CommandResetSpeed,
		ebiten.KeyQ:              input.CommandQuit,
		ebiten.KeyEscape:         input.CommandQuit,
	}
	cmd, ok := m[k]
	return cmd, ok
}
