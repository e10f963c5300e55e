package mediacore

import "github.com/hajimehoshi/ebiten/v2"

// VideoRenderer is the Renderer implementation for the video media type,
// backed by Ebitengine. It keeps the last decoded block's
// pixels as an *ebiten.Image and exposes DrawTo for the host's own
// ebiten.Game.Draw.
type VideoRenderer struct {
	image  *ebiten.Image
	width  int
	height int
}

// NewVideoRenderer constructs an empty renderer; its backing image is
// (re)allocated lazily to match whatever resolution the first rendered
// block carries.
func NewVideoRenderer() *VideoRenderer { return &VideoRenderer{} }

func (r *VideoRenderer) WaitForReadyState() error { return nil }
func (r *VideoRenderer) Play() error              { return nil }
func (r *VideoRenderer) Pause() error              { return nil }
func (r *VideoRenderer) Stop() error               { return nil }
func (r *VideoRenderer) Close() error {
	r.image = nil
	return nil
}
func (r *VideoRenderer) Seek(Ticks) error { return nil }
func (r *VideoRenderer) Update(Ticks) error { return nil }

// Render copies block's decoded RGBA pixels into the renderer's backing
// image, reallocating it if the block's dimensions changed (e.g. after a
// ChangeMedia that selected a different video stream).
func (r *VideoRenderer) Render(block *MediaBlock) error {
	if block.PixelWidth == 0 || block.PixelHeight == 0 {
		return nil
	}
	if r.image == nil || r.width != block.PixelWidth || r.height != block.PixelHeight {
		r.image = ebiten.NewImage(block.PixelWidth, block.PixelHeight)
		r.width, r.height = block.PixelWidth, block.PixelHeight
	}
	r.image.WritePixels(block.Data)
	return nil
}

// CurrentFrame returns the most recently rendered image, or nil before
// the first Render call.
func (r *VideoRenderer) CurrentFrame() *ebiten.Image { return r.image }

// DrawTo projects the current frame into viewport, scaling to fill it
// while preserving aspect ratio, driven by the renderer's own state
// instead of a caller-supplied frame.
func (r *VideoRenderer) DrawTo(viewport *ebiten.Image) {
	if r.image == nil {
		return
	}
	geom, filter := calcProjection(viewport, r.image)
	var opts ebiten.DrawImageOptions
	opts.GeoM = geom
	opts.Filter = filter
	viewport.DrawImage(r.image, &opts)
}

// calcProjection returns the GeoM and recommended ebiten.Filter to project
// frame into viewport, scaled to fill it while preserving aspect ratio and
// centered in any leftover space.
func calcProjection(viewport, frame *ebiten.Image) (ebiten.GeoM, ebiten.Filter) {
	frameBounds := frame.Bounds()
	viewBounds := viewport.Bounds()
	vwWidth, vwHeight := viewBounds.Dx(), viewBounds.Dy()
	frWidth, frHeight := frameBounds.Dx(), frameBounds.Dy()

	tx, ty := float64(viewBounds.Min.X), float64(viewBounds.Min.Y)

	var geom ebiten.GeoM
	var filter ebiten.Filter = ebiten.FilterLinear
	wf, hf := float64(vwWidth)/float64(frWidth), float64(vwHeight)/float64(frHeight)
	sf := wf
	if hf < wf {
		sf = hf
	}
	if sf == 1.0 {
		offx := (float64(vwWidth) - float64(frWidth)) / 2
		offy := (float64(vwHeight) - float64(frHeight)) / 2
		geom.Translate(tx+offx, ty+offy)
	} else {
		sfrWidth := float64(frWidth) * sf
		sfrHeight := float64(frHeight) * sf
		geom.Scale(sf, sf)
		geom.Translate(tx+(float64(vwWidth)-sfrWidth)/2, ty+(float64(vwHeight)-sfrHeight)/2)
	}
	return geom, filter
}
