// Package export writes simulation runs to files: MJPEG videos of the lattice
// and plots of its statistics.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"

	"github.com/icza/mjpeg"

	"grain-ca/internal/core"
	"grain-ca/internal/render"
	"grain-ca/internal/sims/grain"
)

// DefaultJPEGQuality is the encoding quality of video frames.
const DefaultJPEGQuality = 75

// ErrClosed is returned when adding frames to a closed video.
var ErrClosed = errors.New("export: video closed")

// Video writes snapshots as frames of an MJPEG AVI file.
type Video struct {
	w      mjpeg.AviWriter
	size   core.Size
	scale  int
	every  uint64
	opts   jpeg.Options
	buf    bytes.Buffer
	frames int
	closed bool
}

// NewVideo creates path for a size lattice drawn at scale pixels per cell.
// Only snapshots whose step is a multiple of every become frames.
func NewVideo(path string, size core.Size, scale, fps, every int) (*Video, error) {
	if scale <= 0 {
		scale = 1
	}
	if every <= 0 {
		every = 1
	}
	if fps <= 0 {
		return nil, fmt.Errorf("export: frame rate %d", fps)
	}
	w, err := mjpeg.New(path, int32(size.W*scale), int32(size.H*scale), int32(fps))
	if err != nil {
		return nil, fmt.Errorf("export: create video %s: %w", path, err)
	}
	return &Video{
		w:     w,
		size:  size,
		scale: scale,
		every: uint64(every),
		opts:  jpeg.Options{Quality: DefaultJPEGQuality},
	}, nil
}

// Add encodes snap as a frame when its step falls on the frame interval. It
// reports whether a frame was written.
func (v *Video) Add(snap grain.Snapshot) (bool, error) {
	if v.closed {
		return false, ErrClosed
	}
	if snap.Step%v.every != 0 {
		return false, nil
	}
	if snap.Grid.W != v.size.W || snap.Grid.H != v.size.H {
		return false, fmt.Errorf("export: snapshot %dx%d does not match video %dx%d", snap.Grid.W, snap.Grid.H, v.size.W, v.size.H)
	}
	img, err := render.Image(snap, v.scale)
	if err != nil {
		return false, err
	}
	v.buf.Reset()
	if err := jpeg.Encode(&v.buf, img, &v.opts); err != nil {
		return false, fmt.Errorf("export: encode frame %d: %w", snap.Step, err)
	}
	if err := v.w.AddFrame(v.buf.Bytes()); err != nil {
		return false, fmt.Errorf("export: add frame %d: %w", snap.Step, err)
	}
	v.frames++
	return true, nil
}

// Frames returns the number of frames written so far.
func (v *Video) Frames() int { return v.frames }

// Close finalizes the AVI index. Closing twice is a no-op.
func (v *Video) Close() error {
	if v.closed {
		return nil
	}
	v.closed = true
	return v.w.Close()
}
