// This file is part of NesCaster.
//
// NesCaster is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// NesCaster is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with NesCaster.  If not, see <https://www.gnu.org/licenses/>.

// Package thumbnailer produces the small screenshot stored alongside every
// save entry. Thumbnails are PNG encoded at half the native frame
// resolution.
package thumbnailer

import (
	"bytes"
	"image"
	"image/png"

	"github.com/virtual-viking/nescaster/curated"
	"github.com/virtual-viking/nescaster/hardware"
)

// thumbnails are the native frame downsampled by this factor.
const downsample = 2

// Width and Height of the produced thumbnails, in pixels.
const (
	Width  = hardware.FrameWidth / downsample
	Height = hardware.FrameHeight / downsample
)

// Create a PNG thumbnail from a native RGBA video frame.
func Create(video []byte) ([]byte, error) {
	if len(video) != hardware.FrameSize {
		return nil, curated.Errorf("thumbnailer: unexpected frame size (%d)", len(video))
	}

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))

	// point sampling. quality is unimportant at this size
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			src := ((y * downsample * hardware.FrameWidth) + x*downsample) * hardware.PixelDepth
			dst := img.PixOffset(x, y)
			copy(img.Pix[dst:dst+4], video[src:src+4])
		}
	}

	w := &bytes.Buffer{}
	if err := png.Encode(w, img); err != nil {
		return nil, curated.Errorf("thumbnailer: %v", err)
	}

	return w.Bytes(), nil
}
