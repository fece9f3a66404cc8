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

// Package sdlplay is the SDL implementation of the gui.Screen interface.
// SDL requires that all video calls happen on the main OS thread, so the
// play loop itself must run on the main goroutine when this screen is in
// use.
package sdlplay

import (
	"github.com/virtual-viking/nescaster/curated"
	"github.com/virtual-viking/nescaster/gui"
	"github.com/virtual-viking/nescaster/hardware"

	"github.com/veandco/go-sdl2/sdl"
)

const windowTitle = "NesCaster"

// SdlPlay presents the session through an SDL window.
type SdlPlay struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	// all audio is handled by the sound type
	snd *sound

	// the amount of scaling applied to each pixel
	scale float32
}

// NewSdlPlay is the preferred method of initialisation for the SdlPlay type.
func NewSdlPlay(scale float32, sampleRate int) (*SdlPlay, error) {
	scr := &SdlPlay{scale: scale}

	var err error

	err = sdl.Init(sdl.INIT_EVERYTHING)
	if err != nil {
		return nil, curated.Errorf("sdlplay: %v", err)
	}

	scr.window, err = sdl.CreateWindow(windowTitle,
		int32(sdl.WINDOWPOS_UNDEFINED), int32(sdl.WINDOWPOS_UNDEFINED),
		int32(float32(hardware.FrameWidth)*scale), int32(float32(hardware.FrameHeight)*scale),
		uint32(sdl.WINDOW_SHOWN))
	if err != nil {
		return nil, curated.Errorf("sdlplay: %v", err)
	}

	scr.renderer, err = sdl.CreateRenderer(scr.window, -1, uint32(sdl.RENDERER_ACCELERATED))
	if err != nil {
		return nil, curated.Errorf("sdlplay: %v", err)
	}

	// texture is the same size as the pixel array. scaling is applied by the
	// renderer in order to fit it in the window
	scr.texture, err = scr.renderer.CreateTexture(uint32(sdl.PIXELFORMAT_ABGR8888),
		int(sdl.TEXTUREACCESS_STREAMING),
		hardware.FrameWidth, hardware.FrameHeight)
	if err != nil {
		return nil, curated.Errorf("sdlplay: %v", err)
	}

	err = scr.renderer.SetScale(scale, scale)
	if err != nil {
		return nil, curated.Errorf("sdlplay: %v", err)
	}

	scr.snd, err = newSound(sampleRate)
	if err != nil {
		return nil, curated.Errorf("sdlplay: %v", err)
	}

	return scr, nil
}

// SetPixels implements the gui.Screen interface.
func (scr *SdlPlay) SetPixels(video []byte) error {
	err := scr.texture.Update(nil, video, hardware.FrameWidth*hardware.PixelDepth)
	if err != nil {
		return curated.Errorf("sdlplay: %v", err)
	}

	err = scr.renderer.Copy(scr.texture, nil, nil)
	if err != nil {
		return curated.Errorf("sdlplay: %v", err)
	}

	scr.renderer.Present()

	return nil
}

// SetAudio implements the gui.Screen interface.
func (scr *SdlPlay) SetAudio(samples []int16) error {
	return scr.snd.queue(samples)
}

// Service implements the gui.Screen interface.
func (scr *SdlPlay) Service() (hardware.Input, []gui.Event, error) {
	var events []gui.Event

	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch ev := ev.(type) {
		case *sdl.QuitEvent:
			events = append(events, gui.EventQuit)

		case *sdl.KeyboardEvent:
			if ev.Type != sdl.KEYDOWN || ev.Repeat != 0 {
				continue
			}
			switch ev.Keysym.Scancode {
			case sdl.SCANCODE_ESCAPE:
				events = append(events, gui.EventQuit)
			case sdl.SCANCODE_F1:
				events = append(events, gui.EventSave)
			case sdl.SCANCODE_F2:
				events = append(events, gui.EventLoad)
			case sdl.SCANCODE_P:
				events = append(events, gui.EventPause)
			case sdl.SCANCODE_F3:
				events = append(events, gui.EventRunAhead)
			}
		}
	}

	return readKeyboard(), events, nil
}

// End implements the gui.Screen interface.
func (scr *SdlPlay) End() error {
	scr.snd.end()
	scr.texture.Destroy()
	scr.renderer.Destroy()
	scr.window.Destroy()
	sdl.Quit()
	return nil
}
