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

// Package playmode runs a play session: it wires the emulation core to the
// snapshot engine, run-ahead scheduler, save stacks, auto-save coordinator
// and the screen, and drives them all from a single 60Hz loop. Every part of
// the session that touches the core runs on that one goroutine.
package playmode

import (
	"io"
	"time"

	"github.com/virtual-viking/nescaster/autosave"
	"github.com/virtual-viking/nescaster/contentloader"
	"github.com/virtual-viking/nescaster/curated"
	"github.com/virtual-viking/nescaster/gui"
	"github.com/virtual-viking/nescaster/hardware"
	"github.com/virtual-viking/nescaster/logger"
	"github.com/virtual-viking/nescaster/notifications"
	"github.com/virtual-viking/nescaster/resources"
	"github.com/virtual-viking/nescaster/runahead"
	"github.com/virtual-viking/nescaster/savestack"
	"github.com/virtual-viking/nescaster/snapshot"
	"github.com/virtual-viking/nescaster/storage"
	"github.com/virtual-viking/nescaster/thumbnailer"
	"github.com/virtual-viking/nescaster/wavwriter"
)

// error patterns returned by the playmode package.
const (
	PlayError = "playmode: %v"
)

// Session is a running play session. A Session owns its console exclusively;
// two Sessions never share a core.
type Session struct {
	console   *hardware.Console
	engine    *snapshot.Engine
	scheduler *runahead.Scheduler
	saves     *savestack.Manager
	coord     *autosave.Coordinator

	scr    gui.Screen
	notify notifications.Notify

	pauseSrc *autosave.PauseSource
	levelSrc *autosave.LevelSource

	paused bool

	// most recently displayed frame. used for manual save thumbnails
	lastVideo []byte

	// optional audio capture of the session
	audioOut *wavwriter.WavWriter
}

// NewSession is the preferred method of initialisation for the Session type.
// Content must already be loaded into the loader. The notify argument may be
// nil.
func NewSession(scr gui.Screen, core hardware.Core, loader contentloader.Loader,
	profileID string, saves *savestack.Manager, autoPrf *autosave.Preferences,
	notify notifications.Notify) (*Session, error) {

	if err := core.LoadContent(loader.Data); err != nil {
		return nil, curated.Errorf(PlayError, err)
	}

	console := hardware.NewConsole(core, hardware.Session{
		ProfileID: profileID,
		GameID:    loader.Hash,
		Name:      loader.ShortName(),
	})

	engine, err := snapshot.NewEngine(core, snapshot.DefaultPoolSize)
	if err != nil {
		return nil, curated.Errorf(PlayError, err)
	}

	ses := &Session{
		console:   console,
		engine:    engine,
		scheduler: runahead.NewScheduler(console, engine, notify),
		saves:     saves,
		scr:       scr,
		notify:    notify,
		pauseSrc:  autosave.NewPauseSource(),
		levelSrc:  autosave.NewLevelSource(),
		lastVideo: make([]byte, hardware.FrameSize),
	}

	ses.coord = autosave.NewCoordinator(console, saves, autoPrf)
	ses.coord.AddSource(autosave.NewIntervalSource(
		time.Duration(autoPrf.IntervalMinutes.Get().(int)) * time.Minute))
	ses.coord.AddSource(ses.pauseSrc)
	ses.coord.AddSource(ses.levelSrc)

	return ses, nil
}

// SetAudioOut attaches a WAV writer to the session. Every displayed frame's
// audio is appended to it; the file is written when the session ends.
func (ses *Session) SetAudioOut(aw *wavwriter.WavWriter) {
	ses.audioOut = aw
}

// SetRunAhead turns run-ahead on or off for the session.
func (ses *Session) SetRunAhead(enabled bool) {
	ses.scheduler.SetEnabled(enabled)
}

// Console returns the session's console.
func (ses *Session) Console() *hardware.Console {
	return ses.console
}

// tick runs one displayed frame and feeds the results to the screen and the
// trigger sources.
func (ses *Session) tick(now time.Time, inp hardware.Input) error {
	video, audio, err := ses.scheduler.Tick(inp)
	if err != nil {
		return err
	}

	copy(ses.lastVideo, video)

	if err := ses.scr.SetPixels(video); err != nil {
		return err
	}
	if err := ses.scr.SetAudio(audio); err != nil {
		return err
	}
	if ses.audioOut != nil {
		ses.audioOut.SetAudio(audio)
	}

	ses.levelSrc.NewFrame(video)
	ses.coord.Tick(now, video)

	return nil
}

// Save pushes a manual save onto the stack, with a thumbnail of the most
// recently displayed frame.
func (ses *Session) Save(name string) error {
	state, err := ses.console.Core.CaptureState()
	if err != nil {
		return curated.Errorf(PlayError, err)
	}

	thumb, err := thumbnailer.Create(ses.lastVideo)
	if err != nil {
		logger.Logf("playmode", "thumbnail: %v", err)
		thumb = nil
	}

	if name == "" {
		name = ses.console.Session.Name
	}

	_, err = ses.saves.Push(ses.console.Session.ProfileID, ses.console.Session.GameID,
		state, thumb, savestack.Metadata{
			Name:     name,
			PlayTime: ses.console.PlayTime(),
		}, false)
	if err != nil {
		return curated.Errorf(PlayError, err)
	}

	return nil
}

// LoadLatest restores the most recent save for the session, manual or auto,
// whichever is newer.
func (ses *Session) LoadLatest() error {
	s := ses.console.Session

	summaries := ses.saves.List(s.ProfileID, s.GameID, true)
	if len(summaries) == 0 {
		return curated.Errorf(savestack.NotFound, "no saves for this game")
	}

	return ses.LoadEntry(summaries[0].ID)
}

// LoadEntry restores the identified save. A corrupt save leaves the session
// untouched.
func (ses *Session) LoadEntry(entryID string) error {
	state, summary, err := ses.saves.Load(entryID)
	if err != nil {
		if curated.Is(err, savestack.Corrupt) {
			if ses.notify != nil {
				ses.notify.Notify(notifications.NotifyStateCorrupt, summary.Meta.Name)
			}
		}
		return err
	}

	if err := ses.console.Core.RestoreState(state); err != nil {
		return curated.Errorf(PlayError, err)
	}

	ses.console.SetPlayTime(summary.Meta.PlayTime)

	if ses.notify != nil {
		ses.notify.Notify(notifications.NotifyLoaded, summary.Meta.Name)
	}

	return nil
}

// TogglePause flips the pause state of the session. Pausing fires the
// auto-save pause trigger.
func (ses *Session) TogglePause() {
	ses.paused = !ses.paused

	if ses.paused {
		ses.pauseSrc.Pause()

		// the pause trigger is only serviced on a tick and ticks have just
		// stopped. poll the coordinator once more so the pause capture is
		// not deferred until unpause
		ses.coord.Tick(time.Now(), ses.lastVideo)

		if ses.notify != nil {
			ses.notify.Notify(notifications.NotifyPause, "")
		}
	} else if ses.notify != nil {
		ses.notify.Notify(notifications.NotifyUnpause, "")
	}
}

// Run drives the session until the user quits or an error stops emulation.
func (ses *Session) Run() error {
	tck := time.NewTicker(hardware.FramePeriod)
	defer tck.Stop()

	// queued writes must land before the process exits
	defer ses.saves.Sync()

	for {
		inp, events, err := ses.scr.Service()
		if err != nil {
			return curated.Errorf(PlayError, err)
		}

		for _, ev := range events {
			switch ev {
			case gui.EventQuit:
				return ses.end()
			case gui.EventSave:
				if err := ses.Save(""); err != nil {
					logger.Logf("playmode", "save: %v", err)
				}
			case gui.EventLoad:
				if err := ses.LoadLatest(); err != nil {
					logger.Logf("playmode", "load: %v", err)
				}
			case gui.EventPause:
				ses.TogglePause()
			case gui.EventRunAhead:
				ses.scheduler.SetEnabled(!ses.scheduler.Active())
			}
		}

		if !ses.paused {
			if err := ses.tick(time.Now(), inp); err != nil {
				return curated.Errorf(PlayError, err)
			}
		}

		<-tck.C
	}
}

func (ses *Session) end() error {
	if ses.audioOut != nil {
		if err := ses.audioOut.End(); err != nil {
			logger.Logf("playmode", "audio out: %v", err)
		}
	}
	return nil
}

// Play is the top-level entry point for a play session. It loads the content,
// assembles the session around the supplied screen and core, and runs it to
// completion.
func Play(scr gui.Screen, core hardware.Core, filename string, profileID string,
	wavOut string, output io.Writer) error {

	loader := contentloader.NewLoader(filename)
	if err := loader.Load(); err != nil {
		return err
	}

	stor, err := storage.NewDir(resources.BasePath())
	if err != nil {
		return curated.Errorf(PlayError, err)
	}

	stackPrf, err := savestack.NewPreferences()
	if err != nil {
		return curated.Errorf(PlayError, err)
	}

	autoPrf, err := autosave.NewPreferences()
	if err != nil {
		return curated.Errorf(PlayError, err)
	}

	playPrf, err := NewPreferences()
	if err != nil {
		return curated.Errorf(PlayError, err)
	}

	notify := &termNotify{output: output}
	saves := savestack.NewManager(stor, stackPrf, notify)

	ses, err := NewSession(scr, core, loader, profileID, saves, autoPrf, notify)
	if err != nil {
		return err
	}

	ses.SetRunAhead(playPrf.RunAhead.Get().(bool))

	if wavOut != "" {
		aw, err := wavwriter.New(wavOut, core.SampleRate())
		if err != nil {
			return err
		}
		ses.SetAudioOut(aw)
	}

	logger.Logf("playmode", "playing %s (game %s)", loader.ShortName(), loader.Hash)

	return ses.Run()
}
