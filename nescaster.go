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

package main

import (
	"fmt"
	"os"

	"github.com/bradleyjkemp/memviz"

	"github.com/virtual-viking/nescaster/contentloader"
	"github.com/virtual-viking/nescaster/curated"
	"github.com/virtual-viking/nescaster/gui/sdlplay"
	"github.com/virtual-viking/nescaster/hardware/refcore"
	"github.com/virtual-viking/nescaster/logger"
	"github.com/virtual-viking/nescaster/modalflag"
	"github.com/virtual-viking/nescaster/playmode"
	"github.com/virtual-viking/nescaster/resources"
	"github.com/virtual-viking/nescaster/savestack"
	"github.com/virtual-viking/nescaster/statsview"
	"github.com/virtual-viking/nescaster/storage"
	"github.com/virtual-viking/nescaster/version"
)

// #mainthread. SDL window and event handling must happen on the main OS
// thread, so everything runs here directly: there are no sub-goroutines
// between main() and the play loop.
func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.AddSubModes("PLAY", "SAVES", "VERSION")

	logEcho := md.AddBool("log", false, "echo log entries to stderr")
	useStats := md.AddBool("stats", false, "launch the statistics server")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		os.Exit(0)
	case modalflag.ParseError:
		fmt.Fprintf(os.Stderr, "* %v\n", err)
		os.Exit(10)
	}

	if *logEcho {
		logger.SetEcho(os.Stderr)
	}

	if *useStats {
		if statsview.Available() {
			statsview.Launch(os.Stdout)
		} else {
			fmt.Println("* statistics server not available. rebuild with statsview build tag")
		}
	}

	switch md.Mode() {
	case "PLAY":
		err = play(md)
	case "SAVES":
		err = saves(md)
	case "VERSION":
		ver, rev, release := version.Version()
		fmt.Printf("%s %s\n", version.ApplicationName, ver)
		if !release {
			fmt.Printf("  %s\n", rev)
		}
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "* %v\n", err)
		os.Exit(10)
	}
}

func play(md *modalflag.Modes) error {
	md.NewMode()

	profile := md.AddString("profile", "default", "profile to play under")
	scale := md.AddInt("scale", 0, "window scale. zero means use the saved preference")
	wavOut := md.AddString("wav", "", "record audio to wav file")

	p, err := md.Parse()
	if p != modalflag.ParseContinue {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return curated.Errorf("no content file specified")
	case 1:
		// good
	default:
		return curated.Errorf("too many arguments for %s mode", md)
	}

	if *scale <= 0 {
		prf, err := playmode.NewPreferences()
		if err != nil {
			return err
		}
		*scale = prf.Scale.Get().(int)
	}

	core := refcore.NewCore()

	scr, err := sdlplay.NewSdlPlay(float32(*scale), core.SampleRate())
	if err != nil {
		return err
	}
	defer scr.End()

	return playmode.Play(scr, core, md.GetArg(0), *profile, *wavOut, os.Stdout)
}

func saves(md *modalflag.Modes) error {
	md.NewMode()
	md.AddSubModes("LIST", "DELETE", "MAP")

	p, err := md.Parse()
	if p != modalflag.ParseContinue {
		return err
	}

	switch md.Mode() {
	case "LIST":
		return savesList(md)
	case "DELETE":
		return savesDelete(md)
	case "MAP":
		return savesMap(md)
	}

	return nil
}

// newSaveManager assembles a savestack manager over the on-disk store, for
// use outside of a play session.
func newSaveManager() (*savestack.Manager, error) {
	stor, err := storage.NewDir(resources.BasePath())
	if err != nil {
		return nil, err
	}

	prf, err := savestack.NewPreferences()
	if err != nil {
		return nil, err
	}

	return savestack.NewManager(stor, prf, nil), nil
}

// gameID derives the save stack key from the content file named on the
// command line, the same way a play session does.
func gameID(filename string) (string, error) {
	loader := contentloader.NewLoader(filename)
	if err := loader.Load(); err != nil {
		return "", err
	}
	return loader.Hash, nil
}

func savesList(md *modalflag.Modes) error {
	md.NewMode()

	profile := md.AddString("profile", "default", "profile to list saves for")
	auto := md.AddBool("auto", true, "include auto-saves in the listing")

	p, err := md.Parse()
	if p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) != 1 {
		return curated.Errorf("%s mode takes a single content file", md)
	}

	game, err := gameID(md.GetArg(0))
	if err != nil {
		return err
	}

	mgr, err := newSaveManager()
	if err != nil {
		return err
	}

	summaries := mgr.List(*profile, game, *auto)
	if len(summaries) == 0 {
		fmt.Println("no saves")
		return nil
	}

	for _, s := range summaries {
		marker := " "
		if s.Latest {
			marker = "*"
		}
		kind := "manual"
		if s.Meta.AutoSave {
			kind = "auto"
		}
		fmt.Printf("%s %s  %-6s  %-20s  %v  %s\n", marker, s.ID, kind,
			s.Meta.Name, s.Created.Format("2006-01-02 15:04:05"), s.Meta.PlayTime)
	}

	return nil
}

func savesDelete(md *modalflag.Modes) error {
	md.NewMode()

	profile := md.AddString("profile", "default", "profile owning the save")

	p, err := md.Parse()
	if p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) != 2 {
		return curated.Errorf("%s mode takes a content file and a save id", md)
	}

	game, err := gameID(md.GetArg(0))
	if err != nil {
		return err
	}

	mgr, err := newSaveManager()
	if err != nil {
		return err
	}

	// loading the listing attaches the on-disk index for the key
	mgr.List(*profile, game, true)

	if err := mgr.Delete(md.GetArg(1)); err != nil {
		return err
	}
	mgr.Sync()

	fmt.Printf("deleted %s\n", md.GetArg(1))

	return nil
}

// savesMap writes a graphviz visualisation of the in-memory save stacks.
// mostly useful when debugging stack behaviour.
func savesMap(md *modalflag.Modes) error {
	md.NewMode()

	profile := md.AddString("profile", "default", "profile to map saves for")
	outFile := md.AddString("o", "", "write dot output to file instead of stdout")

	p, err := md.Parse()
	if p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) != 1 {
		return curated.Errorf("%s mode takes a single content file", md)
	}

	game, err := gameID(md.GetArg(0))
	if err != nil {
		return err
	}

	mgr, err := newSaveManager()
	if err != nil {
		return err
	}

	summaries := mgr.List(*profile, game, true)

	output := os.Stdout
	if *outFile != "" {
		output, err = os.Create(*outFile)
		if err != nil {
			return curated.Errorf("saves map: %v", err)
		}
		defer output.Close()
	}

	memviz.Map(output, &summaries)

	return nil
}
