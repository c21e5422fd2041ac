// redfish-selftest is a non-interactive smoke tool: it wires up a
// facade.Engine entirely in-process (no real audio device), drives it
// through a handful of callbacks synthesizing a device's pull loop, and
// prints the same kind of summary cmd/audiocore-test prints for the
// teacher's malgo source test — proof the command bridge, mixer graph,
// and sequencer all move samples end to end without a soundcard.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/z-e-chan/redfish/config"
	"github.com/z-e-chan/redfish/facade"
	"github.com/z-e-chan/redfish/internal/logging"
	"github.com/z-e-chan/redfish/mixer"
	"github.com/z-e-chan/redfish/music"
)

func main() {
	callbacks := flag.Int("callbacks", 50, "number of process callbacks to drive")
	blockSize := flag.Int("block-size", 1024, "frames per callback")
	flag.Parse()

	logging.Init()

	cfg := config.Default()
	cfg.BlockSize = *blockSize
	e := facade.New(cfg)

	master := e.Mixer.CreateMixGroup("master", true)
	musicBus := e.Mixer.CreateMixGroup("music", false)
	sfx := e.Mixer.CreateMixGroup("sfx", false)
	musicBus.SetOutput(master.Handle())
	sfx.SetOutput(master.Handle())
	sfx.CreatePlugin(0, mixer.PluginGain)
	sfx.SetVolumeDB(-3)

	tone := make([]float32, cfg.SampleRate*cfg.Channels)
	for i := range tone {
		tone[i] = 0.25
	}
	asset, err := e.Asset.Load(tone, cfg.Channels, "tone")
	if err != nil {
		log.Fatalf("load tone asset: %v", err)
	}

	effect := e.NewSoundEffect()
	effect.AddVariation(facade.Variation{AudioHandle: asset, VolumeDBMin: -1, VolumeDBMax: 1, PitchMin: 1, PitchMax: 1})
	effect.SetMixGroup(sfx.Handle())
	effect.SetPlaybackRule(facade.RoundRobin)

	cueLayers := []music.Layer{{AudioHandle: asset, MixGroup: musicBus.Handle(), GainDB: 0}}
	cue := e.Music.CreateCue("loop", cueLayers, music.Meter{Top: 4, Bottom: 4}, 120, 0)
	transition := e.Music.CreateTransition(music.TransitionRecord{
		CueHandle: cue,
		Sync:      music.NewMusicalSync(music.SyncCut, 1, music.ReferenceBar),
		PlayCount: 0,
	})

	e.Process(make([]float32, *blockSize*cfg.Channels))
	e.Poll()

	effect.Play()
	e.Music.Play(transition)

	out := make([]float32, *blockSize*cfg.Channels)
	for i := 0; i < *callbacks; i++ {
		e.Process(out)
		e.Poll()
		if i%10 == 0 {
			bar, beat := e.Music.BarBeat()
			peak := float32(0)
			if mg, ok := e.Mixer.GetMaster(); ok {
				peak = mg.Peak()
			}
			fmt.Printf("callback %3d: playhead=%d voices=%d bar=%d beat=%d master-peak=%.4f\n",
				i, (i+2)*(*blockSize), e.ActiveVoices(), bar, beat, peak)
		}
	}

	e.Music.Stop()
	for i := 0; i < 3; i++ {
		e.Process(out)
		e.Poll()
	}

	if !e.Shutdown(2 * time.Second) {
		log.Fatal("shutdown handshake timed out")
	}
	fmt.Println("shutdown complete")
}
