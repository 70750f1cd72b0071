// Package device plays an audio.Synth through the default output with
// PortAudio.
package device

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	"github.com/san-kum/vxsim/internal/audio"
)

type Player struct {
	stream *portaudio.Stream
}

// Open starts a stereo output stream fed by s.
func Open(s *audio.Synth) (*Player, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("audio init: %w", err)
	}
	process := func(_ []float32, out [][]float32) { s.Process(out) }
	stream, err := portaudio.OpenDefaultStream(0, 2, audio.SampleRate, audio.BufferSize, process)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open audio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("start audio stream: %w", err)
	}
	return &Player{stream: stream}, nil
}

func (p *Player) Close() error {
	err := p.stream.Stop()
	if cerr := p.stream.Close(); err == nil {
		err = cerr
	}
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}
