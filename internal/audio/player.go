package audio

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"docent/internal/logging"
)

// Player owns the playback device. At most one playback is active at any
// instant; starting a new one halts whatever is in flight first.
type Player struct {
	mu         sync.Mutex
	otoCtx     *oto.Context
	current    *oto.Player
	sampleRate int
}

// NewPlayer opens the playback device at the given sample rate. The device
// is shared for the life of the process; callers should create one Player
// and reuse it.
func NewPlayer(sampleRate int) (*Player, error) {
	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}
	<-ready

	logging.Audio("Player: device ready at %d Hz", sampleRate)
	return &Player{otoCtx: otoCtx, sampleRate: sampleRate}, nil
}

// Play halts any in-flight playback, then starts playing the raw s16le mono
// PCM buffer. It returns immediately; playback proceeds in the background.
func (p *Player) Play(pcm []byte) error {
	if len(pcm)%2 != 0 {
		return fmt.Errorf("PCM buffer has odd length %d", len(pcm))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.haltLocked()

	player := p.otoCtx.NewPlayer(bytes.NewReader(pcm))
	player.Play()
	p.current = player
	logging.Audio("Player: started playback of %d bytes", len(pcm))
	return nil
}

// Halt stops the in-flight playback, if any.
func (p *Player) Halt() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.haltLocked()
}

func (p *Player) haltLocked() {
	if p.current == nil {
		return
	}
	if p.current.IsPlaying() {
		p.current.Pause()
		logging.AudioDebug("Player: halted in-flight playback")
	}
	if err := p.current.Close(); err != nil {
		logging.AudioDebug("Player: close after halt: %v", err)
	}
	p.current = nil
}

// Wait blocks until the current playback drains or there is none.
func (p *Player) Wait() {
	for {
		p.mu.Lock()
		current := p.current
		p.mu.Unlock()
		if current == nil || !current.IsPlaying() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}
