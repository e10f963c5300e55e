package mediacore

import (
	"io"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

const audioPlayerBufferSize = 4096

// AudioRenderer is the Renderer implementation for the audio media type,
// backed by Ebitengine's audio package. Render appends each
// block's PCM payload to an internal queue; Read drains that queue for the
// audio.Player pulling in a separate goroutine.
type AudioRenderer struct {
	mutex sync.Mutex

	player *audio.Player
	queue  []byte

	volume float64
	muted  bool
	paused bool
}

// NewAudioRenderer creates a player against ctx; ctx must already be
// initialized (one audio.Context per process).
func NewAudioRenderer(ctx *audio.Context) (*AudioRenderer, error) {
	if ctx == nil {
		return nil, ErrNilAudioContext
	}
	r := &AudioRenderer{volume: 1.0}
	player, err := ctx.NewPlayer(&struct{ io.Reader }{r})
	if err != nil {
		return nil, err
	}
	player.SetBufferSize(audioPlayerBufferSize)
	r.player = player
	return r, nil
}

func (r *AudioRenderer) WaitForReadyState() error { return nil }

func (r *AudioRenderer) Play() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.paused = false
	if r.player != nil {
		r.player.Play()
	}
	return nil
}

func (r *AudioRenderer) Pause() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.paused = true
	if r.player != nil {
		r.player.Pause()
	}
	return nil
}

func (r *AudioRenderer) Stop() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.queue = r.queue[:0]
	if r.player != nil {
		r.player.Pause()
		return r.player.Rewind()
	}
	return nil
}

func (r *AudioRenderer) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.player == nil {
		return nil
	}
	err := r.player.Close()
	r.player = nil
	return err
}

// Seek discards whatever was queued ahead of the reposition so stale
// audio never plays after a seek lands.
func (r *AudioRenderer) Seek(Ticks) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.queue = r.queue[:0]
	return nil
}

func (r *AudioRenderer) Update(Ticks) error { return nil }

// Render enqueues block's PCM payload for Read to drain.
func (r *AudioRenderer) Render(block *MediaBlock) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.queue = append(r.queue, block.Data...)
	return nil
}

func (r *AudioRenderer) SetVolume(v float64) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.volume = clampFloat(v, 0, 1)
	if r.player != nil {
		r.player.SetVolume(r.effectiveVolumeLocked())
	}
}

func (r *AudioRenderer) SetMuted(m bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.muted = m
	if r.player != nil {
		r.player.SetVolume(r.effectiveVolumeLocked())
	}
}

func (r *AudioRenderer) effectiveVolumeLocked() float64 {
	if r.muted {
		return 0
	}
	return r.volume
}

// Read implements io.Reader for the underlying audio.Player, draining
// the queue Render fills. Returning (0, nil) on an empty queue (rather
// than blocking or EOF) lets the player under-run silently instead of
// stopping outright, since render ticks may simply not have caught up yet.
func (r *AudioRenderer) Read(buffer []byte) (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if len(r.queue) == 0 {
		return 0, nil
	}
	n := copy(buffer, r.queue)
	remaining := copy(r.queue, r.queue[n:])
	r.queue = r.queue[:remaining]
	return n, nil
}
