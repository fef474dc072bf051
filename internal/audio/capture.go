package audio

import (
	"context"
	"fmt"
	"sync"

	"docent/internal/logging"
)

// CaptureState tracks where a voice capture session is.
type CaptureState int

const (
	// Idle means no capture is open.
	Idle CaptureState = iota
	// Recording means the capture device is open and accumulating audio.
	Recording
	// Transcribing means capture has stopped and the audio is in flight
	// to the transcription model.
	Transcribing
)

func (s CaptureState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Transcribing:
		return "transcribing"
	default:
		return fmt.Sprintf("CaptureState(%d)", int(s))
	}
}

// Recorder is the capture device. Start opens the device and begins
// accumulating audio; Stop flushes the accumulated blob and its MIME type;
// Close releases the device handle.
type Recorder interface {
	Start() error
	Stop() ([]byte, string, error)
	Close() error
}

// Transcriber converts a captured audio blob into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// CaptureController drives one microphone capture session at a time:
// Idle -> Recording -> Transcribing -> Idle. The device is released
// unconditionally when transcription completes or fails.
type CaptureController struct {
	mu          sync.Mutex
	state       CaptureState
	recorder    Recorder
	transcriber Transcriber
}

// NewCaptureController creates a controller in the Idle state.
func NewCaptureController(recorder Recorder, transcriber Transcriber) *CaptureController {
	return &CaptureController{recorder: recorder, transcriber: transcriber}
}

// State reports the current capture state.
func (c *CaptureController) State() CaptureState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StartCapture opens the capture device. A start while already Recording is
// a no-op; a start while Transcribing is rejected because the device is
// still being released.
func (c *CaptureController) StartCapture() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Recording:
		logging.AudioDebug("StartCapture: already recording, ignoring")
		return nil
	case Transcribing:
		return fmt.Errorf("capture busy: transcription in progress")
	}

	if err := c.recorder.Start(); err != nil {
		return fmt.Errorf("failed to start capture: %w", err)
	}
	c.state = Recording
	logging.Audio("StartCapture: recording")
	return nil
}

// StopCapture stops recording, sends the captured audio for transcription,
// and returns the transcript. The device is released before this returns,
// whether or not transcription succeeded. An empty transcript is returned
// as-is; the caller decides how to present "could not understand".
func (c *CaptureController) StopCapture(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.state != Recording {
		c.mu.Unlock()
		return "", fmt.Errorf("no capture in progress (state %s)", c.state)
	}
	c.state = Transcribing
	c.mu.Unlock()

	defer func() {
		if err := c.recorder.Close(); err != nil {
			logging.AudioDebug("StopCapture: device close: %v", err)
		}
		c.mu.Lock()
		c.state = Idle
		c.mu.Unlock()
	}()

	blob, mimeType, err := c.recorder.Stop()
	if err != nil {
		return "", fmt.Errorf("failed to stop capture: %w", err)
	}
	logging.Audio("StopCapture: captured %d bytes (%s)", len(blob), mimeType)

	transcript, err := c.transcriber.Transcribe(ctx, blob, mimeType)
	if err != nil {
		return "", err
	}
	return transcript, nil
}
