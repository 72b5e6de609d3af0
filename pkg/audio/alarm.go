// Package audio plays the looping alarm cue through the system audio
// device. The built-in chime is synthesized so the binary needs no
// bundled sound asset; a custom WAV file can be configured instead.
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Global audio context singleton; oto allows only one per process. The
// context is locked to the format of the first alarm that plays, so a
// later alarm with a different sample rate plays at the wrong pitch
// until restart (see the format check in Start).
var (
	globalCtx     *oto.Context
	globalCtxOnce sync.Once
	ctxReady      bool
	ctxFormat     pcmFormat
)

// pcmFormat describes the raw sample layout of the alarm data.
type pcmFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

func initContext(format pcmFormat) {
	globalCtxOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			log.Printf("Failed to initialize audio context: %v", err)
			return
		}

		// Wait for the hardware audio devices to be ready.
		<-readyChan

		globalCtx = ctx
		ctxReady = true
		ctxFormat = format
		log.Println("Audio context initialized")
	})
}

// Alarm holds decoded alarm sound data and the currently running loop.
// Start while already running restarts the loop (there is only ever one
// alarm sound playing at a time).
type Alarm struct {
	format pcmFormat
	data   []byte

	mu      sync.Mutex
	current *playback
}

// NewAlarm loads the WAV file at path, or synthesizes the built-in chime
// when path is empty or unreadable.
func NewAlarm(path string) *Alarm {
	if path != "" {
		wavData, err := os.ReadFile(path)
		if err == nil {
			format, data, perr := parseWAV(wavData)
			if perr == nil {
				return &Alarm{format: format, data: data}
			}
			log.Printf("Failed to parse alarm sound %s: %v", path, perr)
		} else {
			log.Printf("Failed to read alarm sound %s: %v", path, err)
		}
	}

	format, data := chime()
	return &Alarm{format: format, data: data}
}

// Start begins looping the alarm sound until Stop is called.
func (a *Alarm) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current != nil {
		a.current.stop()
	}

	initContext(a.format)
	if !ctxReady || globalCtx == nil {
		log.Println("Audio context not ready, alarm sound skipped")
		return
	}
	if a.format != ctxFormat {
		log.Printf("Alarm sound is %d Hz but the audio device was opened at %d Hz, pitch will be off until restart",
			a.format.SampleRate, ctxFormat.SampleRate)
	}

	p := &playback{stopChan: make(chan struct{})}
	a.current = p
	go p.loop(a.data)
}

// Stop halts the current loop, if any.
func (a *Alarm) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current != nil {
		a.current.stop()
		a.current = nil
	}
}

// playback is one looping run of the alarm sound.
type playback struct {
	stopChan chan struct{}
	stopOnce sync.Once
	player   *oto.Player
}

func (p *playback) loop(data []byte) {
	for {
		p.player = globalCtx.NewPlayer(bytes.NewReader(data))
		p.player.Play()

		for p.player.IsPlaying() {
			select {
			case <-p.stopChan:
				p.player.Pause()
				p.player.Close()
				return
			case <-time.After(10 * time.Millisecond):
			}
		}

		if err := p.player.Close(); err != nil {
			log.Printf("Failed to close audio player: %v", err)
		}

		select {
		case <-p.stopChan:
			return
		default:
		}
	}
}

func (p *playback) stop() {
	p.stopOnce.Do(func() {
		close(p.stopChan)
		if p.player != nil {
			p.player.Pause()
		}
	})
}

const (
	chimeSampleRate = 44100
	chimeAmplitude  = 0.35
)

// chime synthesizes the built-in three-tone alarm: rising notes followed
// by a pause, designed to loop cleanly.
func chime() (pcmFormat, []byte) {
	var buf bytes.Buffer
	tone(&buf, 880, 180*time.Millisecond)
	silence(&buf, 100*time.Millisecond)
	tone(&buf, 988, 180*time.Millisecond)
	silence(&buf, 100*time.Millisecond)
	tone(&buf, 1175, 300*time.Millisecond)
	silence(&buf, 900*time.Millisecond)

	return pcmFormat{SampleRate: chimeSampleRate, Channels: 1, BitDepth: 16}, buf.Bytes()
}

// tone writes a sine wave with a short linear attack and release so the
// note doesn't click at its edges.
func tone(buf *bytes.Buffer, freq float64, d time.Duration) {
	samples := int(float64(chimeSampleRate) * d.Seconds())
	edge := chimeSampleRate / 100 // 10ms ramp
	for i := 0; i < samples; i++ {
		env := 1.0
		if i < edge {
			env = float64(i) / float64(edge)
		} else if samples-i < edge {
			env = float64(samples-i) / float64(edge)
		}
		v := chimeAmplitude * env * math.Sin(2*math.Pi*freq*float64(i)/chimeSampleRate)
		sample := int16(v * math.MaxInt16)
		binary.Write(buf, binary.LittleEndian, sample)
	}
}

func silence(buf *bytes.Buffer, d time.Duration) {
	samples := int(float64(chimeSampleRate) * d.Seconds())
	buf.Write(make([]byte, samples*2))
}

// parseWAV extracts the sample format and raw audio data from a RIFF WAV
// file. Only 16-bit PCM is supported, matching the player's format.
func parseWAV(data []byte) (pcmFormat, []byte, error) {
	reader := bytes.NewReader(data)

	header := make([]byte, 4)
	if _, err := io.ReadFull(reader, header); err != nil {
		return pcmFormat{}, nil, err
	}
	if string(header) != "RIFF" {
		return pcmFormat{}, nil, fmt.Errorf("not a RIFF file")
	}

	// Skip file size, check WAVE marker.
	reader.Seek(4, io.SeekCurrent)
	if _, err := io.ReadFull(reader, header); err != nil {
		return pcmFormat{}, nil, err
	}
	if string(header) != "WAVE" {
		return pcmFormat{}, nil, fmt.Errorf("not a WAVE file")
	}

	var format pcmFormat
	for {
		chunkID := make([]byte, 4)
		if _, err := io.ReadFull(reader, chunkID); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return pcmFormat{}, nil, fmt.Errorf("no data chunk found")
			}
			return pcmFormat{}, nil, err
		}

		var chunkSize uint32
		if err := binary.Read(reader, binary.LittleEndian, &chunkSize); err != nil {
			return pcmFormat{}, nil, err
		}

		switch string(chunkID) {
		case "fmt ":
			var audioFormat, numChannels uint16
			var sampleRate uint32
			binary.Read(reader, binary.LittleEndian, &audioFormat)
			binary.Read(reader, binary.LittleEndian, &numChannels)
			binary.Read(reader, binary.LittleEndian, &sampleRate)
			// Skip byte rate and block align.
			reader.Seek(6, io.SeekCurrent)
			var bitsPerSample uint16
			binary.Read(reader, binary.LittleEndian, &bitsPerSample)

			format.Channels = int(numChannels)
			format.SampleRate = int(sampleRate)
			format.BitDepth = int(bitsPerSample)

			if remaining := int64(chunkSize) - 16; remaining > 0 {
				reader.Seek(remaining, io.SeekCurrent)
			}
		case "data":
			if format.BitDepth != 0 && format.BitDepth != 16 {
				return pcmFormat{}, nil, fmt.Errorf("unsupported bit depth %d", format.BitDepth)
			}
			audioData := make([]byte, chunkSize)
			if _, err := io.ReadFull(reader, audioData); err != nil {
				return pcmFormat{}, nil, err
			}
			return format, audioData, nil
		default:
			reader.Seek(int64(chunkSize), io.SeekCurrent)
		}
	}
}
