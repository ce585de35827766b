// ABOUTME: Software mixer that renders driver buffers to interleaved 16-bit stereo
// ABOUTME: Applies deferred volume, pan, distance rolloff and Doppler on commit
package otomix

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/sfxkit/sfxkit/pkg/audio"
	"github.com/sfxkit/sfxkit/pkg/driver"
)

// speedOfSound in meters per second
const speedOfSound = 343.0

type params struct {
	volume      float64
	pan         float64
	minDistance float64
	maxDistance float64
	relative    bool
	position    [3]float64
	velocity    [3]float64
}

func defaultParams() params {
	return params{volume: 1, minDistance: 1, maxDistance: 1000}
}

type listenerParams struct {
	unitsPerMeter float64
	doppler       float64
	position      [3]float64
	velocity      [3]float64
	front, up     [3]float64
	reverb        []float64
}

type voice struct {
	ring    *driver.Ring
	bytes   int
	frames  int // ring length in sample frames
	is3D    bool
	playing bool
	freq    int
	pos     float64 // fractional frame position within the ring
	pending params
	live    params
}

// Mixer renders every playing voice into the output stream. It implements
// io.Reader so an oto.Player can pull from it.
type Mixer struct {
	mu       sync.Mutex
	rate     int
	voices   map[*driver.Buffer]*voice
	pending  listenerParams
	listener listenerParams
	scratch  []float64
}

// NewMixer creates a mixer producing stereo output at rate Hz
func NewMixer(rate int) *Mixer {
	lp := listenerParams{
		unitsPerMeter: 1,
		front:         [3]float64{1, 0, 0},
		up:            [3]float64{0, 1, 0},
	}
	return &Mixer{
		rate:     rate,
		voices:   make(map[*driver.Buffer]*voice),
		pending:  lp,
		listener: lp,
	}
}

// Rate returns the output sample rate
func (m *Mixer) Rate() int {
	return m.rate
}

func (m *Mixer) add(buf *driver.Buffer, ring *driver.Ring) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := &voice{
		ring:    ring,
		bytes:   buf.Bytes,
		frames:  buf.Length / buf.Bytes,
		is3D:    buf.Is3D(),
		freq:    buf.Freq,
		pending: defaultParams(),
	}
	v.live = v.pending
	m.voices[buf] = v
}

func (m *Mixer) remove(buf *driver.Buffer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.voices, buf)
}

func (m *Mixer) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voices = make(map[*driver.Buffer]*voice)
}

func (m *Mixer) start(buf *driver.Buffer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.voices[buf]; ok {
		v.playing = true
		v.pos = 0
		v.freq = buf.Freq
	}
}

func (m *Mixer) stop(buf *driver.Buffer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.voices[buf]; ok {
		v.playing = false
	}
}

// playCursor returns the byte offset in the ring the voice will read next
func (m *Mixer) playCursor(buf *driver.Buffer) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.voices[buf]
	if !ok {
		return 0
	}
	return (int(v.pos) % v.frames) * v.bytes
}

func (m *Mixer) setFreq(buf *driver.Buffer, freq int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.voices[buf]; ok {
		v.freq = freq
	}
}

func (m *Mixer) setParam(buf *driver.Buffer, fn func(p *params)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.voices[buf]; ok {
		fn(&v.pending)
	}
}

func (m *Mixer) setListener(fn func(lp *listenerParams)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.pending)
}

// commit applies every deferred voice and listener change at once
func (m *Mixer) commit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.voices {
		v.live = v.pending
	}
	m.listener = m.pending
	m.listener.reverb = append([]float64(nil), m.pending.reverb...)
}

// Read renders len(p)/4 stereo frames of 16-bit little-endian audio
func (m *Mixer) Read(p []byte) (int, error) {
	frames := len(p) / 4
	if frames == 0 {
		return 0, nil
	}

	m.mu.Lock()
	if cap(m.scratch) < frames*2 {
		m.scratch = make([]float64, frames*2)
	}
	mix := m.scratch[:frames*2]
	for i := range mix {
		mix[i] = 0
	}

	for _, v := range m.voices {
		if !v.playing || v.frames == 0 {
			continue
		}
		left, right, pitch := m.gains(v)
		step := float64(v.freq) * pitch / float64(m.rate)
		v.ring.View(func(data []byte) {
			for i := 0; i < frames; i++ {
				idx := int(v.pos) % v.frames
				var s float64
				if v.bytes == 1 {
					s = float64(int(data[idx])-128) / 128
				} else {
					s = float64(int16(binary.LittleEndian.Uint16(data[idx*2:]))) / 32768
				}
				mix[i*2] += s * left
				mix[i*2+1] += s * right
				v.pos += step
			}
		})
		// keep the position bounded while preserving the ring offset
		if v.pos >= float64(v.frames) {
			v.pos = math.Mod(v.pos, float64(v.frames))
		}
	}
	m.mu.Unlock()

	for i, s := range mix {
		binary.LittleEndian.PutUint16(p[i*2:], uint16(audio.SampleToInt16(audio.SampleFromFloat(s))))
	}
	return frames * 4, nil
}

// gains computes left/right gain and the Doppler pitch factor from the live
// parameters. Called with m.mu held.
func (m *Mixer) gains(v *voice) (left, right, pitch float64) {
	gain := driver.VolumeGain(v.live.volume)
	pan := v.live.pan
	pitch = 1

	if v.is3D {
		var att float64
		att, pan, pitch = m.spatialize(&v.live)
		gain *= att
	}

	pan = math.Max(-1, math.Min(1, pan))
	left = gain * math.Min(1, 1-pan)
	right = gain * math.Min(1, 1+pan)
	return left, right, pitch
}

// spatialize returns distance attenuation, pan and Doppler factor for a 3D voice
func (m *Mixer) spatialize(p *params) (att, pan, pitch float64) {
	lp := &m.listener
	rel := p.position
	if !p.relative {
		rel = driver.Sub(p.position, lp.position)
	}

	dist := driver.Length(rel)
	switch {
	case dist <= p.minDistance || dist == 0:
		att = 1
	case dist >= p.maxDistance:
		return 0, 0, 1
	default:
		att = p.minDistance / dist
	}

	if dist == 0 {
		return att, 0, 1
	}
	dir := [3]float64{rel[0] / dist, rel[1] / dist, rel[2] / dist}

	right := driver.Cross(lp.up, lp.front)
	if l := driver.Length(right); l > 0 {
		right = [3]float64{right[0] / l, right[1] / l, right[2] / l}
	}
	pan = driver.Dot(dir, right)

	pitch = 1
	if lp.doppler > 0 {
		c := speedOfSound * lp.unitsPerMeter
		vl := driver.Dot(lp.velocity, dir) * lp.doppler
		vs := driver.Dot(p.velocity, dir) * lp.doppler
		if p.relative {
			vl = 0
		}
		if c+vs > 0 {
			pitch = (c + vl) / (c + vs)
		}
		pitch = math.Max(0.5, math.Min(2, pitch))
	}
	return att, pan, pitch
}
