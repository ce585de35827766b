// ABOUTME: Tests for the shared ring refill protocol
// ABOUTME: Covers loading, cursor arithmetic, looping, streaming and end detection
package driver

import (
	"testing"

	"github.com/sfxkit/sfxkit/pkg/audio"
)

func newTestBuffer(t *testing.T, flags BufferFlags, s *audio.Sample) (*Buffer, *Ring) {
	t.Helper()
	buf := NewBuffer(flags, s.Bits(), s.Rate)
	ring := NewRing(buf.Length, buf.Bytes)
	if err := LoadRing(buf, ring, s); err != nil {
		t.Fatalf("LoadRing: %v", err)
	}
	return buf, ring
}

func rampSample(t *testing.T, n int) *audio.Sample {
	t.Helper()
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	s, err := audio.NewSample(1, data, 1, 1000)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestNewBufferLength(t *testing.T) {
	buf := NewBuffer(Flag3D|FlagPlaying, 16, 11025)
	if buf.Length != 11024 {
		t.Errorf("expected half a second aligned to 2 bytes, got %d", buf.Length)
	}
	if buf.IsPlaying() {
		t.Error("creation flags must not include playing")
	}
	if !buf.Is3D() {
		t.Error("expected 3D buffer")
	}
}

func TestLoadShortSamplePadsSilence(t *testing.T) {
	s := rampSample(t, 100)
	buf, ring := newTestBuffer(t, 0, s)

	if buf.Written != 100 {
		t.Errorf("expected 100 bytes written, got %d", buf.Written)
	}
	if buf.Cursor != 0 {
		t.Errorf("cursor should be 0 after a full fill, got %d", buf.Cursor)
	}
	ring.View(func(data []byte) {
		if data[99] != 99 {
			t.Errorf("expected sample data at 99, got %d", data[99])
		}
		if data[100] != 0x80 {
			t.Errorf("expected 8-bit silence after sample, got %#x", data[100])
		}
	})
}

func TestLoadRepeatingWraps(t *testing.T) {
	s := rampSample(t, 100)
	buf, ring := newTestBuffer(t, FlagRepeat, s)

	ring.View(func(data []byte) {
		if data[100] != 0 || data[150] != 50 {
			t.Errorf("repeating sample should wrap: %d %d", data[100], data[150])
		}
	})
	if buf.Written > s.Size {
		t.Errorf("written %d exceeds sample size", buf.Written)
	}
}

func TestRefreshWritesPassedRegion(t *testing.T) {
	// 1000 Hz 8-bit: ring is 500 bytes, sample is 2000 bytes
	s := rampSample(t, 2000)
	buf, ring := newTestBuffer(t, 0, s)
	if err := PlayBuffer(buf, 0, nil); err != nil {
		t.Fatal(err)
	}

	finished, err := RefreshRing(buf, ring, 200, 200)
	if err != nil || finished {
		t.Fatalf("unexpected refresh result %v %v", finished, err)
	}
	if buf.Cursor != 200 {
		t.Errorf("expected cursor 200, got %d", buf.Cursor)
	}
	if buf.Written != 700 {
		t.Errorf("expected 700 bytes written, got %d", buf.Written)
	}
	ring.View(func(data []byte) {
		if data[0] != byte(500%251) {
			t.Errorf("region [0,200) should hold bytes 500.., got %d", data[0])
		}
	})

	// play cursor wrapped around past the end
	if _, err := RefreshRing(buf, ring, 100, 600); err != nil {
		t.Fatal(err)
	}
	if buf.Cursor != 100 {
		t.Errorf("expected cursor 100 after wrap, got %d", buf.Cursor)
	}
	if buf.Written != 1100 {
		t.Errorf("expected 1100 bytes written, got %d", buf.Written)
	}
}

func TestRefreshEqualCursorWritesNothing(t *testing.T) {
	s := rampSample(t, 2000)
	buf, ring := newTestBuffer(t, 0, s)
	PlayBuffer(buf, 0, nil)

	RefreshRing(buf, ring, 0, 10)
	if buf.Written != 500 {
		t.Errorf("nothing should be written, got %d", buf.Written)
	}
}

func TestRefreshDetectsEnd(t *testing.T) {
	s := rampSample(t, 100) // 100ms at 1000 Hz
	buf, ring := newTestBuffer(t, 0, s)
	PlayBuffer(buf, 1000, nil)

	if buf.EndTime != 1100 {
		t.Fatalf("expected end time 1100, got %d", buf.EndTime)
	}
	if finished, _ := RefreshRing(buf, ring, 50, 1050); finished {
		t.Error("finished too early")
	}
	if finished, _ := RefreshRing(buf, ring, 100, 1100); !finished {
		t.Error("expected finished at end time")
	}
}

func TestRepeatNeverFinishes(t *testing.T) {
	s := rampSample(t, 100)
	buf, ring := newTestBuffer(t, FlagRepeat, s)
	PlayBuffer(buf, 0, nil)

	if finished, _ := RefreshRing(buf, ring, 250, 5000); finished {
		t.Error("repeating buffer must not finish")
	}
}

func TestStreamingDrainSetsEnd(t *testing.T) {
	remaining := 600
	stream := func(dst []byte) int {
		n := len(dst)
		if n > remaining {
			n = remaining
		}
		for i := 0; i < n; i++ {
			dst[i] = 1
		}
		remaining -= n
		return n
	}
	s, _ := audio.NewStreamSample(2, stream, 1, 1000, 0)
	buf, ring := newTestBuffer(t, 0, s)
	PlayBuffer(buf, 0, nil)

	if !buf.Flags.Has(FlagStreaming) {
		t.Error("streaming sample should set the streaming flag")
	}
	if buf.EndTime != 0 {
		t.Errorf("unknown length stream should have no end time, got %d", buf.EndTime)
	}

	// 100 bytes of stream remain; this refresh writes them and pads
	RefreshRing(buf, ring, 250, 250)
	if buf.EndTime != 0 {
		t.Errorf("stream not drained yet, got end %d", buf.EndTime)
	}
	RefreshRing(buf, ring, 400, 400)
	if buf.EndTime != 400+500 {
		t.Errorf("expected end one ring after drain, got %d", buf.EndTime)
	}
}

func TestStopForcesReload(t *testing.T) {
	s := rampSample(t, 2000)
	buf, ring := newTestBuffer(t, 0, s)
	PlayBuffer(buf, 0, nil)
	RefreshRing(buf, ring, 300, 300)

	StopBuffer(buf)
	if buf.IsPlaying() || !buf.Flags.Has(FlagNeedsReload) {
		t.Fatalf("unexpected flags after stop: %v", buf.Flags)
	}

	reloaded := false
	err := PlayBuffer(buf, 400, func() error {
		reloaded = true
		return LoadRing(buf, ring, buf.Sample)
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reloaded || buf.Written != 500 || buf.Cursor != 0 {
		t.Errorf("expected a fresh reload, got reloaded=%v written=%d cursor=%d", reloaded, buf.Written, buf.Cursor)
	}
}

func TestSetFrequencyRescalesEnd(t *testing.T) {
	s := rampSample(t, 1000) // 1s at 1000 Hz
	buf, _ := newTestBuffer(t, 0, s)
	PlayBuffer(buf, 0, nil)

	SetFrequency(buf, 2, 500)
	if buf.Freq != 2000 {
		t.Errorf("expected 2000 Hz, got %d", buf.Freq)
	}
	if buf.EndTime != 750 {
		t.Errorf("expected remaining 500ms halved to end at 750, got %d", buf.EndTime)
	}
}

func TestRingLockBounds(t *testing.T) {
	r := NewRing(10, 2)
	if _, _, err := r.Lock(10, 1); err == nil {
		t.Error("expected error for offset past end")
	}
	a, b, err := r.Lock(8, 4)
	if err != nil {
		t.Fatal(err)
	}
	r.Unlock()
	if len(a) != 2 || len(b) != 2 {
		t.Errorf("expected split region 2+2, got %d+%d", len(a), len(b))
	}
}
