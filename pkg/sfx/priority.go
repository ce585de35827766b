// ABOUTME: Priority rating and 2D attenuation and panning of sounds
// ABOUTME: Louder, closer and newer sounds rate higher
package sfx

import (
	"math"

	"github.com/sfxkit/sfxkit/pkg/clock"
	"github.com/sfxkit/sfxkit/pkg/world"
)

// priorityDecay is the number of tics over which a sound loses 1000 points
const priorityDecay = 5 * clock.TicsPerSecond

// Rate computes the priority of a sound of volume started at startTick, heard
// at now. listener and origin may be nil when unknown.
func Rate(listener, origin *world.Vec3, volume float64, startTick, now int64) float64 {
	timeoff := 1000 * float64(now-startTick) / priorityDecay
	if listener == nil || origin == nil {
		return 1000*volume - timeoff
	}
	return 1000*volume - listener.Dist(*origin)/2 - timeoff
}

// Attenuation maps a distance to a volume factor: 1 up to minDist, 0 beyond
// maxDist and a steep falloff between
func Attenuation(dist, minDist, maxDist float64) float64 {
	switch {
	case dist < minDist:
		return 1
	case dist > maxDist:
		return 0
	case maxDist <= minDist:
		return 1
	}
	nd := (dist - minDist) / (maxDist - minDist)
	return 0.125 / (0.125 + nd) * (1 - nd)
}

// Pan places origin relative to the listener's facing. pan runs from -1
// (left) to 1 (right); damp is below 1 for sounds behind the listener.
func Pan(listener world.Object, origin world.Vec3) (pan, damp float64) {
	d := origin.Sub(listener.Origin)
	if d.X == 0 && d.Y == 0 {
		return 0, 1
	}

	bearing := math.Atan2(d.Y, d.X) * 180 / math.Pi
	facing := float64(listener.Angle) / 4294967296 * 360
	angle := math.Mod(bearing-facing, 360)
	if angle < 0 {
		angle += 360
	}
	if angle > 180 {
		angle -= 360
	}

	if angle <= 90 && angle >= -90 {
		return -angle / 90, 1
	}

	// Behind: mirror into the front half and dampen
	if angle > 0 {
		pan = (angle - 180) / 90
	} else {
		pan = (angle + 180) / 90
	}
	return pan, (1 + math.Abs(pan)) / 2
}
