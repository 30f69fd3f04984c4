package s111

import "math"

// KnotsPerMetreSecond converts speeds in metres per second to knots.
const KnotsPerMetreSecond = 1.943844

// Converter turns eastward/northward velocity components into speed and
// bearing.
type Converter struct {
	KnotsPerMS float64
}

// Polar returns the speed in knots and the direction the current flows
// toward, in degrees clockwise from true north within [0, 360).
func (c Converter) Polar(u, v float64) (speed, bearing float64) {
	uk := u * c.KnotsPerMS
	vk := v * c.KnotsPerMS
	speed = math.Sqrt(uk*uk + vk*vk)
	bearing = 90 - math.Atan2(vk, uk)*180/math.Pi
	if bearing < 0 {
		bearing += 360
	}
	return speed, bearing
}

// Convert fills speeds and bearings with the polar form of the node values
// in u and v, index by index, and widens ext with every finite speed.
func (c Converter) Convert(u, v, speeds, bearings []float64, ext *SpeedExtent) {
	for i := range u {
		speeds[i], bearings[i] = c.Polar(u[i], v[i])
		ext.Add(speeds[i])
	}
}

// SpeedExtent tracks the range of speeds seen so far.
type SpeedExtent struct {
	Min, Max float64
	Valid    bool
}

// Add widens the extent to include s. NaN values are ignored.
func (e *SpeedExtent) Add(s float64) {
	if math.IsNaN(s) {
		return
	}
	if !e.Valid {
		e.Min, e.Max, e.Valid = s, s, true
		return
	}
	e.Min = math.Min(e.Min, s)
	e.Max = math.Max(e.Max, s)
}
