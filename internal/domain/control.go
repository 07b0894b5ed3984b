package domain

import "math"

type ActiveControl struct {
	Rule     Rule
	Sessions []Session
	Volume   float64
}

// PrimaryProcess returns the process name of the first bound session, or ""
// for master and empty controls.
func (c ActiveControl) PrimaryProcess() string {
	if len(c.Sessions) == 0 {
		return ""
	}
	return c.Sessions[0].ProcessName
}

func (c ActiveControl) Percent() int {
	return int(math.Floor(c.Volume*100 + 1e-9))
}

func ClampVolume(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
