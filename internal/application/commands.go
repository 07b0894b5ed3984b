package application

// VolumeStep is the delta applied by a single up/down key press.
const VolumeStep = 0.01

type AdjustVolumeCommand struct {
	Index int
	Delta float64
}
