package pulse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverageVolume(t *testing.T) {
	got, err := averageVolume([]uint32{normVolume, normVolume / 2})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, got, 1e-9)

	_, err = averageVolume(nil)
	assert.ErrorIs(t, err, errNoChannels)
}

func TestChannelVolumesClampAndFill(t *testing.T) {
	volumes := channelVolumes(2, 1.5)
	assert.Equal(t, []uint32{normVolume, normVolume}, []uint32(volumes))

	assert.Len(t, channelVolumes(0, 0.5), 1)
	assert.Equal(t, uint32(normVolume/2), channelVolumes(1, 0.5)[0])
}

func TestSessionIDRoundTrip(t *testing.T) {
	assert.Equal(t, "42", string(sessionID(42)))
}
