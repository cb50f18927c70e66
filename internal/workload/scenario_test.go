package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBufferedTransfer(t *testing.T) {
	t.Parallel()

	s, err := Load("testdata/buffered_transfer.yaml")
	require.NoError(t, err)
	assert.Equal(t, "buffered-transfer", s.Name)
	require.Len(t, s.Channels, 1)
	assert.Equal(t, "orders", s.Channels[0].Name)
	assert.Equal(t, 4, s.Channels[0].Capacity)
	require.Len(t, s.Producers, 1)
	require.Len(t, s.Consumers, 1)
}

func TestLoadFanInSelect(t *testing.T) {
	t.Parallel()

	s, err := Load("testdata/fan_in_select.yaml")
	require.NoError(t, err)
	require.Len(t, s.Channels, 2)
	require.Len(t, s.Selects, 1)
	assert.ElementsMatch(t, []string{"prices", "trades"}, s.Selects[0].Channels)
}

func TestLoadRejectsUnknownChannelReference(t *testing.T) {
	t.Parallel()

	_, err := Load("testdata/invalid_channel_ref.yaml")
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load("testdata/does-not-exist.yaml")
	assert.Error(t, err)
}

func TestValidateRejectsZeroCapacity(t *testing.T) {
	t.Parallel()

	s := &Scenario{
		Channels: []ChannelSpec{{Name: "a", Capacity: 0}},
	}
	assert.Error(t, s.Validate())
}

func TestValidateRejectsDuplicateChannelNames(t *testing.T) {
	t.Parallel()

	s := &Scenario{
		Channels: []ChannelSpec{
			{Name: "a", Capacity: 1},
			{Name: "a", Capacity: 2},
		},
	}
	assert.Error(t, s.Validate())
}

func TestValidateRejectsEmptySelectChannels(t *testing.T) {
	t.Parallel()

	s := &Scenario{
		Channels: []ChannelSpec{{Name: "a", Capacity: 1}},
		Selects:  []SelectSpec{{Channels: nil}},
	}
	assert.Error(t, s.Validate())
}

func TestValidateAcceptsWellFormedScenario(t *testing.T) {
	t.Parallel()

	s := &Scenario{
		Channels:  []ChannelSpec{{Name: "a", Capacity: 1}},
		Producers: []ProducerSpec{{Channel: "a", Count: 1}},
		Consumers: []ConsumerSpec{{Channel: "a", Count: 1}},
		Selects:   []SelectSpec{{Channels: []string{"a"}, Count: 1}},
	}
	assert.NoError(t, s.Validate())
}
