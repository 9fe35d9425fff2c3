package journal

import (
	"encoding/json"
	"fmt"

	"github.com/iwvelando/unsub-forecast/pkg/mathutil"
)

// Channel is one mutually exclusive way a use of a journal is fulfilled.
type Channel int

// Fulfillment channels, in subtraction precedence order.
const (
	ChannelOA Channel = iota
	ChannelSocialNetworks
	ChannelBackfile
	ChannelSubscription
	ChannelILL
	ChannelOtherDelayed

	numChannels
)

// Channels lists every channel in report order.
var Channels = [numChannels]Channel{
	ChannelOA,
	ChannelSocialNetworks,
	ChannelBackfile,
	ChannelSubscription,
	ChannelILL,
	ChannelOtherDelayed,
}

var channelNames = [numChannels]string{
	ChannelOA:             "oa",
	ChannelSocialNetworks: "social_networks",
	ChannelBackfile:       "backfile",
	ChannelSubscription:   "subscription",
	ChannelILL:            "ill",
	ChannelOtherDelayed:   "other_delayed",
}

func (c Channel) String() string {
	if c < 0 || c >= numChannels {
		return fmt.Sprintf("Channel(%d)", int(c))
	}
	return channelNames[c]
}

// MarshalText encodes the channel by name.
func (c Channel) MarshalText() ([]byte, error) {
	if c < 0 || c >= numChannels {
		return nil, fmt.Errorf("unknown channel %d", int(c))
	}
	return []byte(c.String()), nil
}

// ParseChannel returns the channel with the given name.
func ParseChannel(name string) (Channel, error) {
	for _, c := range Channels {
		if channelNames[c] == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown channel %q", name)
}

// FreeInstant reports whether the channel delivers immediately at no cost.
func (c Channel) FreeInstant() bool {
	return c == ChannelOA || c == ChannelSocialNetworks || c == ChannelBackfile
}

// Instant reports whether the channel delivers immediately.
func (c Channel) Instant() bool {
	return c.FreeInstant() || c == ChannelSubscription
}

// Delayed reports whether the channel is only used while unsubscribed.
func (c Channel) Delayed() bool {
	return c == ChannelILL || c == ChannelOtherDelayed
}

// activeWhen reports whether the channel carries value for the given
// subscription state.
func (c Channel) activeWhen(subscribed bool) bool {
	switch {
	case c == ChannelSubscription:
		return subscribed
	case c.Delayed():
		return !subscribed
	default:
		return true
	}
}

// ChannelSeries holds one series per channel.
type ChannelSeries [numChannels]mathutil.Series

// Total returns the element-wise sum across channels.
func (cs ChannelSeries) Total() mathutil.Series {
	var out mathutil.Series
	for _, s := range cs {
		out = out.Add(s)
	}
	return out
}

// Means returns the rounded five-year mean of each channel.
func (cs ChannelSeries) Means() ChannelValues {
	var out ChannelValues
	for c, s := range cs {
		out[c] = mathutil.Round4(s.Mean())
	}
	return out
}

// Add returns the channel-wise sum of cs and other.
func (cs ChannelSeries) Add(other ChannelSeries) ChannelSeries {
	var out ChannelSeries
	for c := range cs {
		out[c] = cs[c].Add(other[c])
	}
	return out
}

// ChannelValues holds one value per channel.
type ChannelValues [numChannels]float64

// MarshalJSON encodes the values as an object keyed by channel name.
func (cv ChannelValues) MarshalJSON() ([]byte, error) {
	return marshalByChannel(func(c Channel) any { return cv[c] })
}

// MarshalJSON encodes the series as an object keyed by channel name.
func (cs ChannelSeries) MarshalJSON() ([]byte, error) {
	return marshalByChannel(func(c Channel) any { return cs[c] })
}

func marshalByChannel(value func(c Channel) any) ([]byte, error) {
	out := make(map[string]any, numChannels)
	for _, c := range Channels {
		out[c.String()] = value(c)
	}
	return json.Marshal(out)
}
