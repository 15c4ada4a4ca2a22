package domain

import (
	"fmt"
	"time"
)

// TimestampLayout is the fixed-width form of capture timestamps in keys and
// persisted documents.
const TimestampLayout = "20060102_150405"

type Channel string

const (
	ChannelMIC Channel = "MIC"
	ChannelACC Channel = "ACC"
)

var Channels = []Channel{ChannelMIC, ChannelACC}

func (c Channel) Valid() bool {
	return c == ChannelMIC || c == ChannelACC
}

type Status string

const (
	StatusAnomaly   Status = "anomaly"
	StatusProcessed Status = "processed"
)

var Statuses = []Status{StatusAnomaly, StatusProcessed}

func (s Status) Valid() bool {
	return s == StatusAnomaly || s == StatusProcessed
}

// EventRecord is one capture file, derived once from its listing key.
type EventRecord struct {
	MachineID string
	Channel   Channel
	Status    Status
	Timestamp time.Time
}

// Stream is one (machine, channel, status) listing prefix.
type Stream struct {
	MachineID string
	Channel   Channel
	Status    Status
}

// Prefix follows the bucket layout {machine}/result_{channel}/{status}/.
func (s Stream) Prefix() string {
	return fmt.Sprintf("%s/result_%s/%s/", s.MachineID, s.Channel, s.Status)
}

// StreamsFor returns every stream of the given machines in listing order:
// MIC/anomaly, MIC/processed, ACC/anomaly, ACC/processed per machine.
func StreamsFor(machineIDs []string) []Stream {
	out := make([]Stream, 0, len(machineIDs)*len(Channels)*len(Statuses))
	for _, id := range machineIDs {
		for _, ch := range Channels {
			for _, st := range Statuses {
				out = append(out, Stream{MachineID: id, Channel: ch, Status: st})
			}
		}
	}
	return out
}
