package usecase

import (
	"path"
	"regexp"
	"time"

	"github.com/superhyuk/statics-mc/internal/aggregation/core/domain"
)

// keyPattern matches <YYYYMMDD><delims><HHMMSS><delims><device tokens>_<MIC|ACC>,
// e.g. 20250101_090000_D01_MIC.wav.
var keyPattern = regexp.MustCompile(`(\d{8})[_\-]+(\d{6})[_\-]+(?:[0-9A-Za-z]+[_\-]+)+?(MIC|ACC)(?:[^0-9A-Za-z]|$)`)

// Extract parses a key listed under stream st into a record. ok is false for
// keys that do not carry a capture timestamp and channel, and for keys whose
// channel token disagrees with the stream's channel; those are not errors.
func Extract(key string, st domain.Stream, loc *time.Location) (rec domain.EventRecord, ok bool) {
	m := keyPattern.FindStringSubmatch(path.Base(key))
	if m == nil || domain.Channel(m[3]) != st.Channel {
		return domain.EventRecord{}, false
	}
	ts, err := time.ParseInLocation("20060102150405", m[1]+m[2], loc)
	if err != nil {
		return domain.EventRecord{}, false
	}
	return domain.EventRecord{
		MachineID: st.MachineID,
		Channel:   st.Channel,
		Status:    st.Status,
		Timestamp: ts,
	}, true
}
