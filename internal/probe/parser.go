package probe

import (
	"strings"

	"github.com/cadencejames/Get-PingTimes/internal/latency"
)

// ParseTranscript extracts the average round-trip latency from a Cisco IOS
// ping transcript.
//
// Per line, in order:
//   - a line containing "Success rate is 0" marks the target unreachable;
//     scanning continues in case a later echo batch succeeded.
//   - any other "Success rate is" line carries the min/avg/max triple in
//     field 9 ("1/2/4"); the middle element is the value. A line too short,
//     or a field with no slash, yields the no-data sentinel. Scanning stops.
//
// A transcript with no success-rate line at all yields the no-data sentinel.
func ParseTranscript(transcript string) latency.Value {
	v := latency.NoData
	for _, line := range strings.Split(transcript, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.Contains(line, "Success rate is 0") {
			v = latency.Unreachable
			continue
		}
		if strings.Contains(line, "Success rate is") {
			v = latency.NoData
			// Split on single spaces, not field runs: the IOS rate line is
			// single-spaced and field 9 is the min/avg/max triple.
			fields := strings.Split(line, " ")
			if len(fields) > 9 {
				if triple := strings.Split(fields[9], "/"); len(triple) > 1 {
					v = latency.Value(triple[1])
				}
			}
			break
		}
	}
	return v
}
