// Package engine holds the pieces shared by the day and night check-in
// machines: the save retry discipline both orchestrators follow.
package engine

import "time"

// Save retry policy: one initial attempt plus up to MaxSaveRetries retries,
// backing off exponentially between attempts.
const (
	MaxSaveRetries  = 3
	BaseSaveBackoff = time.Second
)

// SaveBackoff returns the delay before the given retry (1-based): 1s, 2s, 4s.
func SaveBackoff(retry int) time.Duration {
	if retry < 1 {
		retry = 1
	}
	return BaseSaveBackoff * time.Duration(1<<(retry-1))
}
