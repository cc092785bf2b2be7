// Package relay lets a freshly started sidebar instance absorb the
// current alert map from a sibling instead of waiting for new alerts to
// rebuild it. This is a pure catch-up mechanism, not a merge: an
// instance that already holds alerts keeps what it computed.
package relay

import (
	"encoding/json"

	"github.com/b/zj-sidebar/pkg/alerts"
)

// Relay bridges the alert engine and the sibling broadcast channel.
type Relay struct {
	engine *alerts.Engine
}

func New(engine *alerts.Engine) *Relay {
	return &Relay{engine: engine}
}

// OnBroadcast applies an incoming alert map verbatim, but only when the
// local map is empty. Undecodable payloads are dropped. The return value
// tells the caller whether to arm the tick timer so decay and flashing
// continue locally.
func (r *Relay) OnBroadcast(payload []byte) bool {
	if !r.engine.Empty() {
		return false
	}
	var m map[int]alerts.State
	if err := json.Unmarshal(payload, &m); err != nil {
		return false
	}
	if len(m) == 0 {
		return false
	}
	r.engine.Restore(m)
	return !r.engine.Empty()
}

// Frame serializes the current alert map for emission to siblings. ok is
// false when there is nothing live to send; ticks with an empty map stay
// silent.
func (r *Relay) Frame() (data []byte, ok bool) {
	if r.engine.Empty() {
		return nil, false
	}
	data, err := json.Marshal(r.engine.Snapshot())
	if err != nil {
		return nil, false
	}
	return data, true
}
