// Package aggregate merges the two partial signal streams (technical and
// sentiment) into combined per-asset records.
package aggregate

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"tradepipe/internal/message"
)

type record struct {
	ta          json.RawMessage
	sentiment   json.RawMessage
	taAt        time.Time
	sentimentAt time.Time
}

// Engine holds the latest signal per (asset, slot). One mutex guards every
// mutator and the periodic scan. Records are created on first sight of an
// asset and never deleted; each slot is last-write-wins.
type Engine struct {
	mu        sync.Mutex
	records   map[string]*record
	staleness time.Duration
	now       func() time.Time
}

// NewEngine builds an engine. A zero staleness window disables the
// staleness check, so once both slots fill, every scan re-emits the pair
// until a slot is overwritten or the process restarts.
func NewEngine(staleness time.Duration) *Engine {
	return &Engine{
		records:   make(map[string]*record),
		staleness: staleness,
		now:       time.Now,
	}
}

// UpdateTA overwrites the technical slot for the asset.
func (e *Engine) UpdateTA(asset string, raw json.RawMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec := e.record(asset)
	rec.ta = raw
	rec.taAt = e.now()
}

// UpdateSentiment overwrites the sentiment slot for the asset.
func (e *Engine) UpdateSentiment(asset string, raw json.RawMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec := e.record(asset)
	rec.sentiment = raw
	rec.sentimentAt = e.now()
}

func (e *Engine) record(asset string) *record {
	rec := e.records[asset]
	if rec == nil {
		rec = &record{}
		e.records[asset] = rec
	}
	return rec
}

// Combined snapshots every asset whose both slots are populated (and, when
// a staleness window is set, fresh enough). The scan holds the lock only to
// copy; callers publish after the snapshot, so broker I/O never blocks the
// consumer callbacks. The scan does not clear slots or mark records
// emitted.
func (e *Engine) Combined() []message.AggregatedSignal {
	e.mu.Lock()
	now := e.now()
	out := make([]message.AggregatedSignal, 0, len(e.records))
	for asset, rec := range e.records {
		if rec.ta == nil || rec.sentiment == nil {
			continue
		}
		if e.staleness > 0 {
			oldest := rec.taAt
			if rec.sentimentAt.Before(oldest) {
				oldest = rec.sentimentAt
			}
			if now.Sub(oldest) > e.staleness {
				continue
			}
		}
		out = append(out, message.AggregatedSignal{
			Asset:     asset,
			TA:        rec.ta,
			Sentiment: rec.sentiment,
			Timestamp: float64(now.UnixNano()) / float64(time.Second),
		})
	}
	e.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Asset < out[j].Asset })
	return out
}
