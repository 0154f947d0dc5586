package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"planeja/internal/kv"
)

// Snapshot is the board content: the last analysis and when it finished.
type Snapshot struct {
	Insights    []Insight `json:"insights"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Board persists the latest insights under kv.KeyInsights. Writes are not
// coordinated: whichever analysis finishes last wins.
type Board struct {
	kv kv.Store
}

func NewBoard(store kv.Store) *Board {
	return &Board{kv: store}
}

// Latest returns the stored snapshot, or an empty one if none was written.
func (b *Board) Latest(ctx context.Context) (Snapshot, error) {
	data, err := b.kv.Get(ctx, kv.KeyInsights)
	if errors.Is(err, kv.ErrNotFound) {
		return Snapshot{Insights: []Insight{}}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load insights: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode insights: %w", err)
	}
	if snap.Insights == nil {
		snap.Insights = []Insight{}
	}
	return snap, nil
}

func (b *Board) Publish(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode insights: %w", err)
	}
	if err := b.kv.Set(ctx, kv.KeyInsights, data); err != nil {
		return fmt.Errorf("persist insights: %w", err)
	}
	return nil
}
