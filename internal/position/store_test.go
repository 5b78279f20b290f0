package position

import (
	"path/filepath"
	"testing"

	"tradepipe/internal/message"
)

func TestStoreLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "open_positions.json"))
	positions, err := store.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(positions) != 0 {
		t.Fatalf("expected empty book for missing file, got %d", len(positions))
	}
}

func TestStoreAppendAndSave(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "open_positions.json"))

	pos := message.ExecutionReport{
		SizedOrder: message.SizedOrder{
			Order:        message.Order{Asset: "BTC/USDT", Side: message.SideLong},
			PositionSize: 20,
			Entry:        100,
			StopLoss:     95,
			TakeProfit:   110,
		},
		OrderID: "order-1",
		Status:  message.StatusFilled,
	}
	if err := store.Append(pos); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	positions, err := store.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(positions) != 1 || positions[0].OrderID != "order-1" {
		t.Fatalf("unexpected book after append: %+v", positions)
	}

	if err := store.Save(nil); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	positions, err = store.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(positions) != 0 {
		t.Fatalf("expected cleared book, got %d", len(positions))
	}
}

func TestStoreUpdateKeepsFillAppendedMidCycle(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "open_positions.json"))

	first := longPosition()
	first.OrderID = "order-a"
	if err := store.Append(first); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	// A poll cycle snapshots the book, then a fill lands before the cycle
	// writes back its closures.
	snapshot, err := store.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(snapshot) != 1 {
		t.Fatalf("expected one position in snapshot, got %d", len(snapshot))
	}

	second := longPosition()
	second.OrderID = "order-b"
	if err := store.Append(second); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	closed := map[string]bool{"order-a": true}
	err = store.Update(func(current []message.ExecutionReport) []message.ExecutionReport {
		open := current[:0]
		for _, pos := range current {
			if !closed[pos.OrderID] {
				open = append(open, pos)
			}
		}
		return open
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	positions, err := store.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(positions) != 1 || positions[0].OrderID != "order-b" {
		t.Fatalf("expected mid-cycle fill to survive the close, got %+v", positions)
	}
}

func TestStoreSaveRejectsNothingOnBadDir(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing", "positions.json"))
	if err := store.Save([]message.ExecutionReport{{}}); err == nil {
		t.Fatalf("expected error saving into missing directory")
	}
}
