package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stakeScope/internal/model"
)

func TestJsonlJournalAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal", "workflows.jsonl")
	journal := NewJsonlJournal(path)

	records := []model.JournalRecord{
		{
			Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			Workflow:  "stake",
			Address:   "0x2000000000000000000000000000000000000001",
			PoolID:    1,
			Amount:    "100",
			Status:    true,
			Message:   "Staked 100 into pool 1",
			TxHash:    "0xabc",
		},
		{
			Timestamp: time.Date(2024, 5, 1, 12, 5, 0, 0, time.UTC),
			Workflow:  "exchange",
			Address:   "0x2000000000000000000000000000000000000001",
			Amount:    "50",
			Status:    false,
			Message:   "Exchange failed",
		},
	}

	for _, rec := range records {
		if err := journal.Append(context.Background(), rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer file.Close()

	var got []model.JournalRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rec model.JournalRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("unmarshal line: %v", err)
		}
		got = append(got, rec)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(got))
	}
	if got[0].Workflow != "stake" || got[0].TxHash != "0xabc" || !got[0].Status {
		t.Fatalf("first record mismatch: %+v", got[0])
	}
	if got[1].Workflow != "exchange" || got[1].Status {
		t.Fatalf("second record mismatch: %+v", got[1])
	}
}
