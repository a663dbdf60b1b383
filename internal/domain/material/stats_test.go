package material

import (
	"testing"
	"time"
)

func TestComputeHistory(t *testing.T) {
	records := []Record{
		{ItemCode: "TI00040", ItemName: "Drill Bit", TxP1: "10", TxDate: "2024-05-01"},
		{ItemCode: "TI00040", ItemName: "Drill Bit", TxP1: "20.5", TxDate: "2023/01/15"},
		{ItemCode: "TI00040", ItemName: "Drill Bit", TxP1: "0", TxDate: "garbage"},
		{ItemCode: "TI00040", ItemName: "Drill Bit", TxP1: "N/A", TxDate: "2024-12-31 08:00:00"},
	}

	s := ComputeHistory("TI00040", records)

	if s.Count != 4 {
		t.Errorf("Count = %d, want 4", s.Count)
	}
	if s.ItemName != "Drill Bit" {
		t.Errorf("ItemName = %q", s.ItemName)
	}
	if s.MinPrice == nil || *s.MinPrice != 10 {
		t.Errorf("MinPrice = %v, want 10", s.MinPrice)
	}
	if s.MaxPrice == nil || *s.MaxPrice != 20.5 {
		t.Errorf("MaxPrice = %v, want 20.5", s.MaxPrice)
	}
	if s.AvgPrice == nil || *s.AvgPrice != 15.25 {
		t.Errorf("AvgPrice = %v, want 15.25", s.AvgPrice)
	}
	if s.FirstTransaction == nil || !s.FirstTransaction.Equal(time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("FirstTransaction = %v", s.FirstTransaction)
	}
	if s.LastTransaction == nil || !s.LastTransaction.Equal(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("LastTransaction = %v", s.LastTransaction)
	}
}

func TestComputeHistory_Empty(t *testing.T) {
	s := ComputeHistory("NOPE123", nil)
	if s.Count != 0 || s.MinPrice != nil || s.FirstTransaction != nil {
		t.Errorf("unexpected stats for empty history: %+v", s)
	}
}

func TestRoundHalfUp(t *testing.T) {
	if got := roundHalfUp(2.345, 2); got != 2.35 {
		t.Errorf("roundHalfUp(2.345) = %v, want 2.35", got)
	}
	if got := roundHalfUp(10.0/3.0, 2); got != 3.33 {
		t.Errorf("roundHalfUp(10/3) = %v, want 3.33", got)
	}
}
