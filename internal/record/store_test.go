package record

import (
	"errors"
	"testing"
	"time"
)

func testRecord(id string) Record {
	return Record{
		ID:        id,
		Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Category:  "trade_entry",
		Numeric:   map[string]float64{"confidence": 75},
	}
}

func TestAppendAndSnapshot(t *testing.T) {
	s := NewStore()
	if err := s.Append(testRecord("r1")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(testRecord("r2")); err != nil {
		t.Fatalf("append: %v", err)
	}

	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 records, got %d", len(snap))
	}
	if snap[0].ID != "r1" || snap[1].ID != "r2" {
		t.Fatalf("expected insertion order r1,r2, got %s,%s", snap[0].ID, snap[1].ID)
	}
}

func TestAppendRejectsMissingID(t *testing.T) {
	s := NewStore()
	r := testRecord("")
	err := s.Append(r)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "id" {
		t.Fatalf("expected id field, got %s", verr.Field)
	}
}

func TestAppendRejectsZeroTimestamp(t *testing.T) {
	s := NewStore()
	r := testRecord("r1")
	r.Timestamp = time.Time{}
	var verr *ValidationError
	if err := s.Append(r); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAppendRejectsDuplicateID(t *testing.T) {
	s := NewStore()
	if err := s.Append(testRecord("r1")); err != nil {
		t.Fatalf("append: %v", err)
	}
	var verr *ValidationError
	if err := s.Append(testRecord("r1")); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError on duplicate, got %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 record after rejected duplicate, got %d", s.Len())
	}
}

func TestReplaceAllThenAppend(t *testing.T) {
	s := NewStore()
	if err := s.Append(testRecord("r1")); err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := s.ReplaceAll(nil); err != nil {
		t.Fatalf("replace: %v", err)
	}
	var got []Record
	for r := range s.All() {
		got = append(got, r)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty sequence after ReplaceAll(nil), got %d", len(got))
	}

	if err := s.Append(testRecord("r2")); err != nil {
		t.Fatalf("append after replace: %v", err)
	}
	got = nil
	for r := range s.All() {
		got = append(got, r)
	}
	if len(got) != 1 || got[0].ID != "r2" {
		t.Fatalf("expected [r2], got %v", got)
	}
}

func TestReplaceAllValidatesBeforeSwap(t *testing.T) {
	s := NewStore()
	if err := s.Append(testRecord("r1")); err != nil {
		t.Fatalf("append: %v", err)
	}

	bad := []Record{testRecord("r2"), testRecord("")}
	if err := s.ReplaceAll(bad); err == nil {
		t.Fatal("expected validation failure")
	}
	// The previous set must be intact.
	if s.Len() != 1 {
		t.Fatalf("expected old set preserved, got %d records", s.Len())
	}
	if s.Snapshot()[0].ID != "r1" {
		t.Fatal("expected r1 preserved")
	}
}

func TestReplaceAllRejectsDuplicateIDs(t *testing.T) {
	s := NewStore()
	if err := s.ReplaceAll([]Record{testRecord("r1"), testRecord("r1")}); err == nil {
		t.Fatal("expected duplicate id rejection")
	}
}

func TestAllIsRestartable(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"a", "b", "c"} {
		if err := s.Append(testRecord(id)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	seq := s.All()
	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}
	if first != 3 || second != 3 {
		t.Fatalf("expected both passes to see 3 records, got %d and %d", first, second)
	}
}

func TestAllSnapshotIsolatedFromReplace(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"a", "b"} {
		if err := s.Append(testRecord(id)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	seq := s.All()
	if err := s.ReplaceAll([]Record{testRecord("z")}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	// The iterator sees the fully-old set, never a mix.
	var ids []string
	for r := range seq {
		ids = append(ids, r.ID)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("expected old snapshot [a b], got %v", ids)
	}
}

func TestSnapshotCopiesRecords(t *testing.T) {
	s := NewStore()
	if err := s.Append(testRecord("r1")); err != nil {
		t.Fatalf("append: %v", err)
	}

	snap := s.Snapshot()
	snap[0].Numeric["confidence"] = -999

	if got := s.Snapshot()[0].Numeric["confidence"]; got != 75 {
		t.Fatalf("store mutated through snapshot: confidence=%f", got)
	}
}

func TestVersionAdvances(t *testing.T) {
	s := NewStore()
	v0 := s.Version()
	if err := s.Append(testRecord("r1")); err != nil {
		t.Fatalf("append: %v", err)
	}
	v1 := s.Version()
	if v1 == v0 {
		t.Fatal("expected version change on append")
	}
	if err := s.ReplaceAll(nil); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if s.Version() == v1 {
		t.Fatal("expected version change on replace")
	}
}

func TestSchemaValidation(t *testing.T) {
	s := NewStoreWithSchemas(DefaultSchemas())

	r := testRecord("r1")
	r.Numeric["confidence"] = 140 // outside [0,100]
	var verr *ValidationError
	if err := s.Append(r); !errors.As(err, &verr) {
		t.Fatalf("expected schema violation, got %v", err)
	}

	ok := testRecord("r2")
	if err := s.Append(ok); err != nil {
		t.Fatalf("expected valid record accepted, got %v", err)
	}

	missing := testRecord("r3")
	delete(missing.Numeric, "confidence") // required by decision schema
	if err := s.Append(missing); !errors.As(err, &verr) {
		t.Fatalf("expected required-field violation, got %v", err)
	}
}

func TestUnknownCategoryBypassesSchemas(t *testing.T) {
	s := NewStoreWithSchemas(DefaultSchemas())
	r := testRecord("r1")
	r.Category = "custom_event"
	r.Numeric = map[string]float64{"anything": 1e9}
	if err := s.Append(r); err != nil {
		t.Fatalf("expected unknown category accepted, got %v", err)
	}
}
