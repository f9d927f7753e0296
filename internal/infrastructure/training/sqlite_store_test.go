package training

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nekrovoice/nekro-go/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "training.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func record(text, commandType string, success bool, at time.Time) domain.CommandRecord {
	return domain.CommandRecord{
		Text:      text,
		Type:      commandType,
		Success:   success,
		Timestamp: at,
		Context:   "morning_monday",
	}
}

func TestInsertAndRecentSuccessfulOrder(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	for i, text := range []string{"call mom", "open maps", "call dad"} {
		if err := store.Insert(record(text, "call", true, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
	if err := store.Insert(record("frobnicate", "unknown", false, base.Add(time.Hour))); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	records, err := store.RecentSuccessful(2)
	if err != nil {
		t.Fatalf("RecentSuccessful() error = %v", err)
	}
	var got []string
	for _, rec := range records {
		got = append(got, rec.Text)
	}
	want := []string{"call dad", "open maps"} // newest first, failures excluded
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("RecentSuccessful mismatch (-want +got):\n%s", diff)
	}
}

func TestRecentSuccessfulSubsecondOrder(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2026, 3, 2, 10, 0, 0, 500000000, time.UTC)

	// the second record is newer by 10ms; trailing-zero trimming in the
	// stored text must not flip the order
	store.Insert(record("older", "call", true, base))
	store.Insert(record("newer", "call", true, base.Add(10*time.Millisecond)))

	records, err := store.RecentSuccessful(1)
	if err != nil {
		t.Fatalf("RecentSuccessful() error = %v", err)
	}
	if len(records) != 1 || records[0].Text != "newer" {
		t.Fatalf("RecentSuccessful(1) = %+v, want the newer record", records)
	}

	removed, err := store.DeleteOlderThan(base.Add(5 * time.Millisecond))
	if err != nil {
		t.Fatalf("DeleteOlderThan() error = %v", err)
	}
	if removed != 1 {
		t.Fatalf("DeleteOlderThan() removed %d rows, want 1", removed)
	}
}

func TestRecentIncludesFailures(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	store.Insert(record("call mom", "call", true, base))
	store.Insert(record("frobnicate", "unknown", false, base.Add(time.Minute)))

	records, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(records) != 2 || records[0].Text != "frobnicate" || records[0].Success {
		t.Fatalf("Recent() = %+v", records)
	}
}

func TestRecentByTypeFiltersUnknown(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	store.Insert(record("call mom", "call", true, base))
	store.Insert(record("frobnicate", "unknown", false, base.Add(time.Minute)))
	store.Insert(record("defrag the cat", "unknown", false, base.Add(2*time.Minute)))

	records, err := store.RecentByType("unknown", 10)
	if err != nil {
		t.Fatalf("RecentByType() error = %v", err)
	}
	if len(records) != 2 || records[0].Text != "defrag the cat" {
		t.Fatalf("RecentByType(unknown) = %+v", records)
	}
}

func TestSetFeedbackHitsMostRecentOnly(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	store.Insert(record("call mom", "call", true, base))
	store.Insert(record("call mom", "call", true, base.Add(time.Minute)))

	if err := store.SetFeedback("call mom", domain.FeedbackPositive); err != nil {
		t.Fatalf("SetFeedback() error = %v", err)
	}

	records, err := store.RecentSuccessful(10)
	if err != nil {
		t.Fatalf("RecentSuccessful() error = %v", err)
	}
	if records[0].Feedback != domain.FeedbackPositive {
		t.Errorf("newest record feedback = %d, want positive", records[0].Feedback)
	}
	if records[1].Feedback != domain.FeedbackNone {
		t.Errorf("older record feedback = %d, want none", records[1].Feedback)
	}
}

func TestSetFeedbackMissingTextIsNoop(t *testing.T) {
	store := newTestStore(t)
	if err := store.SetFeedback("never seen", domain.FeedbackNegative); err != nil {
		t.Fatalf("SetFeedback() on missing text error = %v", err)
	}
}

func TestCounts(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	store.Insert(record("a", "call", true, base))
	store.Insert(record("b", "call", true, base))
	store.Insert(record("c", "call", true, base))
	store.Insert(record("d", "unknown", false, base))

	total, err := store.CountAll()
	if err != nil || total != 4 {
		t.Fatalf("CountAll() = %d, %v; want 4", total, err)
	}
	success, err := store.CountSuccessful()
	if err != nil || success != 3 {
		t.Fatalf("CountSuccessful() = %d, %v; want 3", success, err)
	}
}

func TestTeachOverwritesAndLookup(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	if err := store.Teach(domain.TaughtCommand{Command: "play jazz", Action: "music", TaughtAt: now}); err != nil {
		t.Fatalf("Teach() error = %v", err)
	}
	if err := store.Teach(domain.TaughtCommand{Command: "play jazz", Action: "jazz_playlist", TaughtAt: now}); err != nil {
		t.Fatalf("Teach() retrain error = %v", err)
	}

	action, found, err := store.LookupTaught("play jazz")
	if err != nil {
		t.Fatalf("LookupTaught() error = %v", err)
	}
	if !found || action != "jazz_playlist" {
		t.Fatalf("LookupTaught() = %q, %v; want jazz_playlist, true", action, found)
	}

	if _, found, _ := store.LookupTaught("never taught"); found {
		t.Fatal("LookupTaught() on missing key reported found")
	}

	n, err := store.TaughtCount()
	if err != nil || n != 1 {
		t.Fatalf("TaughtCount() = %d, %v; want 1", n, err)
	}
}

func TestFrequencyIncrementAndTop(t *testing.T) {
	store := newTestStore(t)

	bump := func(command string, times int) {
		for i := 0; i < times; i++ {
			if err := store.IncrementFrequency(command); err != nil {
				t.Fatalf("IncrementFrequency() error = %v", err)
			}
		}
	}
	bump("call mom", 3)
	bump("what time is it", 2)
	bump("open maps", 2)
	bump("weather", 1)

	entries, err := store.TopFrequent(3)
	if err != nil {
		t.Fatalf("TopFrequent() error = %v", err)
	}
	want := []domain.FrequencyEntry{
		{Command: "call mom", Count: 3},
		{Command: "open maps", Count: 2}, // tie broken by command text
		{Command: "what time is it", Count: 2},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Fatalf("TopFrequent mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteOlderThan(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	store.Insert(record("old one", "call", true, base))
	store.Insert(record("old two", "call", true, base.Add(time.Hour)))
	store.Insert(record("fresh", "call", true, base.Add(60*24*time.Hour)))

	removed, err := store.DeleteOlderThan(base.Add(2 * time.Hour))
	if err != nil {
		t.Fatalf("DeleteOlderThan() error = %v", err)
	}
	if removed != 2 {
		t.Fatalf("DeleteOlderThan() removed %d rows, want 2", removed)
	}
	total, _ := store.CountAll()
	if total != 1 {
		t.Fatalf("CountAll() after prune = %d, want 1", total)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "training.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	store.Insert(record("call mom", "call", true, time.Now()))
	store.Teach(domain.TaughtCommand{Command: "frobnicate the widget", Action: "custom", TaughtAt: time.Now()})
	store.IncrementFrequency("call mom")
	store.Close()

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	total, _ := reopened.CountAll()
	if total != 1 {
		t.Errorf("CountAll() after reopen = %d, want 1", total)
	}
	if _, found, _ := reopened.LookupTaught("frobnicate the widget"); !found {
		t.Error("taught command lost across reopen")
	}
	entries, _ := reopened.TopFrequent(1)
	if len(entries) != 1 || entries[0].Count != 1 {
		t.Errorf("TopFrequent() after reopen = %+v", entries)
	}
}
