package history_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/raysh454/vexora/internal/history"
	"github.com/raysh454/vexora/internal/model"
	"github.com/raysh454/vexora/internal/testutil"
)

func openTestStore(t *testing.T, maxItems int) *history.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	s, err := history.New(db, history.DriverSQLite, maxItems, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("history.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SaveGetList(t *testing.T) {
	t.Parallel()
	s := openTestStore(t, 0)
	ctx := context.Background()

	first, err := s.Save(ctx, model.KindURL, "https://example.org", testutil.SampleResult(model.StatusSafe, 100))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := s.Save(ctx, model.KindImage, "photo.png", testutil.SampleResult(model.StatusWarning, 72.5))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("ids should be unique: %q %q", first.ID, second.ID)
	}

	got, err := s.Get(ctx, second.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Kind != model.KindImage || got.Input != "photo.png" {
		t.Errorf("got %+v", got)
	}
	if got.Result.Status != model.StatusWarning || got.Result.Confidence != 72.5 {
		t.Errorf("result round trip: %+v", got.Result)
	}
	if len(got.Result.RiskFactors) != 1 || got.Result.Metadata[0].Value != "example.org" {
		t.Errorf("result body lost: %+v", got.Result)
	}

	items, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 || items[0].ID != second.ID || items[1].ID != first.ID {
		t.Fatalf("expected newest first, got %v", ids(items))
	}
}

func ids(items []*model.HistoryItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestStore_TrimsToMaxItems(t *testing.T) {
	t.Parallel()
	s := openTestStore(t, 3)
	ctx := context.Background()

	var saved []*model.HistoryItem
	for i := 0; i < 5; i++ {
		it, err := s.Save(ctx, model.KindURL, "u", testutil.SampleResult(model.StatusSafe, float64(i)))
		if err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
		saved = append(saved, it)
	}

	items, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].ID != saved[4].ID || items[2].ID != saved[2].ID {
		t.Errorf("kept the wrong items: %v", ids(items))
	}
	if _, err := s.Get(ctx, saved[0].ID); !errors.Is(err, history.ErrNotFound) {
		t.Errorf("oldest item should be gone, got %v", err)
	}
}

func TestStore_ListLimitAndClear(t *testing.T) {
	t.Parallel()
	s := openTestStore(t, 0)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		if _, err := s.Save(ctx, model.KindText, "some message text", testutil.SampleResult(model.StatusSafe, 95)); err != nil {
			t.Fatal(err)
		}
	}
	items, err := s.List(ctx, 2)
	if err != nil || len(items) != 2 {
		t.Fatalf("List(2) = %d items, %v", len(items), err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	items, err = s.List(ctx, 0)
	if err != nil || len(items) != 0 {
		t.Fatalf("after Clear: %d items, %v", len(items), err)
	}
}

func TestStore_RejectsBadInput(t *testing.T) {
	t.Parallel()
	s := openTestStore(t, 0)
	if _, err := s.Save(context.Background(), model.Kind("audio"), "x", testutil.SampleResult(model.StatusSafe, 1)); !errors.Is(err, history.ErrInvalidKind) {
		t.Errorf("expected ErrInvalidKind, got %v", err)
	}
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, history.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("a", 120)
	if got := history.Summarize(model.KindText, long); got != strings.Repeat("a", 100)+"..." {
		t.Errorf("long text summary = %q", got)
	}
	if got := history.Summarize(model.KindText, "short"); got != "short" {
		t.Errorf("short text summary = %q", got)
	}
	if got := history.Summarize(model.KindURL, long); got != long {
		t.Errorf("urls must not be shortened")
	}
	if got := history.Summarize(model.KindText, strings.Repeat("é", 101)); got != strings.Repeat("é", 100)+"..." {
		t.Errorf("multibyte summary = %q", got)
	}
}

func TestStore_SavedTextIsSummarized(t *testing.T) {
	t.Parallel()
	s := openTestStore(t, 0)
	it, err := s.Save(context.Background(), model.KindText, strings.Repeat("b", 150), testutil.SampleResult(model.StatusSafe, 95))
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(context.Background(), it.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Input) != 103 {
		t.Errorf("stored input length = %d, want 103", len(got.Input))
	}
}

func TestStore_Compare(t *testing.T) {
	t.Parallel()
	s := openTestStore(t, 0)
	ctx := context.Background()

	before := testutil.SampleResult(model.StatusSafe, 100)
	after := testutil.SampleResult(model.StatusDanger, 96.6)
	after.RiskFactors = []model.RiskFactor{{Severity: model.SeverityHigh, Description: "Website appears unreachable or domain does not exist"}}

	a, _ := s.Save(ctx, model.KindURL, "https://example.org", before)
	b, _ := s.Save(ctx, model.KindURL, "https://example.org", after)

	cmp, err := s.Compare(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if cmp.Summary != "status changed from safe to danger" {
		t.Errorf("summary = %q", cmp.Summary)
	}
	if cmp.ConfidenceDelta > -3.3 || cmp.ConfidenceDelta < -3.5 {
		t.Errorf("confidence delta = %v", cmp.ConfidenceDelta)
	}
	var added, removed string
	for _, c := range cmp.Chunks {
		switch c.Type {
		case "added":
			added += c.Content
		case "removed":
			removed += c.Content
		}
	}
	if !strings.Contains(added, "risk [high] Website appears unreachable") {
		t.Errorf("added = %q", added)
	}
	if !strings.Contains(removed, "status: safe") {
		t.Errorf("removed = %q", removed)
	}
	if strings.Contains(added+removed, "meta domain") {
		t.Errorf("unchanged lines reported: %+v", cmp.Chunks)
	}

	same, err := s.Compare(ctx, a.ID, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if same.Changed() || same.Summary != "no changes" {
		t.Errorf("self comparison = %+v", same)
	}

	if _, err := s.Compare(ctx, a.ID, "nope"); !errors.Is(err, history.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	t.Parallel()
	_, err := history.Open(context.Background(), history.Config{Driver: "oracle", DSN: "x"}, &testutil.DummyLogger{})
	if !errors.Is(err, history.ErrUnknownDriver) {
		t.Fatalf("expected ErrUnknownDriver, got %v", err)
	}
}

func TestOpen_SQLiteFile(t *testing.T) {
	t.Parallel()
	dsn := "file:" + t.TempDir() + "/history.db"
	s, err := history.Open(context.Background(), history.Config{Driver: history.DriverSQLite, DSN: dsn}, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if _, err := s.Save(context.Background(), model.KindVideo, "clip.mp4", testutil.SampleResult(model.StatusSafe, 90)); err != nil {
		t.Fatalf("Save: %v", err)
	}
}
