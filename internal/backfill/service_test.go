package backfill

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/angelmondragon/edqm-seeder/internal/watermark"
	"github.com/angelmondragon/edqm-seeder/pkg/config"
	pkgerrors "github.com/angelmondragon/edqm-seeder/pkg/errors"
	"github.com/angelmondragon/edqm-seeder/pkg/logger"
)

type fakeSink struct {
	uploads []string
	calls   map[string]int
	fail    bool
}

func newFakeSink() *fakeSink {
	return &fakeSink{calls: make(map[string]int)}
}

func (f *fakeSink) Upload(ctx context.Context, localPath, objectKey string) error {
	f.calls[objectKey]++
	if f.fail {
		return pkgerrors.New(pkgerrors.CodeSinkUnavailable, "bucket unreachable")
	}
	f.uploads = append(f.uploads, objectKey)
	return nil
}

func (f *fakeSink) LandingKey(entity, filename string) string {
	return "landing/" + entity + "/" + filename
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Generator: config.GeneratorConfig{
			NumCustomers: 25,
			NumProducts:  10,
			OrdersMin:    5,
			OrdersMax:    8,
			Seed:         7,
		},
		Chaos: config.ChaosConfig{ErrorRate: 0.1},
		Backfill: config.BackfillConfig{
			Days:    3,
			DataDir: t.TempDir(),
			EndDate: "2025-06-03",
		},
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "backfill-test", Output: io.Discard})
}

func newTestService(t *testing.T, cfg *config.Config, sink LandingSink) (*Service, *watermark.Store) {
	t.Helper()
	store := watermark.NewStore(filepath.Join(cfg.Backfill.DataDir, "watermark.txt"))
	svc, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     testLogger(),
		Sink:       sink,
		Watermarks: store,
		Now:        func() time.Time { return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc, store
}

func readDataset(t *testing.T, dir, name string) [][]string {
	t.Helper()
	file, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("opening %s: %v", name, err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("reading %s: %v", name, err)
	}
	return rows
}

func TestRunHappyPath(t *testing.T) {
	cfg := testConfig(t)
	sink := newFakeSink()
	svc, store := newTestService(t, cfg, sink)

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.DaysPersisted != 3 || result.DaysFailed != 0 {
		t.Fatalf("expected 3 persisted days, got %d persisted %d failed",
			result.DaysPersisted, result.DaysFailed)
	}
	for _, day := range result.Days {
		if day.State != DayPersisted {
			t.Fatalf("day %s ended in state %s", day.Date.Format("2006-01-02"), day.State)
		}
		if !day.Uploaded {
			t.Fatalf("day %s was not uploaded", day.Date.Format("2006-01-02"))
		}
		if day.Orders < cfg.Generator.OrdersMin {
			t.Fatalf("day %s produced %d orders, below the band",
				day.Date.Format("2006-01-02"), day.Orders)
		}
	}

	for _, name := range []string{
		"customers.csv", "products.csv",
		"orders_2025-06-01.csv", "orders_2025-06-02.csv", "orders_2025-06-03.csv",
	} {
		if _, err := os.Stat(filepath.Join(cfg.Backfill.DataDir, name)); err != nil {
			t.Fatalf("expected dataset %s: %v", name, err)
		}
	}
	if len(sink.uploads) != 5 {
		t.Fatalf("expected 5 uploads, got %d: %v", len(sink.uploads), sink.uploads)
	}

	if !result.WatermarkSet {
		t.Fatal("watermark not set after a clean run")
	}
	mark, found, err := store.Read()
	if err != nil || !found {
		t.Fatalf("reading watermark: found=%v err=%v", found, err)
	}
	if got := mark.Format("2006-01-02"); got != "2025-06-03" {
		t.Fatalf("watermark is %s, want 2025-06-03", got)
	}
}

func TestRunOrderIDsUniqueAcrossDays(t *testing.T) {
	cfg := testConfig(t)
	cfg.Chaos.ErrorRate = 0
	cfg.Backfill.Days = 5
	cfg.Backfill.EndDate = "2025-06-05"
	svc, _ := newTestService(t, cfg, nil)

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	seen := make(map[string]struct{})
	total := 0
	for day := 1; day <= 5; day++ {
		name := time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC).Format("orders_2006-01-02.csv")
		rows := readDataset(t, cfg.Backfill.DataDir, name)
		for _, row := range rows[1:] {
			if _, dup := seen[row[0]]; dup {
				t.Fatalf("order id %s repeated across days", row[0])
			}
			seen[row[0]] = struct{}{}
			total++
		}
	}
	if total != result.OrdersGenerated {
		t.Fatalf("persisted %d rows but result reports %d", total, result.OrdersGenerated)
	}
}

func TestRunSinkFailureIsPartialSuccess(t *testing.T) {
	cfg := testConfig(t)
	sink := newFakeSink()
	sink.fail = true
	svc, store := newTestService(t, cfg, sink)

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("sink failures must not fail the run: %v", err)
	}
	if !result.PartialSuccess() {
		t.Fatal("expected a partial-success result")
	}
	if result.SinkFailures != 5 {
		t.Fatalf("expected 5 sink failures, got %d", result.SinkFailures)
	}
	for key, calls := range sink.calls {
		if calls != 2 {
			t.Fatalf("upload of %s attempted %d times, want exactly one retry", key, calls)
		}
	}
	if !result.WatermarkSet {
		t.Fatal("local persistence succeeded, watermark should advance")
	}
	if _, found, _ := store.Read(); !found {
		t.Fatal("watermark file missing")
	}
}

func TestRunWithoutSinkStaysLocal(t *testing.T) {
	cfg := testConfig(t)
	svc, _ := newTestService(t, cfg, nil)

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.SinkFailures != 0 {
		t.Fatalf("no sink configured, got %d sink failures", result.SinkFailures)
	}
	for _, day := range result.Days {
		if day.Uploaded {
			t.Fatal("day reported uploaded without a sink")
		}
	}
}

func TestRunFailedDaySkipsWatermark(t *testing.T) {
	cfg := testConfig(t)
	cfg.Generator.OrdersMin = 0
	cfg.Generator.OrdersMax = 0
	svc, store := newTestService(t, cfg, nil)

	result, err := svc.Run(context.Background())
	if err == nil {
		t.Fatal("expected an error when every day fails")
	}
	if result.DaysFailed != 3 {
		t.Fatalf("expected 3 failed days, got %d", result.DaysFailed)
	}
	if result.WatermarkSet {
		t.Fatal("watermark must not advance after failures")
	}
	if _, found, readErr := store.Read(); found || readErr != nil {
		t.Fatalf("watermark file should not exist: found=%v err=%v", found, readErr)
	}
}

func TestRunDeterministicWithFixedSeed(t *testing.T) {
	first := testConfig(t)
	second := testConfig(t)

	for _, cfg := range []*config.Config{first, second} {
		svc, _ := newTestService(t, cfg, nil)
		if _, err := svc.Run(context.Background()); err != nil {
			t.Fatalf("run failed: %v", err)
		}
	}

	for _, name := range []string{"customers.csv", "products.csv", "orders_2025-06-02.csv"} {
		a, err := os.ReadFile(filepath.Join(first.Backfill.DataDir, name))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		b, err := os.ReadFile(filepath.Join(second.Backfill.DataDir, name))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		if !bytes.Equal(a, b) {
			t.Fatalf("%s differs between identically seeded runs", name)
		}
	}
}

func TestRunRejectsMalformedEndDate(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backfill.EndDate = "June 3rd"
	svc, _ := newTestService(t, cfg, nil)

	_, err := svc.Run(context.Background())
	if err == nil {
		t.Fatal("expected an error for a malformed end date")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected a validation error, got %v", err)
	}
}

func TestNewServiceRequiresCoreDependencies(t *testing.T) {
	cfg := testConfig(t)
	store := watermark.NewStore(filepath.Join(cfg.Backfill.DataDir, "watermark.txt"))

	if _, err := NewService(ServiceParams{Logger: testLogger(), Watermarks: store}); err == nil {
		t.Fatal("expected an error without config")
	}
	if _, err := NewService(ServiceParams{Config: cfg, Watermarks: store}); err == nil {
		t.Fatal("expected an error without logger")
	}
	if _, err := NewService(ServiceParams{Config: cfg, Logger: testLogger()}); err == nil {
		t.Fatal("expected an error without a watermark store")
	}
}
