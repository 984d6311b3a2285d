package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"monosplit/internal/analysis"
	"monosplit/internal/config"
	"monosplit/internal/testutil"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), ".monosplit", "monosplit.db"), nil)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close database: %v", err)
		}
	})
	return db
}

func analyze(t *testing.T) *analysis.Result {
	t.Helper()
	tree := testutil.NewTree(t)
	tree.Pom("", testutil.Pom{Group: "com.acme", Artifact: "parent", Version: "1", Packaging: "pom"})
	tree.Pom("core", testutil.Pom{Artifact: "core", Parent: &testutil.Parent{Artifact: "parent"},
		Deps: []testutil.Dep{{Group: "com.acme", Artifact: "util"}}})
	tree.Pom("util", testutil.Pom{Artifact: "util", Parent: &testutil.Parent{Artifact: "parent"},
		Deps: []testutil.Dep{{Group: "com.acme", Artifact: "core"}}})
	tree.Pom("web", testutil.Pom{Artifact: "web", Packaging: "war", Parent: &testutil.Parent{Artifact: "parent"},
		Deps: []testutil.Dep{{Group: "com.acme", Artifact: "core"}}})

	cfg := config.DefaultConfig()
	cfg.Report.SourceScan = false
	res, err := analysis.Run(context.Background(), tree.Root, analysis.Options{Config: cfg})
	if err != nil {
		t.Fatalf("analysis.Run() error = %v", err)
	}
	return res
}

func TestDatabaseInitialization(t *testing.T) {
	db := setupTestDB(t)

	version, err := db.getSchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("Failed to get schema version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("Expected schema version %d, got %d", currentSchemaVersion, version)
	}
}

func TestReopenExistingDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")
	db, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := NewRunRepository(db).Save(ctx, analyze(t), 0); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	db.Close()

	db, err = Open(path, nil)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close()
	runs, err := NewRunRepository(db).List(ctx, 0)
	if err != nil || len(runs) != 1 {
		t.Fatalf("List() = %d runs, %v; want 1", len(runs), err)
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewRunRepository(db)
	res := analyze(t)

	saved, err := repo.Save(ctx, res, 3)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.Modules != 4 || saved.Edges != 3 || saved.Cycles != 1 || saved.Applications != 1 {
		t.Errorf("saved = %+v", saved)
	}

	got, err := repo.Get(ctx, res.RunID[:8])
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil || got.RunID != res.RunID {
		t.Fatalf("Get() = %+v, want run %s", got, res.RunID)
	}
	if got.Warnings != 3 || got.Root != res.Root {
		t.Errorf("Get() = %+v", got)
	}
	if !got.StartedAt.Equal(res.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, res.StartedAt)
	}

	mods, err := repo.Modules(ctx, res.RunID)
	if err != nil {
		t.Fatalf("Modules() error = %v", err)
	}
	if len(mods) != 4 {
		t.Fatalf("Modules() = %d rows, want 4", len(mods))
	}
	roles := map[string]string{}
	for _, m := range mods {
		roles[m.ArtifactID] = m.Role
	}
	if roles["web"] != "application" || roles["util"] != "exclusive" || roles["core"] != "high-fan-in" || roles["parent"] != "unreached" {
		t.Errorf("roles = %v", roles)
	}
	if mods[0].PomPath != filepath.Join("core", "pom.xml") {
		t.Errorf("first module path = %q, want repo-relative core/pom.xml", mods[0].PomPath)
	}

	cycles, err := repo.Cycles(ctx, res.RunID)
	if err != nil {
		t.Fatalf("Cycles() error = %v", err)
	}
	if len(cycles) != 1 || cycles[0] != "com.acme:core:1 -> com.acme:util:1 -> com.acme:core:1" {
		t.Errorf("Cycles() = %v", cycles)
	}
}

func TestGetMissingRun(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(setupTestDB(t))

	got, err := repo.Get(ctx, "does-not-exist")
	if err != nil || got != nil {
		t.Errorf("Get() = %v, %v; want nil, nil", got, err)
	}

	res := analyze(t)
	if _, err := repo.Save(ctx, res, 0); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	for _, pattern := range []string{"_", "%", res.RunID[:4] + "%", "________"} {
		got, err := repo.Get(ctx, pattern)
		if err != nil || got != nil {
			t.Errorf("Get(%q) = %v, %v; want nil, nil", pattern, got, err)
		}
	}
	if got, err := repo.Get(ctx, res.RunID[:4]); err != nil || got == nil || got.RunID != res.RunID {
		t.Errorf("Get(prefix) = %v, %v; want run %s", got, err, res.RunID)
	}
}

func TestListAndPrune(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(setupTestDB(t))
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []string
	for i := range 3 {
		res := analyze(t)
		res.StartedAt = base.Add(time.Duration(i) * time.Hour)
		if _, err := repo.Save(ctx, res, 0); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		ids = append(ids, res.RunID)
	}

	runs, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != ids[2] || runs[1].RunID != ids[1] {
		t.Errorf("List(2) returned wrong runs")
	}

	removed, err := repo.Prune(ctx, 1)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("Prune() removed %d, want 2", removed)
	}
	if n, err := repo.Count(ctx); err != nil || n != 1 {
		t.Errorf("Count() = %d, %v; want 1", n, err)
	}
	mods, err := repo.Modules(ctx, ids[0])
	if err != nil {
		t.Fatalf("Modules() error = %v", err)
	}
	if len(mods) != 0 {
		t.Errorf("pruned run still has %d modules", len(mods))
	}
}
