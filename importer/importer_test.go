package importer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ravenmed/terminology-api/dictionaryparser/entities"
	"github.com/ravenmed/terminology-api/logging"
	"github.com/ravenmed/terminology-api/store"
)

func TestMain(m *testing.M) {
	logging.InitLogger("")
	os.Exit(m.Run())
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func meddraFiles(t *testing.T) map[string]string {
	t.Helper()
	dir := t.TempDir()
	contents := map[string]string{
		"soc": "10000001$Cardiac disorders$\n" +
			"10000002$Vascular disorders$\n",
		"hlgt": "20000001$Cardiac arrhythmias$\n",
		"hlt":  "30000001$Rate and rhythm disorders NEC$\n",
		"pt":   "10042772$Tachycardia$$10000001$\n",
		"llt": "10049001$Heart racing$10042772$$$$$$$Y$\n" +
			"10049002$Racing heart$10042772$$$$$$$N$\n",
		"soc_hlgt": "10000001$20000001$\n",
		"hlgt_hlt": "20000001$30000001$\n",
		"hlt_pt":   "30000001$10042772$\n",
	}

	files := make(map[string]string, len(contents))
	for key, content := range contents {
		path := filepath.Join(dir, key+".asc")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", key, err)
		}
		files[key] = path
	}
	return files
}

func whodrugFiles(t *testing.T) map[string]string {
	t.Helper()
	dir := t.TempDir()
	contents := map[string]string{
		"atc": "A|Alimentary tract and metabolism\n" +
			"A10|Drugs used in diabetes\n" +
			"A10B|Blood glucose lowering drugs\n" +
			"A10BA|Biguanides\n" +
			"A10BA02|Metformin\n",
		"ingredient": "1001|Metformin\n",
		"product": "5001|Glucophage 500mg|A10BA02\n" +
			"5002|Metformin Mylan|A10BA02\n",
		"product_ingredient": "5001|1001\n" +
			"5002|1001\n",
	}

	files := make(map[string]string, len(contents))
	for key, content := range contents {
		path := filepath.Join(dir, key+".txt")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", key, err)
		}
		files[key] = path
	}
	return files
}

func waitForDone(t *testing.T, i *Importer) *entities.ImportProgress {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if p := i.Progress(); p != nil && p.Done {
			return p
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Import did not finish in time")
	return nil
}

func TestImportMeddraRoundTrip(t *testing.T) {
	s := newTestStore(t)
	i := NewImporter(s, 0)

	version, err := i.Start(entities.ImportRequest{
		Dictionary: entities.DictionaryMedDRA,
		Label:      "MedDRA 27.0",
		ImportedBy: "tester",
		Files:      meddraFiles(t),
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if version.Status != entities.VersionProvisioning {
		t.Errorf("Expected provisioning status at start, got %s", version.Status)
	}

	progress := waitForDone(t, i)
	if progress.Error != "" {
		t.Fatalf("Import failed: %s", progress.Error)
	}
	if progress.FilesProcessed != 8 {
		t.Errorf("Expected 8 files processed, got %d", progress.FilesProcessed)
	}
	// 7 term rows plus 3 relationship rows
	if progress.RecordsLoaded != 10 {
		t.Errorf("Expected 10 records loaded, got %d", progress.RecordsLoaded)
	}
	if i.Running() {
		t.Error("Expected the import slot to be released")
	}

	loaded, err := s.GetVersionByID(version.ID)
	if err != nil {
		t.Fatalf("Failed to fetch version: %v", err)
	}
	if loaded.Status != entities.VersionLoaded {
		t.Errorf("Expected loaded status, got %s", loaded.Status)
	}
	if loaded.TermCount != 7 || loaded.LeafCount != 2 {
		t.Errorf("Unexpected counts: %d terms, %d leaves", loaded.TermCount, loaded.LeafCount)
	}
	if loaded.Active {
		t.Error("Import must never activate the version itself")
	}

	// The loaded hierarchy is browsable once activated.
	if err := s.ActivateVersion(version.ID); err != nil {
		t.Fatalf("Failed to activate: %v", err)
	}
	nodes, err := s.Browse(entities.DictionaryMedDRA, "10042772", entities.LevelPT, 0)
	if err != nil {
		t.Fatalf("Browse failed: %v", err)
	}
	if len(nodes) != 2 {
		t.Errorf("Expected 2 LLT children, got %d", len(nodes))
	}
}

func TestImportWhodrugRoundTrip(t *testing.T) {
	s := newTestStore(t)
	i := NewImporter(s, 0)

	version, err := i.Start(entities.ImportRequest{
		Dictionary: entities.DictionaryWhoDrug,
		Label:      "WHODrug 2024 Mar",
		Files:      whodrugFiles(t),
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	progress := waitForDone(t, i)
	if progress.Error != "" {
		t.Fatalf("Import failed: %s", progress.Error)
	}
	if progress.FilesProcessed != 4 {
		t.Errorf("Expected 4 files processed, got %d", progress.FilesProcessed)
	}
	if progress.RecordsLoaded != 10 {
		t.Errorf("Expected 10 records loaded, got %d", progress.RecordsLoaded)
	}

	loaded, err := s.GetVersionByID(version.ID)
	if err != nil {
		t.Fatalf("Failed to fetch version: %v", err)
	}
	if loaded.TermCount != 8 || loaded.LeafCount != 2 {
		t.Errorf("Unexpected counts: %d terms, %d leaves", loaded.TermCount, loaded.LeafCount)
	}
}

func TestImportCountsSkippedLines(t *testing.T) {
	s := newTestStore(t)
	i := NewImporter(s, 0)

	files := meddraFiles(t)
	broken := filepath.Join(t.TempDir(), "soc.asc")
	if err := os.WriteFile(broken, []byte("10000001$Cardiac disorders$\nnot-a-code$Broken$\n"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	files["soc"] = broken

	if _, err := i.Start(entities.ImportRequest{
		Dictionary: entities.DictionaryMedDRA,
		Label:      "27.0",
		Files:      files,
	}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	progress := waitForDone(t, i)
	if progress.Error != "" {
		t.Fatalf("Import failed: %s", progress.Error)
	}
	if progress.SkippedLines != 1 {
		t.Errorf("Expected 1 skipped line, got %d", progress.SkippedLines)
	}
}

func TestImportValidationFailsBeforeAnyWrite(t *testing.T) {
	s := newTestStore(t)
	i := NewImporter(s, 0)

	files := meddraFiles(t)
	delete(files, "llt")

	tests := []struct {
		name string
		req  entities.ImportRequest
	}{
		{"unknown dictionary", entities.ImportRequest{Dictionary: "icd10", Label: "x", Files: files}},
		{"missing label", entities.ImportRequest{Dictionary: entities.DictionaryMedDRA, Files: files}},
		{"missing file key", entities.ImportRequest{Dictionary: entities.DictionaryMedDRA, Label: "x", Files: files}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := i.Start(tt.req); err == nil {
				t.Fatal("Expected validation error")
			}
		})
	}

	versions, err := s.ListVersions("")
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}
	if len(versions) != 0 {
		t.Errorf("Rejected requests must leave no version row, found %d", len(versions))
	}
	if i.Running() {
		t.Error("Rejected requests must not hold the import slot")
	}
}

func TestImportUnreadableFileFailsBeforeAnyWrite(t *testing.T) {
	s := newTestStore(t)
	i := NewImporter(s, 0)

	files := meddraFiles(t)
	files["llt"] = filepath.Join(t.TempDir(), "does-not-exist.asc")

	if _, err := i.Start(entities.ImportRequest{
		Dictionary: entities.DictionaryMedDRA,
		Label:      "27.0",
		Files:      files,
	}); err == nil {
		t.Fatal("Expected an error for the unreadable file")
	}

	versions, _ := s.ListVersions("")
	if len(versions) != 0 {
		t.Errorf("Expected no version row, found %d", len(versions))
	}
}

func TestImportRejectsConcurrentStart(t *testing.T) {
	s := newTestStore(t)
	i := NewImporter(s, 0)

	// Hold the slot the way a running import would.
	if !i.tracker.begin(entities.ImportProgress{Dictionary: entities.DictionaryMedDRA}) {
		t.Fatal("Failed to claim the import slot")
	}
	defer i.tracker.finish(entities.ImportProgress{})

	_, err := i.Start(entities.ImportRequest{
		Dictionary: entities.DictionaryMedDRA,
		Label:      "27.0",
		Files:      meddraFiles(t),
	})
	if err != ErrImportInFlight {
		t.Fatalf("Expected ErrImportInFlight, got %v", err)
	}
}

func TestProgressBeforeAnyImport(t *testing.T) {
	i := NewImporter(newTestStore(t), 0)

	if p := i.Progress(); p != nil {
		t.Errorf("Expected nil progress before any import, got %+v", p)
	}
	if i.Running() {
		t.Error("Expected no import in flight")
	}
}

func TestRequiredFiles(t *testing.T) {
	meddra := RequiredFiles(entities.DictionaryMedDRA)
	if len(meddra) != 8 || meddra[0] != "soc" || meddra[7] != "hlt_pt" {
		t.Errorf("Unexpected MedDRA file order: %v", meddra)
	}
	whodrug := RequiredFiles(entities.DictionaryWhoDrug)
	if len(whodrug) != 4 || whodrug[0] != "atc" {
		t.Errorf("Unexpected WHO Drug file order: %v", whodrug)
	}
}

func TestProgressTrackerLifecycle(t *testing.T) {
	var tracker progressTracker

	if !tracker.begin(entities.ImportProgress{Label: "a"}) {
		t.Fatal("Expected the first begin to claim the slot")
	}
	if tracker.begin(entities.ImportProgress{Label: "b"}) {
		t.Error("Expected a second begin to be refused")
	}
	if !tracker.isRunning() {
		t.Error("Expected running while claimed")
	}

	tracker.update(entities.ImportProgress{Label: "a", FilesProcessed: 3})
	if p := tracker.snapshot(); p.FilesProcessed != 3 || p.Done {
		t.Errorf("Unexpected snapshot: %+v", p)
	}

	tracker.finish(entities.ImportProgress{Label: "a", FilesProcessed: 8})
	if tracker.isRunning() {
		t.Error("Expected finish to release the slot")
	}
	if p := tracker.snapshot(); !p.Done {
		t.Error("Expected the terminal snapshot to be marked done")
	}
	if !tracker.begin(entities.ImportProgress{Label: "c"}) {
		t.Error("Expected the slot to be claimable again after finish")
	}
}
