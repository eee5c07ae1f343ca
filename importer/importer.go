// Package importer loads dictionary distribution releases into versioned
// storage. Imports are asynchronous and exclusive: one runs at a time, the
// caller gets the provisioning version row back immediately and polls
// progress snapshots until done.
package importer

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ravenmed/terminology-api/dictionaryparser/entities"
	"github.com/ravenmed/terminology-api/interfaces"
	"github.com/ravenmed/terminology-api/logging"
	"github.com/ravenmed/terminology-api/metrics"
	"github.com/ravenmed/terminology-api/store"
)

// Compile-time check to ensure Importer implements the import interface
var _ interfaces.Importer = (*Importer)(nil)

// ErrImportInFlight is returned when a second import is started while one
// is still running.
var ErrImportInFlight = errors.New("an import is already running")

// File keys in load order. Term files strictly precede relationship files:
// relationship rows reference term codes by value.
var (
	meddraFileOrder  = []string{"soc", "hlgt", "hlt", "pt", "llt", "soc_hlgt", "hlgt_hlt", "hlt_pt"}
	whodrugFileOrder = []string{"atc", "ingredient", "product", "product_ingredient"}
)

var meddraTermLevels = map[string]entities.Level{
	"soc":  entities.LevelSOC,
	"hlgt": entities.LevelHLGT,
	"hlt":  entities.LevelHLT,
	"pt":   entities.LevelPT,
	"llt":  entities.LevelLLT,
}

// RequiredFiles lists the file keys an import request must name for the
// dictionary.
func RequiredFiles(d entities.Dictionary) []string {
	if d == entities.DictionaryWhoDrug {
		return whodrugFileOrder
	}
	return meddraFileOrder
}

// Importer drives asynchronous dictionary imports against the store.
type Importer struct {
	store   *store.Store
	loader  *store.BulkLoader
	tracker progressTracker
}

// NewImporter creates an importer. batchSize <= 0 selects the loader's
// default.
func NewImporter(s *store.Store, batchSize int) *Importer {
	return &Importer{
		store:  s,
		loader: store.NewBulkLoader(s, batchSize),
	}
}

// Start validates the request, creates the provisioning version row and
// launches the load in the background. Validation failures happen before
// any row is written, so a rejected request leaves no version behind.
func (i *Importer) Start(req entities.ImportRequest) (*entities.DictionaryVersion, error) {
	if !req.Dictionary.Valid() {
		return nil, fmt.Errorf("unknown dictionary %q", req.Dictionary)
	}
	if req.Label == "" {
		return nil, errors.New("version label is required")
	}
	for _, key := range RequiredFiles(req.Dictionary) {
		path, ok := req.Files[key]
		if !ok || path == "" {
			return nil, fmt.Errorf("missing file %q for %s import", key, req.Dictionary)
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("file %q is not readable: %w", key, err)
		}
	}

	if !i.tracker.begin(entities.ImportProgress{
		Dictionary: req.Dictionary,
		Label:      req.Label,
		FilesTotal: len(RequiredFiles(req.Dictionary)),
		StartedAt:  time.Now().UTC(),
	}) {
		return nil, ErrImportInFlight
	}

	version, err := i.store.CreateVersion(req.Dictionary, req.Label, req.ReleaseDate, req.ImportedBy)
	if err != nil {
		i.tracker.finish(entities.ImportProgress{
			Dictionary: req.Dictionary,
			Label:      req.Label,
			Error:      err.Error(),
		})
		return nil, err
	}

	go i.run(req, version.ID)
	return version, nil
}

// Progress returns the latest snapshot, or nil when no import has run.
func (i *Importer) Progress() *entities.ImportProgress {
	return i.tracker.snapshot()
}

// Running reports whether an import is in flight.
func (i *Importer) Running() bool {
	return i.tracker.isRunning()
}

func (i *Importer) run(req entities.ImportRequest, versionID int64) {
	start := time.Now()
	progress := entities.ImportProgress{
		Dictionary: req.Dictionary,
		VersionID:  versionID,
		Label:      req.Label,
		FilesTotal: len(RequiredFiles(req.Dictionary)),
		StartedAt:  start.UTC(),
	}

	logging.Info("Dictionary import started",
		"dictionary", string(req.Dictionary), "label", req.Label, "version_id", versionID)

	for _, key := range RequiredFiles(req.Dictionary) {
		progress.CurrentFile = key
		i.tracker.update(progress)

		stats, err := i.loadFile(req.Dictionary, key, versionID, req.Files[key])
		progress.RecordsLoaded += int64(stats.Records)
		progress.SkippedLines += int64(stats.Skipped())
		if err != nil {
			logging.Error("Dictionary import failed",
				"dictionary", string(req.Dictionary), "version_id", versionID,
				"file", key, "error", err.Error())
			progress.Error = fmt.Sprintf("file %s: %v", key, err)
			i.tracker.finish(progress)
			return
		}
		progress.FilesProcessed++
	}
	progress.CurrentFile = ""

	if err := i.store.RecomputeCounts(versionID); err != nil {
		progress.Error = err.Error()
		i.tracker.finish(progress)
		return
	}
	if err := i.store.MarkLoaded(versionID); err != nil {
		progress.Error = err.Error()
		i.tracker.finish(progress)
		return
	}

	metrics.DictionaryImportRecords.WithLabelValues(string(req.Dictionary)).Add(float64(progress.RecordsLoaded))
	metrics.DictionaryImportDuration.WithLabelValues(string(req.Dictionary)).Observe(time.Since(start).Seconds())

	logging.Info("Dictionary import finished",
		"dictionary", string(req.Dictionary), "version_id", versionID,
		"records", progress.RecordsLoaded, "skipped", progress.SkippedLines,
		"duration", time.Since(start).String())
	i.tracker.finish(progress)
}

func (i *Importer) loadFile(d entities.Dictionary, key string, versionID int64, path string) (entities.ParseStats, error) {
	if d == entities.DictionaryWhoDrug {
		switch key {
		case "atc":
			return i.loader.LoadAtcTerms(versionID, path)
		case "ingredient":
			return i.loader.LoadIngredients(versionID, path)
		case "product":
			return i.loader.LoadProducts(versionID, path)
		case "product_ingredient":
			return i.loader.LoadProductIngredients(versionID, path)
		}
		return entities.ParseStats{}, fmt.Errorf("unknown WHO Drug file key %q", key)
	}

	if level, ok := meddraTermLevels[key]; ok {
		return i.loader.LoadMeddraTerms(versionID, level, path)
	}
	return i.loader.LoadMeddraRelations(versionID, key, path)
}
