// Package scheduler provides background maintenance for the terminology
// API: a cron-based watchdog that flags stale provisioning versions and
// dictionaries left without an active version.
package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/ravenmed/terminology-api/dictionaryparser/entities"
	"github.com/ravenmed/terminology-api/interfaces"
	"github.com/ravenmed/terminology-api/logging"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// staleProvisioningAge is how long a version may sit in provisioning before
// the watchdog flags it. Full MedDRA loads finish well within the hour; a
// provisioning row older than this is almost always a crashed import.
const staleProvisioningAge = 2 * time.Hour

// Scheduler runs periodic storage health sweeps using dependency injection
type Scheduler struct {
	store     interfaces.TermStore
	importer  interfaces.Importer
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(termStore interfaces.TermStore, imp interfaces.Importer) *Scheduler {
	return &Scheduler{
		store:     termStore,
		importer:  imp,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start runs one immediate sweep and schedules hourly repeats.
func (s *Scheduler) Start() error {
	s.sweep()

	_, err := s.scheduler.Every(1).Hours().Do(s.sweep)
	if err != nil {
		logging.Error("Failed to schedule watchdog sweep", "error", err)
		return fmt.Errorf("failed to schedule watchdog sweep: %w", err)
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// sweep inspects every version row and warns on suspicious states. It never
// mutates storage: cleanup of a crashed import is an operator decision.
func (s *Scheduler) sweep() {
	versions, err := s.store.ListVersions("")
	if err != nil {
		logging.Error("Watchdog sweep failed to list versions", "error", err)
		return
	}

	hasActive := map[entities.Dictionary]bool{}
	for _, v := range versions {
		if v.Active {
			hasActive[v.Dictionary] = true
		}
		if v.Status == entities.VersionProvisioning &&
			time.Since(v.ImportedAt) > staleProvisioningAge &&
			!s.importer.Running() {
			logging.Warn("Stale provisioning version detected",
				"version_id", v.ID,
				"dictionary", string(v.Dictionary),
				"label", v.Label,
				"age", time.Since(v.ImportedAt).Round(time.Minute).String())
		}
	}

	for _, d := range []entities.Dictionary{entities.DictionaryMedDRA, entities.DictionaryWhoDrug} {
		if !hasActive[d] {
			logging.Warn("Dictionary has no active version", "dictionary", string(d))
		}
	}
}
