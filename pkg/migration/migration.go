// Package migration tracks and runs schema migrations.
//
// Each migration file registers itself in an init():
//
//	func init() {
//	    migration.Register("20250101000000_create_users_table", &createUsersTable{})
//	}
//
// and implements Up/Down against a *gorm.DB. The CLI drives the runner:
//
//	vyapar migrate
//	vyapar migrate:rollback
//	vyapar migrate:status
package migration

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/vyapar/pkg/logger"
)

// Migration is implemented by every registered migration.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

// record is the row kept in the tracking table for each applied migration.
type record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "schema_migrations" }

type entry struct {
	name string
	m    Migration
}

var registry []entry

// Register adds a migration under a timestamp-prefixed name, e.g.
// "20250101000000_create_users_table". Names sort lexicographically,
// which gives chronological run order.
func Register(name string, m Migration) {
	registry = append(registry, entry{name: name, m: m})
}

// Runner executes registered migrations against one database.
type Runner struct {
	db *gorm.DB
}

// New creates a Runner backed by db.
func New(db *gorm.DB) *Runner {
	return &Runner{db: db}
}

func (r *Runner) ensureTable() error {
	return r.db.AutoMigrate(&record{})
}

// Pending returns the registered migrations that have not run yet,
// in run order.
func (r *Runner) Pending() ([]string, error) {
	pending, err := r.pending()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(pending))
	for i, e := range pending {
		names[i] = e.name
	}
	return names, nil
}

func (r *Runner) pending() ([]entry, error) {
	var ran []record
	if err := r.db.Find(&ran).Error; err != nil {
		return nil, err
	}

	ranSet := make(map[string]bool, len(ran))
	for _, rec := range ran {
		ranSet[rec.Name] = true
	}

	var pending []entry
	for _, e := range registry {
		if !ranSet[e.name] {
			pending = append(pending, e)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].name < pending[j].name
	})
	return pending, nil
}

// Run applies all pending migrations as a single batch.
func (r *Runner) Run() error {
	if err := r.ensureTable(); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}

	pending, err := r.pending()
	if err != nil {
		return fmt.Errorf("migration: fetch pending: %w", err)
	}
	if len(pending) == 0 {
		fmt.Println("Nothing to migrate.")
		return nil
	}

	batch := r.nextBatch()
	for _, e := range pending {
		logger.Info("migration: running", "name", e.name, "batch", batch)
		fmt.Printf("  Migrating: %s\n", e.name)

		if err := e.m.Up(r.db); err != nil {
			return fmt.Errorf("migration: %s up: %w", e.name, err)
		}
		if err := r.db.Create(&record{Name: e.name, Batch: batch}).Error; err != nil {
			return fmt.Errorf("migration: record %s: %w", e.name, err)
		}

		fmt.Printf("  Migrated:  %s\n", e.name)
	}

	logger.Info("migration: done", "ran", len(pending), "batch", batch)
	return nil
}

// Rollback reverses every migration in the most recent batch, newest first.
func (r *Runner) Rollback() error {
	if err := r.ensureTable(); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}

	last := r.lastBatch()
	if last == 0 {
		fmt.Println("Nothing to roll back.")
		return nil
	}

	var records []record
	if err := r.db.Where("batch = ?", last).Order("id desc").Find(&records).Error; err != nil {
		return err
	}

	byName := make(map[string]Migration, len(registry))
	for _, e := range registry {
		byName[e.name] = e.m
	}

	for _, rec := range records {
		m, ok := byName[rec.Name]
		if !ok {
			return fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}

		logger.Info("migration: rolling back", "name", rec.Name)
		fmt.Printf("  Rolling back: %s\n", rec.Name)

		if err := m.Down(r.db); err != nil {
			return fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		if err := r.db.Delete(&rec).Error; err != nil {
			return err
		}

		fmt.Printf("  Rolled back:  %s\n", rec.Name)
	}

	return nil
}

// Status prints every registered migration and whether it has run.
func (r *Runner) Status() error {
	if err := r.ensureTable(); err != nil {
		return err
	}

	var ran []record
	if err := r.db.Find(&ran).Error; err != nil {
		return err
	}

	ranMap := make(map[string]record, len(ran))
	for _, rec := range ran {
		ranMap[rec.Name] = rec
	}

	fmt.Printf("%-60s  %-8s  %s\n", "Migration", "Status", "Batch")
	for _, e := range registry {
		if rec, ok := ranMap[e.name]; ok {
			fmt.Printf("%-60s  %-8s  %d\n", e.name, "Ran", rec.Batch)
		} else {
			fmt.Printf("%-60s  %-8s  -\n", e.name, "Pending")
		}
	}
	return nil
}

func (r *Runner) nextBatch() int { return r.lastBatch() + 1 }

func (r *Runner) lastBatch() int {
	var max struct{ Max int }
	r.db.Model(&record{}).Select("MAX(batch) as max").Scan(&max)
	return max.Max
}
