// Package eventdb persists event tables and analysis artifacts in sqlite:
// raw event tables read back in chunks, reduced events, cross-validation
// results and binned response tables.
package eventdb

import (
	"database/sql"
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mdebony/ctapipe/internal/cuts"
	"github.com/mdebony/ctapipe/internal/events"
	"github.com/mdebony/ctapipe/internal/reco"
	"github.com/mdebony/ctapipe/internal/spectral"
)

type DB struct {
	*sql.DB
}

//go:embed schema.sql
var schemaSQL string

// Open opens (creating if needed) the event store at path. Use ":memory:"
// for an in-memory store in tests.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing event store schema: %w", err)
	}
	return &DB{db}, nil
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkIdentifier(name string) error {
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("invalid SQL identifier %q", name)
	}
	return nil
}

// NewRun registers a new analysis run and returns its identifier.
func (db *DB) NewRun(kind string) (string, error) {
	runID := uuid.NewString()
	_, err := db.Exec(
		`INSERT INTO runs (run_id, kind, created_unix_nanos) VALUES (?, ?, ?)`,
		runID, kind, time.Now().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("registering run: %w", err)
	}
	return runID, nil
}

// WriteCVResults stores cross-validation fold records: one row per fold
// per telescope type per metric.
func (db *DB) WriteCVResults(runID string, folds []reco.FoldMetrics) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.Prepare(
		`INSERT INTO cv_results (run_id, telescope_type, fold, metric, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, fm := range folds {
		for metric, value := range fm.Metrics {
			if _, err := stmt.Exec(runID, fm.TelescopeType, fm.Fold, metric, value); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// SaveSimulationInfo stores the thrown-event metadata of one population.
func (db *DB) SaveSimulationInfo(population string, info spectral.SimulatedEventsInfo) error {
	_, err := db.Exec(
		`INSERT OR REPLACE INTO simulation_info
		 (population, n_showers, energy_min_tev, energy_max_tev, max_impact_m, spectral_index, viewcone_min_deg, viewcone_max_deg)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		population, info.NShowers, info.EnergyMinTeV, info.EnergyMaxTeV,
		info.MaxImpactM, info.SpectralIndex, info.ViewconeMinDeg, info.ViewconeMaxDeg,
	)
	return err
}

// SimulationInfo loads the thrown-event metadata of one population.
func (db *DB) SimulationInfo(population string) (spectral.SimulatedEventsInfo, error) {
	var info spectral.SimulatedEventsInfo
	err := db.QueryRow(
		`SELECT n_showers, energy_min_tev, energy_max_tev, max_impact_m, spectral_index, viewcone_min_deg, viewcone_max_deg
		 FROM simulation_info WHERE population = ?`, population,
	).Scan(&info.NShowers, &info.EnergyMinTeV, &info.EnergyMaxTeV,
		&info.MaxImpactM, &info.SpectralIndex, &info.ViewconeMinDeg, &info.ViewconeMaxDeg)
	if err != nil {
		return info, fmt.Errorf("loading simulation info for %s: %w", population, err)
	}
	return info, nil
}

// SaveReducedEvents persists a reduced event table for one population.
func (db *DB) SaveReducedEvents(runID, population string, t *events.Table) error {
	for _, name := range events.ReducedColumns {
		if !t.Has(name) {
			return &events.SchemaError{Column: name}
		}
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	cols := append([]string{"run_id", "population"}, events.ReducedColumns...)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt, err := tx.Prepare(fmt.Sprintf(
		`INSERT INTO reduced_events (%s) VALUES (%s)`,
		strings.Join(cols, ", "), placeholders))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for row := 0; row < t.NumRows(); row++ {
		args := make([]any, 0, len(cols))
		args = append(args, runID, population)
		for _, name := range events.ReducedColumns {
			c := t.Col(name)
			if c.Kind == events.Int {
				args = append(args, c.Ints[row])
			} else {
				args = append(args, c.Value(row))
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// WriteResponseBins stores one population's binned response table.
func (db *DB) WriteResponseBins(runID, population string, bins []cuts.HistogramBin) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.Prepare(
		`INSERT INTO response_bins (run_id, population, energy_low_tev, energy_high_tev, n, n_weighted)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, b := range bins {
		if _, err := stmt.Exec(runID, population, b.Low, b.High, b.N, b.NWeighted); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CreateEventTable creates a raw event table named after the given
// identifier with one SQL column per table column, and inserts all rows.
// Used to ingest simulation output and by tests to build fixtures.
func (db *DB) CreateEventTable(name string, t *events.Table) error {
	if err := checkIdentifier(name); err != nil {
		return err
	}
	defs := make([]string, 0, t.NumCols())
	for _, colName := range t.Names() {
		if err := checkIdentifier(colName); err != nil {
			return err
		}
		sqlType := "REAL"
		if t.Col(colName).Kind == events.Int {
			sqlType = "INTEGER"
		}
		defs = append(defs, fmt.Sprintf("%s %s", colName, sqlType))
	}
	if _, err := db.Exec(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", name, strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("creating event table %s: %w", name, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", t.NumCols()), ", ")
	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)", name, strings.Join(t.Names(), ", "), placeholders))
	if err != nil {
		return err
	}
	defer stmt.Close()
	for row := 0; row < t.NumRows(); row++ {
		args := make([]any, 0, t.NumCols())
		for _, colName := range t.Names() {
			c := t.Col(colName)
			if c.Kind == events.Int {
				args = append(args, c.Ints[row])
			} else {
				args = append(args, c.Value(row))
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}
