// Package store provides SQLite-backed storage for named scenarios.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/mrrcast/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotFound is returned when no scenario has the requested name.
var ErrNotFound = errors.New("scenario not found")

// Scenario is a named, stored ParameterSet.
type Scenario struct {
	ID          string
	Name        string
	Params      model.ParameterSet
	Fingerprint string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ScenarioInfo is the listing view of a scenario.
type ScenarioInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	KickOff   time.Time `json:"kick_off"`
	Price     float64   `json:"price"`
	Channels  []string  `json:"channels"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store holds scenarios in a SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "mrrcast")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "mrrcast")
}

// DefaultPath returns the default scenario database path.
func DefaultPath() string {
	return filepath.Join(DataDir(), "scenarios.db")
}

// Open opens or creates the scenario database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening scenario db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the scenario database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores p under name, replacing any scenario with that name. The
// scenario keeps its ID and creation time across updates.
func (s *Store) Save(name string, p model.ParameterSet) (Scenario, error) {
	if name == "" {
		return Scenario{}, errors.New("scenario name is required")
	}
	params, err := json.Marshal(p)
	if err != nil {
		return Scenario{}, fmt.Errorf("encoding parameters: %w", err)
	}
	fp, err := p.Fingerprint()
	if err != nil {
		return Scenario{}, fmt.Errorf("fingerprinting parameters: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Scenario{}, err
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now().UTC().Truncate(time.Second)
	sc := Scenario{
		ID:          uuid.NewString(),
		Name:        name,
		Params:      p,
		Fingerprint: fp,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var createdStr string
	err = tx.QueryRow("SELECT scenario_id, created_at FROM scenarios WHERE name = ?", name).Scan(&sc.ID, &createdStr)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return Scenario{}, err
	default:
		sc.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO scenarios
		(scenario_id, name, kick_off, price, params_json, fingerprint, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sc.ID, sc.Name, model.MonthStart(p.KickOff).Format(time.RFC3339), p.Price, string(params), fp,
		sc.CreatedAt.Format(time.RFC3339), sc.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return Scenario{}, err
	}

	// Delete old channel entries for this scenario
	if _, err := tx.Exec("DELETE FROM scenario_channels WHERE scenario_id = ?", sc.ID); err != nil {
		return Scenario{}, err
	}
	for i, ch := range p.Channels {
		_, err = tx.Exec(`INSERT INTO scenario_channels (scenario_id, position, name, kind, cpa)
			VALUES (?, ?, ?, ?, ?)`, sc.ID, i, ch.Name, string(ch.Kind), ch.CPA)
		if err != nil {
			return Scenario{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

// Get loads the scenario with the given name.
func (s *Store) Get(name string) (Scenario, error) {
	var sc Scenario
	var params, createdStr, updatedStr string
	err := s.db.QueryRow(`SELECT scenario_id, name, params_json, fingerprint, created_at, updated_at
		FROM scenarios WHERE name = ?`, name).
		Scan(&sc.ID, &sc.Name, &params, &sc.Fingerprint, &createdStr, &updatedStr)
	if errors.Is(err, sql.ErrNoRows) {
		return Scenario{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return Scenario{}, err
	}
	if err := json.Unmarshal([]byte(params), &sc.Params); err != nil {
		return Scenario{}, fmt.Errorf("decoding scenario %s: %w", name, err)
	}
	sc.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	sc.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)
	return sc, nil
}

// List returns every scenario ordered by name.
func (s *Store) List() ([]ScenarioInfo, error) {
	rows, err := s.db.Query(`SELECT scenario_id, name, kick_off, price, updated_at
		FROM scenarios ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var infos []ScenarioInfo
	for rows.Next() {
		var info ScenarioInfo
		var kickOffStr, updatedStr string
		if err := rows.Scan(&info.ID, &info.Name, &kickOffStr, &info.Price, &updatedStr); err != nil {
			return nil, err
		}
		info.KickOff, _ = time.Parse(time.RFC3339, kickOffStr)
		info.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Batch-load channel names
	chRows, err := s.db.Query("SELECT scenario_id, name FROM scenario_channels ORDER BY scenario_id, position")
	if err != nil {
		return nil, err
	}
	defer func() { _ = chRows.Close() }()

	idx := make(map[string]int, len(infos))
	for i, info := range infos {
		idx[info.ID] = i
	}
	for chRows.Next() {
		var id, name string
		if err := chRows.Scan(&id, &name); err != nil {
			return nil, err
		}
		if i, ok := idx[id]; ok {
			infos[i].Channels = append(infos[i].Channels, name)
		}
	}
	return infos, chRows.Err()
}

// Delete removes a scenario and its channel rows.
func (s *Store) Delete(name string) error {
	res, err := s.db.Exec("DELETE FROM scenarios WHERE name = ?", name)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// Count returns the number of stored scenarios.
func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM scenarios").Scan(&count)
	return count, err
}
