package catalog

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"provkit/internal/provider"
	"provkit/internal/rfc822"
)

// ErrNotFound is returned when a named provider has no snapshot in the
// catalog.
var ErrNotFound = errors.New("provider not found in catalog")

// Catalog persists provider content so other tools can query units
// without re-parsing provider trees.
type Catalog interface {
	// SyncProvider stores a provider's loaded content, replacing the
	// previous snapshot. Unchanged content is detected by hash and
	// left alone.
	SyncProvider(p *provider.Provider) (SyncResult, error)
	// Providers lists stored snapshots sorted by provider name.
	Providers() ([]ProviderRecord, error)
	// Units lists stored units, narrowed by the filter.
	Units(f UnitFilter) ([]UnitRecord, error)
	// Files lists one provider's file inventory sorted by path.
	Files(providerName string) ([]FileRecord, error)
	// Problems lists the load problems recorded for one provider.
	Problems(providerName string) ([]ProblemRecord, error)
	// DeleteProvider removes a snapshot and everything under it.
	// Unknown names return ErrNotFound.
	DeleteProvider(name string) error
	// GetMeta returns a metadata value by key, or "" if not set.
	GetMeta(key string) (string, error)
	// SetMeta sets a metadata key-value pair.
	SetMeta(key, value string) error
	// Close closes the underlying database.
	Close() error
}

// UnitFilter narrows Units listings. Zero fields match everything.
type UnitFilter struct {
	Provider string
	Kind     string
	UnitID   string
}

// SyncResult says what a sync did.
type SyncResult struct {
	ProviderID int64
	Unchanged  bool
	Units      int
	Files      int
	Problems   int
}

// SQLiteCatalog implements Catalog backed by SQLite.
type SQLiteCatalog struct {
	db *sql.DB
}

// Open creates or opens a catalog database at the given path and
// initializes the schema.
func Open(dbPath string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := Init(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteCatalog{db: db}, nil
}

// providerSnapshot is the flattened form of a loaded provider along
// with a hash over everything that would be written.
type providerSnapshot struct {
	hash     string
	units    []UnitRecord
	files    []FileRecord
	problems []ProblemRecord
}

func snapshot(p *provider.Provider) (*providerSnapshot, error) {
	snap := &providerSnapshot{}
	h := sha256.New()
	write := func(parts ...string) {
		for _, part := range parts {
			h.Write([]byte(part))
			h.Write([]byte{0})
		}
	}
	write(p.Name(), p.Version(), p.Description())
	for _, u := range p.Units() {
		var b strings.Builder
		if err := rfc822.Write(&b, u.Record()); err != nil {
			return nil, err
		}
		rec := UnitRecord{
			Kind:       u.Kind(),
			UnitID:     u.ID(),
			PartialID:  u.PartialID(),
			Origin:     u.Origin().String(),
			Virtual:    u.Virtual(),
			Definition: b.String(),
		}
		snap.units = append(snap.units, rec)
		write("unit", rec.Kind, rec.UnitID, rec.Origin, strconv.FormatBool(rec.Virtual), rec.Definition)
	}
	for _, f := range p.FileUnits() {
		rec := FileRecord{Path: f.Path(), Role: string(f.Role()), Base: f.Base()}
		snap.files = append(snap.files, rec)
		write("file", rec.Path, rec.Role, rec.Base)
	}
	for _, perr := range p.Problems() {
		rec := ProblemRecord{Message: perr.Error()}
		snap.problems = append(snap.problems, rec)
		write("problem", rec.Message)
	}
	snap.hash = hex.EncodeToString(h.Sum(nil))
	return snap, nil
}

func (c *SQLiteCatalog) SyncProvider(p *provider.Provider) (SyncResult, error) {
	snap, err := snapshot(p)
	if err != nil {
		return SyncResult{}, err
	}
	result := SyncResult{
		Units:    len(snap.units),
		Files:    len(snap.files),
		Problems: len(snap.problems),
	}

	existing, err := c.providerHash(p.Name())
	if err != nil {
		return SyncResult{}, err
	}
	if existing == snap.hash {
		if err := c.db.QueryRow("SELECT id FROM providers WHERE name = ?", p.Name()).Scan(&result.ProviderID); err != nil {
			return SyncResult{}, err
		}
		result.Unchanged = true
		return result, nil
	}

	tx, err := c.db.Begin()
	if err != nil {
		return SyncResult{}, err
	}
	defer tx.Rollback()

	id, err := upsertProvider(tx, p, snap.hash)
	if err != nil {
		return SyncResult{}, err
	}
	result.ProviderID = id

	for _, table := range []string{"units", "files", "problems"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE provider_id = ?", id); err != nil {
			return SyncResult{}, err
		}
	}
	if err := insertUnits(tx, id, snap.units); err != nil {
		return SyncResult{}, err
	}
	if err := insertFiles(tx, id, snap.files); err != nil {
		return SyncResult{}, err
	}
	if err := insertProblems(tx, id, snap.problems); err != nil {
		return SyncResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return SyncResult{}, err
	}
	return result, nil
}

func (c *SQLiteCatalog) providerHash(name string) (string, error) {
	var hash string
	err := c.db.QueryRow("SELECT hash FROM providers WHERE name = ?", name).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return hash, err
}

func upsertProvider(tx *sql.Tx, p *provider.Provider, hash string) (int64, error) {
	var id int64
	err := tx.QueryRow("SELECT id FROM providers WHERE name = ?", p.Name()).Scan(&id)
	if err == nil {
		_, err = tx.Exec(
			"UPDATE providers SET namespace = ?, version = ?, description = ?, location = ?, secure = ?, hash = ?, synced_at = CURRENT_TIMESTAMP WHERE id = ?",
			p.Namespace(), p.Version(), p.Description(), p.Definition().Location, p.Secure(), hash, id,
		)
		return id, err
	}
	if err != sql.ErrNoRows {
		return 0, err
	}
	res, err := tx.Exec(
		"INSERT INTO providers (name, namespace, version, description, location, secure, hash) VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.Name(), p.Namespace(), p.Version(), p.Description(), p.Definition().Location, p.Secure(), hash,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertUnits(tx *sql.Tx, providerID int64, units []UnitRecord) error {
	stmt, err := tx.Prepare(
		"INSERT INTO units (provider_id, kind, unit_id, partial_id, origin, virtual, definition) VALUES (?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, u := range units {
		if _, err := stmt.Exec(providerID, u.Kind, u.UnitID, u.PartialID, u.Origin, u.Virtual, u.Definition); err != nil {
			return err
		}
	}
	return nil
}

func insertFiles(tx *sql.Tx, providerID int64, files []FileRecord) error {
	stmt, err := tx.Prepare("INSERT INTO files (provider_id, path, role, base) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, f := range files {
		if _, err := stmt.Exec(providerID, f.Path, f.Role, f.Base); err != nil {
			return err
		}
	}
	return nil
}

func insertProblems(tx *sql.Tx, providerID int64, problems []ProblemRecord) error {
	stmt, err := tx.Prepare("INSERT INTO problems (provider_id, message) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, p := range problems {
		if _, err := stmt.Exec(providerID, p.Message); err != nil {
			return err
		}
	}
	return nil
}

func (c *SQLiteCatalog) Providers() ([]ProviderRecord, error) {
	rows, err := c.db.Query(`
		SELECT id, name, namespace, version, description, location, secure, hash, synced_at
		FROM providers
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ProviderRecord
	for rows.Next() {
		var r ProviderRecord
		if err := rows.Scan(&r.ID, &r.Name, &r.Namespace, &r.Version, &r.Description, &r.Location, &r.Secure, &r.Hash, &r.SyncedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (c *SQLiteCatalog) Units(f UnitFilter) ([]UnitRecord, error) {
	query := `
		SELECT u.id, u.provider_id, u.kind, u.unit_id, u.partial_id, u.origin, u.virtual, u.definition
		FROM units u
		JOIN providers p ON p.id = u.provider_id
	`
	var conds []string
	var args []any
	if f.Provider != "" {
		conds = append(conds, "p.name = ?")
		args = append(args, f.Provider)
	}
	if f.Kind != "" {
		conds = append(conds, "u.kind = ?")
		args = append(args, f.Kind)
	}
	if f.UnitID != "" {
		conds = append(conds, "u.unit_id = ?")
		args = append(args, f.UnitID)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY u.unit_id, u.id"

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []UnitRecord
	for rows.Next() {
		var r UnitRecord
		if err := rows.Scan(&r.ID, &r.ProviderID, &r.Kind, &r.UnitID, &r.PartialID, &r.Origin, &r.Virtual, &r.Definition); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (c *SQLiteCatalog) Files(providerName string) ([]FileRecord, error) {
	rows, err := c.db.Query(`
		SELECT f.id, f.provider_id, f.path, f.role, f.base
		FROM files f
		JOIN providers p ON p.id = f.provider_id
		WHERE p.name = ?
		ORDER BY f.path
	`, providerName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []FileRecord
	for rows.Next() {
		var r FileRecord
		if err := rows.Scan(&r.ID, &r.ProviderID, &r.Path, &r.Role, &r.Base); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (c *SQLiteCatalog) Problems(providerName string) ([]ProblemRecord, error) {
	rows, err := c.db.Query(`
		SELECT pr.id, pr.provider_id, pr.message
		FROM problems pr
		JOIN providers p ON p.id = pr.provider_id
		WHERE p.name = ?
		ORDER BY pr.id
	`, providerName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ProblemRecord
	for rows.Next() {
		var r ProblemRecord
		if err := rows.Scan(&r.ID, &r.ProviderID, &r.Message); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (c *SQLiteCatalog) DeleteProvider(name string) error {
	// child rows go with it via ON DELETE CASCADE
	res, err := c.db.Exec("DELETE FROM providers WHERE name = ?", name)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *SQLiteCatalog) GetMeta(key string) (string, error) {
	var value string
	err := c.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (c *SQLiteCatalog) SetMeta(key, value string) error {
	_, err := c.db.Exec(
		"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}
