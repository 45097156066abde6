// Package sqlstore keeps edit overlays in a SQL table, one row per client.
// SQLite is reached through modernc.org/sqlite and Postgres through the pgx
// database/sql driver; both share the same schema and statements.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"github.com/agentstation/careroster/pkg/constants"
	"github.com/agentstation/careroster/pkg/errors"
	"github.com/agentstation/careroster/pkg/logging"
	"github.com/agentstation/careroster/pkg/overlay"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

var _ overlay.Store = (*Store)(nil)

// Store is an overlay.Store over database/sql.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the overlay database named by dsn and ensures the schema.
// postgres:// and postgresql:// DSNs use Postgres; sqlite://path or a bare
// path uses SQLite.
func Open(ctx context.Context, dsn string) (*Store, error) {
	driver, source, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite && source != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(source), constants.DirPermissions); err != nil {
			return nil, errors.WrapIO("create directory", filepath.Dir(source), err)
		}
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, errors.NewConfigError("overlay", "open "+driver, err)
	}
	if driver == DriverSQLite {
		// one connection so :memory: databases are shared and writes serialize
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.NewConfigError("overlay", "ping "+driver, err)
	}

	s := &Store{db: db, driver: driver}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logging.Debug().Str("driver", driver).Msg("overlay store opened")
	return s, nil
}

func parseDSN(dsn string) (driver, source string, err error) {
	switch {
	case dsn == "":
		return "", "", errors.NewConfigError("overlay", "overlay dsn is required", nil)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DriverPostgres, dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return DriverSQLite, strings.TrimPrefix(dsn, "sqlite://"), nil
	default:
		return DriverSQLite, dsn, nil
	}
}

func (s *Store) ensureSchema(ctx context.Context) error {
	payloadType := "TEXT"
	if s.driver == DriverPostgres {
		payloadType = "JSONB"
	}
	ddl := `CREATE TABLE IF NOT EXISTS overlays (
		client_id TEXT PRIMARY KEY,
		payload ` + payloadType + ` NOT NULL,
		edited_by TEXT NOT NULL DEFAULT '',
		edited_at TEXT NOT NULL DEFAULT ''
	)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return errors.WrapResource("create", "table", "overlays", err)
	}
	return nil
}

// Get returns the overlay for a client.
func (s *Store) Get(ctx context.Context, clientID string) (*overlay.Overlay, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM overlays WHERE client_id = $1`, clientID).Scan(&payload)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("overlay", clientID)
	}
	if err != nil {
		return nil, errors.WrapResource("get", "overlay", clientID, err)
	}
	o, err := decode(clientID, payload)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// List returns every overlay ordered by client ID.
func (s *Store) List(ctx context.Context) ([]overlay.Overlay, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT client_id, payload FROM overlays ORDER BY client_id`)
	if err != nil {
		return nil, errors.WrapResource("list", "overlay", "", err)
	}
	defer func() { _ = rows.Close() }()

	var out []overlay.Overlay
	for rows.Next() {
		var (
			id      string
			payload []byte
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, errors.WrapResource("scan", "overlay", id, err)
		}
		o, err := decode(id, payload)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapResource("list", "overlay", "", err)
	}
	return out, nil
}

// Put creates or replaces the overlay for a client.
func (s *Store) Put(ctx context.Context, o overlay.Overlay) error {
	if o.ClientID == "" {
		return errors.NewValidationError("client_id", o.ClientID, "client id is required")
	}
	payload, err := json.Marshal(o)
	if err != nil {
		return errors.WrapSerialization("encode", "overlay "+o.ClientID, err)
	}
	editedAt := ""
	if !o.EditedAt.IsZero() {
		editedAt = o.EditedAt.UTC().Format(time.RFC3339Nano)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO overlays (client_id, payload, edited_by, edited_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (client_id) DO UPDATE SET
			payload = excluded.payload,
			edited_by = excluded.edited_by,
			edited_at = excluded.edited_at`,
		o.ClientID, string(payload), o.EditedBy, editedAt)
	if err != nil {
		return errors.WrapResource("put", "overlay", o.ClientID, err)
	}
	return nil
}

// Delete removes the overlay for a client.
func (s *Store) Delete(ctx context.Context, clientID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM overlays WHERE client_id = $1`, clientID)
	if err != nil {
		return errors.WrapResource("delete", "overlay", clientID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NewNotFoundError("overlay", clientID)
	}
	return nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the database/sql driver in use.
func (s *Store) Driver() string { return s.driver }

func decode(clientID string, payload []byte) (overlay.Overlay, error) {
	var o overlay.Overlay
	if err := json.Unmarshal(payload, &o); err != nil {
		return overlay.Overlay{}, errors.WrapParse("json", "overlay "+clientID, err)
	}
	o.ClientID = clientID
	return o, nil
}
