package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"netlens/internal/domain"
	"netlens/internal/repository"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

var _ repository.Repository = (*Repository)(nil)

// New opens (and migrates) the database at dbPath. ":memory:" gives a private
// in-memory database.
func New(dbPath string) (*Repository, error) {
	memory := dbPath == ":memory:"
	dsn := "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if !memory {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if memory {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS saved_topologies (
		name TEXT PRIMARY KEY,
		topology_key TEXT,
		title TEXT,
		description TEXT,
		digest TEXT NOT NULL,
		node_count INTEGER NOT NULL DEFAULT 0,
		link_count INTEGER NOT NULL DEFAULT 0,
		saved_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS saved_nodes (
		topology_name TEXT NOT NULL,
		ordinal INTEGER NOT NULL,
		id TEXT NOT NULL,
		position_x REAL NOT NULL,
		position_y REAL NOT NULL,
		neighbors JSON,
		routes JSON,
		PRIMARY KEY (topology_name, ordinal),
		FOREIGN KEY (topology_name) REFERENCES saved_topologies(name) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS saved_links (
		topology_name TEXT NOT NULL,
		ordinal INTEGER NOT NULL,
		source_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		weight REAL NOT NULL,
		PRIMARY KEY (topology_name, ordinal),
		FOREIGN KEY (topology_name) REFERENCES saved_topologies(name) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_saved_topologies_saved_at ON saved_topologies(saved_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveTopology stores t under name in one transaction
func (r *Repository) SaveTopology(ctx context.Context, name string, t *domain.Topology) (*repository.SavedTopology, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("topology name is required")
	}
	if t == nil {
		t = domain.Empty()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Replacing the header cascades to the old nodes and links
	if _, err := tx.ExecContext(ctx, `DELETE FROM saved_topologies WHERE name = ?`, name); err != nil {
		return nil, fmt.Errorf("failed to clear %s: %w", name, err)
	}

	row := topologyRow{
		Name:        name,
		Key:         stringToNull(t.Key),
		Title:       stringToNull(t.Name),
		Description: stringToNull(t.Description),
		Digest:      domain.Digest(t),
		NodeCount:   len(t.Nodes),
		LinkCount:   len(t.Links),
		SavedAt:     r.now().UnixMilli(),
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO saved_topologies (`+topologyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, row.Name, row.Key, row.Title, row.Description, row.Digest, row.NodeCount, row.LinkCount, row.SavedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert topology: %w", err)
	}

	nodeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO saved_nodes (topology_name, ordinal, `+nodeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare node insert: %w", err)
	}
	defer nodeStmt.Close()

	for i, n := range t.Nodes {
		args, err := nodeInsertArgs(name, i, n)
		if err != nil {
			return nil, fmt.Errorf("failed to encode node %s: %w", n.ID, err)
		}
		if _, err := nodeStmt.ExecContext(ctx, args...); err != nil {
			return nil, fmt.Errorf("failed to insert node %s: %w", n.ID, err)
		}
	}

	linkStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO saved_links (topology_name, ordinal, `+linkColumns+`)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare link insert: %w", err)
	}
	defer linkStmt.Close()

	for i, l := range t.Links {
		if _, err := linkStmt.ExecContext(ctx, name, i, l.Source, l.Target, l.Weight); err != nil {
			return nil, fmt.Errorf("failed to insert link %s: %w", l.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	summary := row.toSummary()
	return &summary, nil
}

// GetTopology loads a saved topology, preserving node and link order
func (r *Repository) GetTopology(ctx context.Context, name string) (*domain.Topology, error) {
	var head topologyRow
	err := r.db.QueryRowContext(ctx, `
		SELECT `+topologyColumns+` FROM saved_topologies WHERE name = ?
	`, name).Scan(head.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query topology: %w", err)
	}

	nodes, err := r.loadNodes(ctx, name)
	if err != nil {
		return nil, err
	}
	links, err := r.loadLinks(ctx, name)
	if err != nil {
		return nil, err
	}

	return domain.NewTopology(nullToString(head.Key), nullToString(head.Title), nullToString(head.Description), nodes, links), nil
}

func (r *Repository) loadNodes(ctx context.Context, name string) ([]domain.Node, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+nodeColumns+` FROM saved_nodes WHERE topology_name = ? ORDER BY ordinal
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	var nodes []domain.Node
	for rows.Next() {
		var nr nodeRow
		if err := rows.Scan(nr.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		n, err := nr.toDomain()
		if err != nil {
			return nil, fmt.Errorf("failed to decode node %s: %w", nr.ID, err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}
	return nodes, nil
}

func (r *Repository) loadLinks(ctx context.Context, name string) ([]domain.Link, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+linkColumns+` FROM saved_links WHERE topology_name = ? ORDER BY ordinal
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	var links []domain.Link
	for rows.Next() {
		var l domain.Link
		if err := rows.Scan(&l.Source, &l.Target, &l.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}
	return links, nil
}

// ListTopologies returns summaries, most recently saved first
func (r *Repository) ListTopologies(ctx context.Context) ([]repository.SavedTopology, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+topologyColumns+` FROM saved_topologies ORDER BY saved_at DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query topologies: %w", err)
	}
	defer rows.Close()

	out := make([]repository.SavedTopology, 0)
	for rows.Next() {
		var row topologyRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan topology: %w", err)
		}
		out = append(out, row.toSummary())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating topologies: %w", err)
	}
	return out, nil
}

// DeleteTopology removes a saved topology
func (r *Repository) DeleteTopology(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM saved_topologies WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete topology: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
