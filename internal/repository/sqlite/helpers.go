package sqlite

import (
	"database/sql"
	"encoding/json"
	"time"

	"netlens/internal/domain"
	"netlens/internal/repository"
)

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// unmarshalJSONField safely unmarshals JSON from nullable string into target
func unmarshalJSONField(ns sql.NullString, target interface{}) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), target)
}

// marshalToNull marshals v to nullable JSON; nil and empty values are stored as NULL
func marshalToNull(v interface{}) (sql.NullString, error) {
	switch x := v.(type) {
	case nil:
		return sql.NullString{}, nil
	case []string:
		if x == nil {
			return sql.NullString{}, nil
		}
	case domain.RoutingTable:
		if len(x) == 0 {
			return sql.NullString{}, nil
		}
	}

	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// Column lists shared by queries and scanners. Scanner field order MUST match.
const (
	topologyColumns = `name, topology_key, title, description, digest, node_count, link_count, saved_at`
	nodeColumns     = `id, position_x, position_y, neighbors, routes`
	linkColumns     = `source_id, target_id, weight`
)

// topologyRow holds one saved_topologies row
type topologyRow struct {
	Name        string
	Key         sql.NullString
	Title       sql.NullString
	Description sql.NullString
	Digest      string
	NodeCount   int
	LinkCount   int
	SavedAt     int64
}

func (r *topologyRow) scanArgs() []interface{} {
	return []interface{}{
		&r.Name,        // 1
		&r.Key,         // 2
		&r.Title,       // 3
		&r.Description, // 4
		&r.Digest,      // 5
		&r.NodeCount,   // 6
		&r.LinkCount,   // 7
		&r.SavedAt,     // 8
	}
}

func (r *topologyRow) toSummary() repository.SavedTopology {
	return repository.SavedTopology{
		Name:        r.Name,
		Key:         nullToString(r.Key),
		Description: nullToString(r.Description),
		Digest:      r.Digest,
		NodeCount:   r.NodeCount,
		LinkCount:   r.LinkCount,
		SavedAt:     time.UnixMilli(r.SavedAt).UTC(),
	}
}

// nodeRow holds one saved_nodes row
type nodeRow struct {
	ID            string
	X, Y          float64
	NeighborsJSON sql.NullString
	RoutesJSON    sql.NullString
}

func (r *nodeRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,            // 1
		&r.X,             // 2
		&r.Y,             // 3
		&r.NeighborsJSON, // 4
		&r.RoutesJSON,    // 5
	}
}

func (r *nodeRow) toDomain() (domain.Node, error) {
	n := domain.NewNode(r.ID, r.X, r.Y)
	if err := unmarshalJSONField(r.NeighborsJSON, &n.Neighbors); err != nil {
		return domain.Node{}, err
	}
	if err := unmarshalJSONField(r.RoutesJSON, &n.Routes); err != nil {
		return domain.Node{}, err
	}
	return n, nil
}

func nodeInsertArgs(name string, ordinal int, n domain.Node) ([]interface{}, error) {
	neighbors, err := marshalToNull(n.Neighbors)
	if err != nil {
		return nil, err
	}
	routes, err := marshalToNull(n.Routes)
	if err != nil {
		return nil, err
	}
	return []interface{}{name, ordinal, n.ID, n.Position.X, n.Position.Y, neighbors, routes}, nil
}
