package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/solir/internal/ir"
	"github.com/roach88/solir/internal/resolver"
)

// Unit is an indexed compilation unit.
type Unit struct {
	ID        resolver.UnitID `json:"id"`
	SessionID string          `json:"session_id"`
	// Seq orders units by when they were last written.
	Seq int64 `json:"seq"`
}

// Contract is an indexed contract definition.
type Contract struct {
	ID               int64  `json:"id"`
	File             string `json:"file"`
	Name             string `json:"name"`
	Kind             string `json:"kind"`
	Abstract         bool   `json:"abstract"`
	FullyImplemented string `json:"fully_implemented"`
	// Linearized is the compiler's linearization, most derived first.
	Linearized []int64 `json:"linearized"`
	Location   ir.Span `json:"location"`
}

// Edge is one direct inheritance edge.
type Edge struct {
	ChildID  int64  `json:"child_id"`
	Position int    `json:"position"`
	BaseID   int64  `json:"base_id"`
	File     string `json:"file"`
}

// Declaration is an indexed named declaration.
type Declaration struct {
	ID   int64  `json:"id"`
	File string `json:"file"`
	// ContractID is the enclosing contract, nil at file level.
	ContractID    *int64  `json:"contract_id,omitempty"`
	NodeType      string  `json:"node_type"`
	Name          string  `json:"name"`
	CanonicalName string  `json:"canonical_name"`
	Location      ir.Span `json:"location"`
	NameLocation  ir.Span `json:"name_location"`
}

// Units returns every indexed unit, least recently written first.
func (s *Store) Units(ctx context.Context) ([]Unit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, seq FROM units ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	units := []Unit{}
	for rows.Next() {
		var u Unit
		var id string
		if err := rows.Scan(&id, &u.SessionID, &u.Seq); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		u.ID = resolver.UnitID(id)
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate units: %w", err)
	}
	return units, nil
}

// LatestUnit returns the most recently written unit. ok is false when the
// store is empty.
func (s *Store) LatestUnit(ctx context.Context) (u Unit, ok bool, err error) {
	var id string
	err = s.db.QueryRowContext(ctx, `
		SELECT id, session_id, seq FROM units ORDER BY seq DESC LIMIT 1
	`).Scan(&id, &u.SessionID, &u.Seq)
	if err == sql.ErrNoRows {
		return Unit{}, false, nil
	}
	if err != nil {
		return Unit{}, false, fmt.Errorf("query latest unit: %w", err)
	}
	u.ID = resolver.UnitID(id)
	return u, true, nil
}

// Files returns the indexed paths of unit, sorted.
func (s *Store) Files(ctx context.Context, unit resolver.UnitID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path FROM files WHERE unit_id = ? ORDER BY path COLLATE BINARY ASC
	`, string(unit))
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	paths := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return paths, nil
}

const contractColumns = `c.id, c.file, c.name, c.kind, c.abstract, c.fully_implemented,
	c.linearized, c.start_offset, c.end_offset`

// Contracts returns every contract of unit.
func (s *Store) Contracts(ctx context.Context, unit resolver.UnitID) ([]Contract, error) {
	return s.queryContracts(ctx, `
		SELECT `+contractColumns+`
		FROM contracts c
		WHERE c.unit_id = ?
		ORDER BY c.file COLLATE BINARY ASC, c.start_offset ASC
	`, string(unit))
}

// ContractsByName returns the contracts of unit called name.
func (s *Store) ContractsByName(ctx context.Context, unit resolver.UnitID, name string) ([]Contract, error) {
	return s.queryContracts(ctx, `
		SELECT `+contractColumns+`
		FROM contracts c
		WHERE c.unit_id = ? AND c.name = ?
		ORDER BY c.file COLLATE BINARY ASC, c.start_offset ASC
	`, string(unit), name)
}

// Children returns the contracts naming id directly in their `is` clause.
func (s *Store) Children(ctx context.Context, unit resolver.UnitID, id int64) ([]Contract, error) {
	return s.queryContracts(ctx, `
		SELECT `+contractColumns+`
		FROM contracts c
		JOIN inheritance i ON i.unit_id = c.unit_id AND i.child_id = c.id
		WHERE c.unit_id = ? AND i.base_id = ?
		ORDER BY c.file COLLATE BINARY ASC, c.start_offset ASC
	`, string(unit), id)
}

// Descendants returns every contract inheriting from id, directly or
// transitively, nearest first.
func (s *Store) Descendants(ctx context.Context, unit resolver.UnitID, id int64) ([]Contract, error) {
	return s.queryContracts(ctx, `
		WITH RECURSIVE descendants(id, depth) AS (
			SELECT child_id, 1 FROM inheritance WHERE unit_id = ?1 AND base_id = ?2
			UNION
			SELECT i.child_id, d.depth + 1
			FROM inheritance i JOIN descendants d ON i.base_id = d.id
			WHERE i.unit_id = ?1
		)
		SELECT `+contractColumns+`
		FROM contracts c
		JOIN (SELECT id, MIN(depth) AS depth FROM descendants GROUP BY id) d ON d.id = c.id
		WHERE c.unit_id = ?1
		ORDER BY d.depth ASC, c.file COLLATE BINARY ASC, c.start_offset ASC
	`, string(unit), id)
}

func (s *Store) queryContracts(ctx context.Context, query string, args ...any) ([]Contract, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query contracts: %w", err)
	}
	defer rows.Close()

	contracts := []Contract{}
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contracts: %w", err)
	}
	return contracts, nil
}

func scanContract(rows *sql.Rows) (Contract, error) {
	var c Contract
	var linearized string
	err := rows.Scan(
		&c.ID, &c.File, &c.Name, &c.Kind, &c.Abstract, &c.FullyImplemented,
		&linearized, &c.Location.Start, &c.Location.End,
	)
	if err != nil {
		return Contract{}, fmt.Errorf("scan contract: %w", err)
	}
	c.Linearized, err = unmarshalLinearized(linearized)
	if err != nil {
		return Contract{}, fmt.Errorf("contract %s: %w", c.Name, err)
	}
	return c, nil
}

// Bases returns the direct inheritance edges of child in clause order.
func (s *Store) Bases(ctx context.Context, unit resolver.UnitID, child int64) ([]Edge, error) {
	return s.queryEdges(ctx, `
		SELECT child_id, position, base_id, file FROM inheritance
		WHERE unit_id = ? AND child_id = ?
		ORDER BY position ASC
	`, string(unit), child)
}

func (s *Store) queryEdges(ctx context.Context, query string, args ...any) ([]Edge, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query inheritance: %w", err)
	}
	defer rows.Close()

	edges := []Edge{}
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.ChildID, &e.Position, &e.BaseID, &e.File); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inheritance: %w", err)
	}
	return edges, nil
}

// FindDeclarations returns the declarations of unit whose name or
// canonical name is name.
func (s *Store) FindDeclarations(ctx context.Context, unit resolver.UnitID, name string) ([]Declaration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file, contract_id, node_type, name, canonical_name,
		       start_offset, end_offset, name_start, name_end
		FROM declarations
		WHERE unit_id = ? AND (name = ?2 OR canonical_name = ?2)
		ORDER BY file COLLATE BINARY ASC, start_offset ASC, id ASC
	`, string(unit), name)
	if err != nil {
		return nil, fmt.Errorf("query declarations: %w", err)
	}
	defer rows.Close()

	decls := []Declaration{}
	for rows.Next() {
		var d Declaration
		var contractID sql.NullInt64
		err := rows.Scan(
			&d.ID, &d.File, &contractID, &d.NodeType, &d.Name, &d.CanonicalName,
			&d.Location.Start, &d.Location.End, &d.NameLocation.Start, &d.NameLocation.End,
		)
		if err != nil {
			return nil, fmt.Errorf("scan declaration: %w", err)
		}
		if contractID.Valid {
			id := contractID.Int64
			d.ContractID = &id
		}
		decls = append(decls, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate declarations: %w", err)
	}
	return decls, nil
}
