package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/solir/internal/ast"
	"github.com/roach88/solir/internal/ir"
	"github.com/roach88/solir/internal/resolver"
)

// WriteUnit records a compilation unit and every one of its source units
// in one transaction. Files already indexed for the unit are replaced.
// Re-writing a unit moves it to the end of the Units order.
func (s *Store) WriteUnit(ctx context.Context, unit resolver.UnitID, sessionID string, units []*ir.SourceUnit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write unit: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO units (id, session_id, seq)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM units))
		ON CONFLICT(id) DO UPDATE SET
			session_id = excluded.session_id,
			seq = excluded.seq
	`, string(unit), sessionID)
	if err != nil {
		return fmt.Errorf("write unit: %w", err)
	}

	for _, su := range units {
		if err := writeFile(ctx, tx, unit, su); err != nil {
			return fmt.Errorf("write unit: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write unit: commit: %w", err)
	}
	return nil
}

// WriteFile replaces the rows of one source unit. The unit must have been
// written with WriteUnit first.
func (s *Store) WriteFile(ctx context.Context, unit resolver.UnitID, su *ir.SourceUnit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write file: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := writeFile(ctx, tx, unit, su); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write file: commit: %w", err)
	}
	return nil
}

func writeFile(ctx context.Context, tx *sql.Tx, unit resolver.UnitID, su *ir.SourceUnit) error {
	path := su.File()

	// cascades to contracts, inheritance and declarations
	if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE unit_id = ? AND path = ?`, string(unit), path); err != nil {
		return fmt.Errorf("%s: clear: %w", path, err)
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO files (unit_id, path, source_unit_id, license)
		VALUES (?, ?, ?, ?)
	`, string(unit), path, int64(su.ID()), su.License())
	if err != nil {
		return fmt.Errorf("%s: insert file: %w", path, err)
	}

	for _, c := range su.Contracts() {
		if err := writeContract(ctx, tx, unit, c); err != nil {
			return fmt.Errorf("%s: contract %s: %w", path, c.Name(), err)
		}
	}

	for d := range su.Declarations() {
		if err := writeDeclaration(ctx, tx, unit, d); err != nil {
			return fmt.Errorf("%s: declaration %s: %w", path, d.CanonicalName(), err)
		}
	}
	return nil
}

func writeContract(ctx context.Context, tx *sql.Tx, unit resolver.UnitID, c *ir.ContractDefinition) error {
	linearized, err := marshalLinearized(c.LinearizedBaseContractIDs())
	if err != nil {
		return err
	}
	loc := c.ByteLocation()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO contracts
		(unit_id, id, file, name, kind, abstract, fully_implemented, linearized, start_offset, end_offset)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		string(unit),
		int64(c.ID()),
		c.File(),
		c.Name(),
		string(c.Kind()),
		c.Abstract(),
		c.FullyImplemented().String(),
		linearized,
		loc.Start,
		loc.End,
	)
	if err != nil {
		return fmt.Errorf("insert contract: %w", err)
	}

	for i, spec := range c.BaseContracts() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO inheritance (unit_id, child_id, position, base_id, file)
			VALUES (?, ?, ?, ?, ?)
		`, string(unit), int64(c.ID()), i, int64(spec.BaseID()), c.File())
		if err != nil {
			return fmt.Errorf("insert inheritance edge %d: %w", i, err)
		}
	}
	return nil
}

func writeDeclaration(ctx context.Context, tx *sql.Tx, unit resolver.UnitID, d ir.Declaration) error {
	var contractID sql.NullInt64
	if c := enclosingContract(d); c != nil {
		contractID = sql.NullInt64{Int64: int64(c.ID()), Valid: true}
	}
	loc, nameLoc := d.ByteLocation(), d.NameLocation()

	_, err := tx.ExecContext(ctx, `
		INSERT INTO declarations
		(unit_id, id, file, contract_id, node_type, name, canonical_name,
		 start_offset, end_offset, name_start, name_end)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		string(unit),
		nodeID(d),
		d.File(),
		contractID,
		ir.TypeName(d),
		d.Name(),
		d.CanonicalName(),
		loc.Start,
		loc.End,
		nameLoc.Start,
		nameLoc.End,
	)
	if err != nil {
		return fmt.Errorf("insert declaration: %w", err)
	}
	return nil
}

// enclosingContract returns the nearest contract above d, or nil for
// file-level declarations.
func enclosingContract(d ir.Node) *ir.ContractDefinition {
	for n := d.Parent(); n != nil; n = n.Parent() {
		if c, ok := n.(*ir.ContractDefinition); ok {
			return c
		}
	}
	return nil
}

func nodeID(n ir.Node) int64 {
	if id, ok := n.Raw().(ast.Identified); ok {
		return int64(id.NodeID())
	}
	return -1
}

// DeleteFile removes everything path contributed to unit. It reports
// whether the file was indexed.
func (s *Store) DeleteFile(ctx context.Context, unit resolver.UnitID, path string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE unit_id = ? AND path = ?`, string(unit), path)
	if err != nil {
		return false, fmt.Errorf("delete file %s: %w", path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete file %s: rows affected: %w", path, err)
	}
	return n > 0, nil
}

// DeleteUnit removes a unit and all of its rows.
func (s *Store) DeleteUnit(ctx context.Context, unit resolver.UnitID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM units WHERE id = ?`, string(unit)); err != nil {
		return fmt.Errorf("delete unit: %w", err)
	}
	return nil
}
