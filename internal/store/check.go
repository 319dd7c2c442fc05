package store

import (
	"context"
	"fmt"

	"github.com/roach88/solir/internal/resolver"
)

// UnitState summarizes the index of one unit.
type UnitState struct {
	Unit         resolver.UnitID `json:"unit"`
	Files        int             `json:"files"`
	Contracts    int             `json:"contracts"`
	Declarations int             `json:"declarations"`
	// DanglingEdges are inheritance edges whose base is not indexed,
	// left behind when a base file was deleted without its importers.
	DanglingEdges []Edge `json:"dangling_edges"`
	// IsComplete is true when the unit has files and no dangling edges.
	IsComplete bool `json:"is_complete"`
}

// Check counts the rows of unit and looks for dangling inheritance edges.
func (s *Store) Check(ctx context.Context, unit resolver.UnitID) (UnitState, error) {
	state := UnitState{Unit: unit}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM files WHERE unit_id = ?1),
			(SELECT COUNT(*) FROM contracts WHERE unit_id = ?1),
			(SELECT COUNT(*) FROM declarations WHERE unit_id = ?1)
	`, string(unit)).Scan(&state.Files, &state.Contracts, &state.Declarations)
	if err != nil {
		return state, fmt.Errorf("check unit: %w", err)
	}

	state.DanglingEdges, err = s.queryEdges(ctx, `
		SELECT i.child_id, i.position, i.base_id, i.file
		FROM inheritance i
		LEFT JOIN contracts c ON c.unit_id = i.unit_id AND c.id = i.base_id
		WHERE i.unit_id = ? AND c.id IS NULL
		ORDER BY i.file COLLATE BINARY ASC, i.child_id ASC, i.position ASC
	`, string(unit))
	if err != nil {
		return state, fmt.Errorf("check unit: %w", err)
	}

	state.IsComplete = state.Files > 0 && len(state.DanglingEdges) == 0
	return state, nil
}

// FindIncompleteUnits returns the state of every unit with dangling edges
// or no files, in Units order.
func (s *Store) FindIncompleteUnits(ctx context.Context) ([]UnitState, error) {
	units, err := s.Units(ctx)
	if err != nil {
		return nil, fmt.Errorf("find incomplete units: %w", err)
	}

	out := []UnitState{}
	for _, u := range units {
		state, err := s.Check(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("find incomplete units: %w", err)
		}
		if !state.IsComplete {
			out = append(out, state)
		}
	}
	return out, nil
}
