// Package ordering keeps modules and contents in a stable per-parent sequence.
//
// Positions live in the sort_order column. A new record without a position is appended after
// its siblings; afterwards positions only change through Reorder.
package ordering

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"
)

// Column is the position column shared by every ordered table.
const Column = "sort_order"

// Scope selects a sibling set: rows whose Column equals Parent.
type Scope struct {
	Column string
	Parent uint
}

// Next returns the position for a new record in scope: the highest existing position plus one,
// or 0 when the scope is empty. A zero Parent (parent not saved yet) counts as an empty scope.
//
// Next reads then the caller writes, with nothing serializing the two. Two records created at
// the same time under one parent can receive the same position. Positions only drive display
// order, so the race is accepted and left visible here rather than papered over.
func Next(db *gorm.DB, model interface{}, scope Scope) (int, error) {
	if scope.Parent == 0 {
		return 0, nil
	}

	var max sql.NullInt64
	err := db.Session(&gorm.Session{NewDB: true}).
		Model(model).
		Where(scope.Column+" = ?", scope.Parent).
		Select("MAX(" + Column + ")").
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("max %s: %w", Column, err)
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

// Assign fills *pos with Next when it is nil. An explicit position is kept as given.
func Assign(db *gorm.DB, model interface{}, scope Scope, pos **int) error {
	if *pos != nil {
		return nil
	}
	next, err := Next(db, model, scope)
	if err != nil {
		return err
	}
	*pos = &next
	return nil
}

// Ownership limits a reorder to rows whose Column points at a parent the caller owns.
// Parents is a subquery selecting the owned parent ids.
type Ownership struct {
	Column  string
	Parents *gorm.DB
}

// Reorder writes each id's new position, one independent UPDATE per entry. Rows outside the
// caller's ownership, or that do not exist, match nothing and are skipped without error.
// There is no surrounding transaction: an error stops the loop and earlier updates stay.
func Reorder(db *gorm.DB, model interface{}, owner Ownership, positions map[uint]int) (int64, error) {
	var affected int64
	for id, pos := range positions {
		res := db.Model(model).
			Where("id = ? AND "+owner.Column+" IN (?)", id, owner.Parents).
			Update(Column, pos)
		if res.Error != nil {
			return affected, fmt.Errorf("reorder id %d: %w", id, res.Error)
		}
		affected += res.RowsAffected
	}
	return affected, nil
}

// ErrMalformedPayload is returned by ParsePayload for any body it cannot accept.
var ErrMalformedPayload = errors.New("reorder payload must be a JSON object of id to position")

// ParsePayload decodes a reorder body such as {"3": 0, "7": 1}. Anything that is not an object
// of positive integer ids to non-negative integer positions is rejected.
func ParsePayload(body []byte) (map[uint]int, error) {
	var raw map[string]json.Number
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if raw == nil {
		return nil, ErrMalformedPayload
	}

	positions := make(map[uint]int, len(raw))
	for key, value := range raw {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("%w: invalid id %q", ErrMalformedPayload, key)
		}
		pos, err := strconv.Atoi(value.String())
		if err != nil || pos < 0 {
			return nil, fmt.Errorf("%w: invalid position %q for id %s", ErrMalformedPayload, value.String(), key)
		}
		positions[uint(id)] = pos
	}
	return positions, nil
}
