package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lawnchairsociety/wavefield/internal/logger"
	"github.com/lawnchairsociety/wavefield/internal/wfc"
)

var (
	// ErrSectorNotFound is returned when no sector is stored at a location
	ErrSectorNotFound = errors.New("store: sector not found")

	// ErrNotCollapsed is returned when saving a sector with undecided cells
	ErrNotCollapsed = errors.New("store: sector is not collapsed")
)

// SaveSector stores a collapsed sector under the catalog's tileset name,
// replacing anything already stored at the same location.
func (s *Store) SaveSector(catalog *wfc.Catalog, sector *wfc.Sector) error {
	tiles, ok := sector.Tiles()
	if !ok {
		return fmt.Errorf("%w: (%d, %d)", ErrNotCollapsed, sector.X, sector.Y)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.deleteSector(tx, catalog.Name(), sector.X, sector.Y); err != nil {
		return err
	}

	id, err := s.insertID(tx,
		"INSERT INTO sectors (tileset, x, y, width, height) VALUES (?, ?, ?, ?, ?)",
		catalog.Name(), sector.X, sector.Y, sector.Width(), sector.Height())
	if err != nil {
		return fmt.Errorf("failed to insert sector: %w", err)
	}

	stmt, err := tx.Prepare(s.qb.Build("INSERT INTO sector_cells (sector_id, idx, tile_id, rotation) VALUES (?, ?, ?, ?)"))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, h := range tiles {
		v, ok := catalog.Variant(h)
		if !ok {
			return fmt.Errorf("cell %d holds unknown tile handle %d", i, h)
		}
		if _, err := stmt.Exec(id, i, catalog.ClassID(v.Class), v.Rotation); err != nil {
			return fmt.Errorf("failed to insert cell %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	logger.Debug("Sector saved", "tileset", catalog.Name(), "x", sector.X, "y", sector.Y, "cells", len(tiles))
	return nil
}

// LoadSector reads a stored sector and restores it into the field. The
// stored size must match the field's sector size.
func (s *Store) LoadSector(field *wfc.Field, x, y int32) (*wfc.Sector, error) {
	catalog := field.Catalog()
	cfg := field.Config()

	var id int64
	var width, height int
	err := s.db.QueryRow(
		s.qb.Build("SELECT id, width, height FROM sectors WHERE tileset = ? AND x = ? AND y = ?"),
		catalog.Name(), x, y,
	).Scan(&id, &width, &height)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q (%d, %d)", ErrSectorNotFound, catalog.Name(), x, y)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sector: %w", err)
	}

	if width != cfg.SectorWidth || height != cfg.SectorHeight {
		return nil, fmt.Errorf("%w: stored sector (%d, %d) is %dx%d, field uses %dx%d",
			wfc.ErrInvalidSize, x, y, width, height, cfg.SectorWidth, cfg.SectorHeight)
	}

	tiles, err := s.loadCells(catalog, id, width*height)
	if err != nil {
		return nil, fmt.Errorf("sector (%d, %d): %w", x, y, err)
	}

	return field.RestoreSector(x, y, tiles)
}

func (s *Store) loadCells(catalog *wfc.Catalog, sectorID int64, n int) ([]wfc.TileHandle, error) {
	rows, err := s.db.Query(
		s.qb.Build("SELECT idx, tile_id, rotation FROM sector_cells WHERE sector_id = ? ORDER BY idx"),
		sectorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query cells: %w", err)
	}
	defer rows.Close()

	tiles := make([]wfc.TileHandle, n)
	seen := 0
	for rows.Next() {
		var idx, rotation int
		var tileID string
		if err := rows.Scan(&idx, &tileID, &rotation); err != nil {
			return nil, fmt.Errorf("failed to scan cell: %w", err)
		}
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("cell index %d out of range", idx)
		}

		class, ok := catalog.ClassHandle(tileID)
		if !ok {
			return nil, &wfc.UnresolvedReferenceError{Kind: "stored tile", ID: tileID}
		}
		h, ok := catalog.VariantOf(class, rotation)
		if !ok {
			return nil, fmt.Errorf("tile %q has no rotation %d", tileID, rotation)
		}
		tiles[idx] = h
		seen++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if seen != n {
		return nil, fmt.Errorf("%d of %d cells stored", seen, n)
	}
	return tiles, nil
}

// ListSectors returns the stored sector coordinates of a tileset, row by row.
func (s *Store) ListSectors(tileset string) ([]wfc.SectorCoord, error) {
	rows, err := s.db.Query(
		s.qb.Build("SELECT x, y FROM sectors WHERE tileset = ? ORDER BY y, x"),
		tileset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sectors: %w", err)
	}
	defer rows.Close()

	var coords []wfc.SectorCoord
	for rows.Next() {
		var sc wfc.SectorCoord
		if err := rows.Scan(&sc.X, &sc.Y); err != nil {
			return nil, fmt.Errorf("failed to scan sector: %w", err)
		}
		coords = append(coords, sc)
	}
	return coords, rows.Err()
}

// DeleteSector removes a stored sector. Deleting a missing sector is not an error.
func (s *Store) DeleteSector(tileset string, x, y int32) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.deleteSector(tx, tileset, x, y); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) deleteSector(tx *sql.Tx, tileset string, x, y int32) error {
	if _, err := tx.Exec(
		s.qb.Build("DELETE FROM sector_cells WHERE sector_id IN (SELECT id FROM sectors WHERE tileset = ? AND x = ? AND y = ?)"),
		tileset, x, y,
	); err != nil {
		return fmt.Errorf("failed to clear cells: %w", err)
	}
	if _, err := tx.Exec(
		s.qb.Build("DELETE FROM sectors WHERE tileset = ? AND x = ? AND y = ?"),
		tileset, x, y,
	); err != nil {
		return fmt.Errorf("failed to clear sector: %w", err)
	}
	return nil
}

// insertID runs an INSERT and returns the new row id
func (s *Store) insertID(tx *sql.Tx, query string, args ...any) (int64, error) {
	query = s.qb.BuildWithReturning(query, "id")
	if s.dialect.SupportsLastInsertID() {
		res, err := tx.Exec(query, args...)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}

	var id int64
	err := tx.QueryRow(query, args...).Scan(&id)
	return id, err
}
