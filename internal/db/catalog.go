package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/proajob/proajob/internal/catalog"
	"github.com/proajob/proajob/internal/types"
)

// -----------------------------------------------------------------------------
// Degree titles
// -----------------------------------------------------------------------------

// ListLevels returns the distinct education levels in alphabetical order.
func (db *DB) ListLevels(ctx context.Context) ([]string, error) {
	return db.listStrings(ctx, "list levels",
		`SELECT DISTINCT nivel_educacion FROM titulo ORDER BY nivel_educacion`)
}

// ListFields returns the fields offered under level. An unknown level
// yields an empty list.
func (db *DB) ListFields(ctx context.Context, level string) ([]string, error) {
	return db.listStrings(ctx, "list fields",
		`SELECT DISTINCT campo_amplio FROM titulo WHERE nivel_educacion = $1 ORDER BY campo_amplio`,
		level)
}

// ListTitles returns the titles of a (level, field) pair.
func (db *DB) ListTitles(ctx context.Context, level, field string) ([]catalog.Title, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, titulo FROM titulo
		 WHERE nivel_educacion = $1 AND campo_amplio = $2
		 ORDER BY titulo`,
		level, field,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list titles: %w", err)
	}
	return scanTitles(rows)
}

// GetCatalog returns the unfiltered catalog: every level, every field and
// every title.
func (db *DB) GetCatalog(ctx context.Context) (*catalog.Catalog, error) {
	levels, err := db.ListLevels(ctx)
	if err != nil {
		return nil, err
	}
	fields, err := db.listStrings(ctx, "list all fields",
		`SELECT DISTINCT campo_amplio FROM titulo ORDER BY campo_amplio`)
	if err != nil {
		return nil, err
	}
	rows, err := db.pool.Query(ctx, `SELECT id, titulo FROM titulo ORDER BY titulo`)
	if err != nil {
		return nil, fmt.Errorf("failed to list all titles: %w", err)
	}
	titles, err := scanTitles(rows)
	if err != nil {
		return nil, err
	}
	return &catalog.Catalog{Levels: levels, Fields: fields, Titles: titles}, nil
}

// UpsertTitle registers a title and returns its id. Registering an existing
// (level, field, title) returns the existing id.
func (db *DB) UpsertTitle(ctx context.Context, level, field, title string) (int, error) {
	var id int
	err := db.pool.QueryRow(ctx,
		`INSERT INTO titulo (nivel_educacion, campo_amplio, titulo)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (nivel_educacion, campo_amplio, titulo) DO UPDATE SET titulo = EXCLUDED.titulo
		 RETURNING id`,
		level, field, title,
	).Scan(&id)
	if err != nil {
		return 0, classify("failed to upsert title", err)
	}
	return id, nil
}

func scanTitles(rows pgx.Rows) ([]catalog.Title, error) {
	defer rows.Close()
	titles := []catalog.Title{}
	for rows.Next() {
		var t catalog.Title
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan title: %w", err)
		}
		titles = append(titles, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate titles: %w", err)
	}
	return titles, nil
}

func (db *DB) listStrings(ctx context.Context, op, query string, args ...any) ([]string, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to %s: %w", op, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Areas, criteria and languages
// -----------------------------------------------------------------------------

// ListAreas returns every business area.
func (db *DB) ListAreas(ctx context.Context) ([]types.Area, error) {
	rows, err := db.pool.Query(ctx, `SELECT id_area, nombre_area FROM areas ORDER BY nombre_area`)
	if err != nil {
		return nil, fmt.Errorf("failed to list areas: %w", err)
	}
	defer rows.Close()

	areas := []types.Area{}
	for rows.Next() {
		var a types.Area
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("failed to scan area: %w", err)
		}
		areas = append(areas, a)
	}
	return areas, rows.Err()
}

// UpsertArea registers an area and returns its id.
func (db *DB) UpsertArea(ctx context.Context, name string) (int, error) {
	var id int
	err := db.pool.QueryRow(ctx,
		`INSERT INTO areas (nombre_area) VALUES ($1)
		 ON CONFLICT (nombre_area) DO UPDATE SET nombre_area = EXCLUDED.nombre_area
		 RETURNING id_area`,
		name,
	).Scan(&id)
	if err != nil {
		return 0, classify("failed to upsert area", err)
	}
	return id, nil
}

// ListCriterios returns the evaluation criteria catalog.
func (db *DB) ListCriterios(ctx context.Context) ([]types.Criterio, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id_criterio, criterio, descripcion, opciones FROM criterio ORDER BY id_criterio`)
	if err != nil {
		return nil, fmt.Errorf("failed to list criterios: %w", err)
	}
	defer rows.Close()

	criterios := []types.Criterio{}
	for rows.Next() {
		var c types.Criterio
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Options); err != nil {
			return nil, fmt.Errorf("failed to scan criterio: %w", err)
		}
		criterios = append(criterios, c)
	}
	return criterios, rows.Err()
}

// UpsertCriterio registers a criterion, replacing description and options of
// an existing one with the same name, and returns its id.
func (db *DB) UpsertCriterio(ctx context.Context, req *types.CreateCriterioRequest) (int, error) {
	options := req.Options
	if options == nil {
		options = []string{}
	}
	var id int
	err := db.pool.QueryRow(ctx,
		`INSERT INTO criterio (criterio, descripcion, opciones) VALUES ($1, $2, $3)
		 ON CONFLICT (criterio) DO UPDATE SET descripcion = EXCLUDED.descripcion, opciones = EXCLUDED.opciones
		 RETURNING id_criterio`,
		req.Name, req.Description, options,
	).Scan(&id)
	if err != nil {
		return 0, classify("failed to upsert criterio", err)
	}
	return id, nil
}

// ListIdiomas returns the language catalog.
func (db *DB) ListIdiomas(ctx context.Context) ([]types.Idioma, error) {
	rows, err := db.pool.Query(ctx, `SELECT id_idioma, nombre FROM idioma ORDER BY nombre`)
	if err != nil {
		return nil, fmt.Errorf("failed to list idiomas: %w", err)
	}
	defer rows.Close()

	idiomas := []types.Idioma{}
	for rows.Next() {
		var i types.Idioma
		if err := rows.Scan(&i.ID, &i.Name); err != nil {
			return nil, fmt.Errorf("failed to scan idioma: %w", err)
		}
		idiomas = append(idiomas, i)
	}
	return idiomas, rows.Err()
}

// UpsertIdioma registers a language and returns its id.
func (db *DB) UpsertIdioma(ctx context.Context, name string) (int, error) {
	var id int
	err := db.pool.QueryRow(ctx,
		`INSERT INTO idioma (nombre) VALUES ($1)
		 ON CONFLICT (nombre) DO UPDATE SET nombre = EXCLUDED.nombre
		 RETURNING id_idioma`,
		name,
	).Scan(&id)
	if err != nil {
		return 0, classify("failed to upsert idioma", err)
	}
	return id, nil
}
