package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/proajob/proajob/internal/selection"
	"github.com/proajob/proajob/internal/types"
)

// GetPostulanteIDByUser returns the applicant record of a user, or 0 when the
// user has none.
func (db *DB) GetPostulanteIDByUser(ctx context.Context, userID int) (int, error) {
	var id int
	err := db.pool.QueryRow(ctx,
		`SELECT id_postulante FROM postulante WHERE id_usuario = $1`, userID,
	).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get postulante: %w", err)
	}
	return id, nil
}

// UpsertPostulante attaches an applicant record to a user and returns its id.
func (db *DB) UpsertPostulante(ctx context.Context, userID int, nombres, apellidos string) (int, error) {
	var id int
	err := db.pool.QueryRow(ctx,
		`INSERT INTO postulante (id_usuario, nombres, apellidos) VALUES ($1, $2, $3)
		 ON CONFLICT (id_usuario) DO UPDATE SET nombres = EXCLUDED.nombres, apellidos = EXCLUDED.apellidos
		 RETURNING id_postulante`,
		userID, nombres, apellidos,
	).Scan(&id)
	if err != nil {
		return 0, classify("failed to upsert postulante", err)
	}
	return id, nil
}

// PostulanteOwner returns the user owning an applicant record, or 0 when the
// record does not exist.
func (db *DB) PostulanteOwner(ctx context.Context, postulanteID int) (int, error) {
	var userID int
	err := db.pool.QueryRow(ctx,
		`SELECT id_usuario FROM postulante WHERE id_postulante = $1`, postulanteID,
	).Scan(&userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get postulante owner: %w", err)
	}
	return userID, nil
}

// SaveFormacion stores an academic formation, upserts the applicant's
// languages and, when present, inserts one work experience, all in one
// transaction. It returns the new formation id.
func (db *DB) SaveFormacion(ctx context.Context, req *types.FormacionRequest) (int, error) {
	ini, err := parseDate(req.FechaIni)
	if err != nil {
		return 0, err
	}
	fin, err := parseDate(req.FechaFin)
	if err != nil {
		return 0, err
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer db.rollback(ctx, tx)

	var id int
	err = tx.QueryRow(ctx,
		`INSERT INTO formacion_academica (id_postulante, id_titulo, institucion, estado, fechaini, fechafin, titulo_acreditado)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id_formacion`,
		req.PostulanteID, req.TituloID, req.Institucion, req.Estado, ini, fin, req.TituloAcreditado,
	).Scan(&id)
	if err != nil {
		return 0, classify("failed to insert formacion", err)
	}

	for _, l := range req.Idiomas {
		if _, err := tx.Exec(ctx,
			`INSERT INTO postulante_idioma (id_postulante, id_idioma, niveloral, nivelescrito)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id_postulante, id_idioma) DO UPDATE SET niveloral = EXCLUDED.niveloral, nivelescrito = EXCLUDED.nivelescrito`,
			req.PostulanteID, l.ID, l.Oral, l.Written,
		); err != nil {
			return 0, classify(fmt.Sprintf("failed to save idioma %d", l.ID), err)
		}
	}

	if req.Experiencia != nil {
		if _, err := insertExperiencia(ctx, tx, req.PostulanteID, *req.Experiencia); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit formacion: %w", err)
	}
	return id, nil
}

// CreateExperiencia stores a work experience and returns its id.
func (db *DB) CreateExperiencia(ctx context.Context, postulanteID int, exp selection.Experience) (int, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer db.rollback(ctx, tx)

	id, err := insertExperiencia(ctx, tx, postulanteID, exp)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit experiencia: %w", err)
	}
	return id, nil
}

func insertExperiencia(ctx context.Context, tx pgx.Tx, postulanteID int, exp selection.Experience) (int, error) {
	ini, err := parseDate(exp.Start)
	if err != nil {
		return 0, err
	}
	fin, err := parseDate(exp.End)
	if err != nil {
		return 0, err
	}
	var id int
	err = tx.QueryRow(ctx,
		`INSERT INTO formacion_profesional (id_postulante, empresa, puesto, area, fechaini, fechafin, descripcion, referencia, contacto)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id_formacion_pro`,
		postulanteID, exp.Company, exp.Position, exp.Area, ini, fin, exp.Description, exp.Reference, exp.Contact,
	).Scan(&id)
	if err != nil {
		return 0, classify("failed to insert experiencia", err)
	}
	return id, nil
}

// UpdateExperiencia replaces a stored work experience. It returns
// ErrNotFound when no experience has exp.ID.
func (db *DB) UpdateExperiencia(ctx context.Context, exp selection.Experience) error {
	ini, err := parseDate(exp.Start)
	if err != nil {
		return err
	}
	fin, err := parseDate(exp.End)
	if err != nil {
		return err
	}
	result, err := db.pool.Exec(ctx,
		`UPDATE formacion_profesional
		 SET empresa = $2, puesto = $3, area = $4, fechaini = $5, fechafin = $6,
		     descripcion = $7, referencia = $8, contacto = $9
		 WHERE id_formacion_pro = $1`,
		exp.ID, exp.Company, exp.Position, exp.Area, ini, fin, exp.Description, exp.Reference, exp.Contact,
	)
	if err != nil {
		return classify("failed to update experiencia", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("experiencia %d: %w", exp.ID, ErrNotFound)
	}
	return nil
}

// ExperienciaOwner returns the applicant owning a work experience, or 0 when
// it does not exist.
func (db *DB) ExperienciaOwner(ctx context.Context, experienciaID int) (int, error) {
	var postulanteID int
	err := db.pool.QueryRow(ctx,
		`SELECT id_postulante FROM formacion_profesional WHERE id_formacion_pro = $1`, experienciaID,
	).Scan(&postulanteID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get experiencia owner: %w", err)
	}
	return postulanteID, nil
}

// GetPerfil returns the full profile of an applicant, or nil when it does
// not exist.
func (db *DB) GetPerfil(ctx context.Context, postulanteID int) (*types.Perfil, error) {
	p := types.Perfil{
		Formaciones:  []types.Formacion{},
		Idiomas:      []selection.Language{},
		Experiencias: []selection.Experience{},
	}
	err := db.pool.QueryRow(ctx,
		`SELECT id_postulante, id_usuario, nombres, apellidos FROM postulante WHERE id_postulante = $1`,
		postulanteID,
	).Scan(&p.PostulanteID, &p.UsuarioID, &p.Nombres, &p.Apellidos)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get perfil: %w", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT f.id_formacion, f.id_titulo, t.titulo, t.nivel_educacion, t.campo_amplio, f.institucion, f.estado,
		        to_char(f.fechaini, 'YYYY-MM-DD'), COALESCE(to_char(f.fechafin, 'YYYY-MM-DD'), ''), f.titulo_acreditado
		 FROM formacion_academica f JOIN titulo t ON t.id = f.id_titulo
		 WHERE f.id_postulante = $1 ORDER BY f.fechaini DESC`,
		postulanteID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list formaciones: %w", err)
	}
	for rows.Next() {
		var f types.Formacion
		if err := rows.Scan(&f.ID, &f.TituloID, &f.Titulo, &f.Nivel, &f.Campo, &f.Institucion, &f.Estado,
			&f.FechaIni, &f.FechaFin, &f.TituloAcreditado); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan formacion: %w", err)
		}
		p.Formaciones = append(p.Formaciones, f)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate formaciones: %w", err)
	}

	rows, err = db.pool.Query(ctx,
		`SELECT pi.id_idioma, i.nombre, pi.niveloral, pi.nivelescrito
		 FROM postulante_idioma pi JOIN idioma i ON i.id_idioma = pi.id_idioma
		 WHERE pi.id_postulante = $1 ORDER BY i.nombre`,
		postulanteID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list idiomas: %w", err)
	}
	for rows.Next() {
		var l selection.Language
		if err := rows.Scan(&l.ID, &l.Name, &l.Oral, &l.Written); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan idioma: %w", err)
		}
		p.Idiomas = append(p.Idiomas, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate idiomas: %w", err)
	}

	rows, err = db.pool.Query(ctx,
		`SELECT id_formacion_pro, empresa, puesto, area, to_char(fechaini, 'YYYY-MM-DD'), to_char(fechafin, 'YYYY-MM-DD'),
		        descripcion, referencia, contacto
		 FROM formacion_profesional WHERE id_postulante = $1 ORDER BY fechaini DESC`,
		postulanteID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list experiencias: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e selection.Experience
		if err := rows.Scan(&e.ID, &e.Company, &e.Position, &e.Area, &e.Start, &e.End,
			&e.Description, &e.Reference, &e.Contact); err != nil {
			return nil, fmt.Errorf("failed to scan experiencia: %w", err)
		}
		p.Experiencias = append(p.Experiencias, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate experiencias: %w", err)
	}
	return &p, nil
}
