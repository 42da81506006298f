package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/proajob/proajob/internal/types"
)

// GetEmpresaIDByUser returns the company owned by a user, or 0 when the user
// has none.
func (db *DB) GetEmpresaIDByUser(ctx context.Context, userID int) (int, error) {
	var id int
	err := db.pool.QueryRow(ctx,
		`SELECT id_empresa FROM empresa WHERE id_usuario = $1`, userID,
	).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get empresa: %w", err)
	}
	return id, nil
}

// UpsertEmpresa attaches a company to a user and returns its id.
func (db *DB) UpsertEmpresa(ctx context.Context, userID int, nombreComercial, logo string) (int, error) {
	var id int
	err := db.pool.QueryRow(ctx,
		`INSERT INTO empresa (id_usuario, nombre_comercial, logo) VALUES ($1, $2, $3)
		 ON CONFLICT (id_usuario) DO UPDATE SET nombre_comercial = EXCLUDED.nombre_comercial, logo = EXCLUDED.logo
		 RETURNING id_empresa`,
		userID, nombreComercial, logo,
	).Scan(&id)
	if err != nil {
		return 0, classify("failed to upsert empresa", err)
	}
	return id, nil
}

// CreateOferta stores an offer with its required titles and evaluation
// criteria in one transaction and returns the new offer id.
func (db *DB) CreateOferta(ctx context.Context, empresaID, userID int, req *types.CreateOfertaRequest) (int, error) {
	fechaMax, err := parseDate(req.FechaMaxPos)
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
		`INSERT INTO oferta (id_empresa, id_area, cargo, experiencia, objetivo_cargo, sueldo,
		                     funciones, fecha_max_pos, carga_horaria, modalidad, detalles_adicionales,
		                     correo_contacto, numero_contacto, mostrar_sueldo, mostrar_empresa, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING id_oferta`,
		empresaID, req.AreaID, req.Cargo, req.Experiencia, req.ObjetivoCargo, req.Sueldo,
		req.Funciones, fechaMax, req.CargaHoraria, req.Modalidad, req.DetallesAdicionales,
		req.CorreoContacto, req.NumeroContacto, req.MostrarSueldo, req.MostrarEmpresa, userID,
	).Scan(&id)
	if err != nil {
		return 0, classify("failed to insert oferta", err)
	}

	for _, t := range req.Titulos {
		if _, err := tx.Exec(ctx,
			`INSERT INTO titulo_oferta (id_oferta, id_titulo) VALUES ($1, $2)`,
			id, t.ID,
		); err != nil {
			return 0, classify(fmt.Sprintf("failed to attach titulo %d", t.ID), err)
		}
	}

	for _, c := range req.Criterios {
		if _, err := tx.Exec(ctx,
			`INSERT INTO criterio_oferta (id_oferta, id_criterio, valor, prioridad) VALUES ($1, $2, $3, $4)`,
			id, c.ID, c.Value, int(c.Priority),
		); err != nil {
			return 0, classify(fmt.Sprintf("failed to attach criterio %d", c.ID), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit oferta: %w", err)
	}
	return id, nil
}

// OfertaFilters holds optional filters for listing offers
type OfertaFilters struct {
	AreaID    int
	Modalidad string
	Limit     int
}

// ListOfertas returns offer summaries, newest first.
func (db *DB) ListOfertas(ctx context.Context, filters OfertaFilters) ([]types.OfertaSummary, error) {
	if filters.Limit == 0 {
		filters.Limit = 100
	}

	query := `SELECT o.id_oferta, o.estado, o.cargo, a.nombre_area, e.id_empresa, e.nombre_comercial, e.logo,
		to_char(o.fecha_publi, 'YYYY-MM-DD'), o.mostrar_empresa, o.modalidad, o.carga_horaria, o.experiencia
		FROM oferta o
		JOIN areas a ON a.id_area = o.id_area
		JOIN empresa e ON e.id_empresa = o.id_empresa
		WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.AreaID != 0 {
		query += fmt.Sprintf(" AND o.id_area = $%d", argNum)
		args = append(args, filters.AreaID)
		argNum++
	}
	if filters.Modalidad != "" {
		query += fmt.Sprintf(" AND o.modalidad = $%d", argNum)
		args = append(args, filters.Modalidad)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY o.fecha_publi DESC, o.id_oferta DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ofertas: %w", err)
	}
	defer rows.Close()

	ofertas := []types.OfertaSummary{}
	for rows.Next() {
		var o types.OfertaSummary
		if err := rows.Scan(&o.ID, &o.Estado, &o.Cargo, &o.Area.Name, &o.Empresa.ID, &o.Empresa.NombreComercial,
			&o.Empresa.Logo, &o.FechaPubli, &o.MostrarEmpresa, &o.Modalidad, &o.CargaHoraria, &o.Experiencia); err != nil {
			return nil, fmt.Errorf("failed to scan oferta: %w", err)
		}
		ofertas = append(ofertas, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ofertas: %w", err)
	}
	return ofertas, nil
}
