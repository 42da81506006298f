package server

import (
	"context"

	"github.com/proajob/proajob/internal/catalog"
	"github.com/proajob/proajob/internal/db"
	"github.com/proajob/proajob/internal/selection"
	"github.com/proajob/proajob/internal/types"
)

// Store is the persistence the handlers need. *db.DB implements it.
type Store interface {
	// Users
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	ListUsersWithRoles(ctx context.Context) ([]types.User, error)
	ListRoles(ctx context.Context) ([]types.Role, error)

	// Catalogs
	GetCatalog(ctx context.Context) (*catalog.Catalog, error)
	ListFields(ctx context.Context, level string) ([]string, error)
	ListTitles(ctx context.Context, level, field string) ([]catalog.Title, error)
	UpsertTitle(ctx context.Context, level, field, title string) (int, error)
	ListAreas(ctx context.Context) ([]types.Area, error)
	ListCriterios(ctx context.Context) ([]types.Criterio, error)
	UpsertCriterio(ctx context.Context, req *types.CreateCriterioRequest) (int, error)
	ListIdiomas(ctx context.Context) ([]types.Idioma, error)

	// Offers
	GetEmpresaIDByUser(ctx context.Context, userID int) (int, error)
	CreateOferta(ctx context.Context, empresaID, userID int, req *types.CreateOfertaRequest) (int, error)
	ListOfertas(ctx context.Context, filters db.OfertaFilters) ([]types.OfertaSummary, error)

	// Applicants
	GetPostulanteIDByUser(ctx context.Context, userID int) (int, error)
	PostulanteOwner(ctx context.Context, postulanteID int) (int, error)
	SaveFormacion(ctx context.Context, req *types.FormacionRequest) (int, error)
	CreateExperiencia(ctx context.Context, postulanteID int, exp selection.Experience) (int, error)
	UpdateExperiencia(ctx context.Context, exp selection.Experience) error
	ExperienciaOwner(ctx context.Context, experienciaID int) (int, error)
	GetPerfil(ctx context.Context, postulanteID int) (*types.Perfil, error)
}

var _ Store = (*db.DB)(nil)
