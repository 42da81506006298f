package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/proajob/proajob/internal/catalog"
	"github.com/proajob/proajob/internal/db"
	"github.com/proajob/proajob/internal/selection"
	"github.com/proajob/proajob/internal/types"
)

// mockStore is an in-memory Store for handler tests.
type mockStore struct {
	mu sync.Mutex

	users     map[string]*db.User
	roles     []types.Role
	catalog   catalog.Catalog
	fields    map[string][]string
	titles    map[string][]catalog.Title
	areas     []types.Area
	criterios []types.Criterio
	idiomas   []types.Idioma

	empresas    map[int]int // user id -> empresa id
	postulantes map[int]int // postulante id -> user id
	experiencia map[int]int // experiencia id -> postulante id
	perfiles    map[int]*types.Perfil

	ofertas     []types.OfertaSummary
	created     []*types.CreateOfertaRequest
	formaciones []*types.FormacionRequest
	updated     []selection.Experience
	lastFilters db.OfertaFilters
	nextID      int

	// failWith makes every call return this error when set.
	failWith error
}

func newMockStore() *mockStore {
	return &mockStore{
		users:       map[string]*db.User{},
		fields:      map[string][]string{},
		titles:      map[string][]catalog.Title{},
		empresas:    map[int]int{},
		postulantes: map[int]int{},
		experiencia: map[int]int{},
		perfiles:    map[int]*types.Perfil{},
		nextID:      100,
	}
}

func (m *mockStore) id() int {
	m.nextID++
	return m.nextID
}

func (m *mockStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.users[email], nil
}

func (m *mockStore) ListUsersWithRoles(_ context.Context) ([]types.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []types.User
	for _, u := range m.users {
		out = append(out, *u.Public())
	}
	return out, nil
}

func (m *mockStore) ListRoles(_ context.Context) ([]types.Role, error) {
	return m.roles, m.failWith
}

func (m *mockStore) GetCatalog(_ context.Context) (*catalog.Catalog, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	c := m.catalog
	return &c, nil
}

func (m *mockStore) ListFields(_ context.Context, level string) ([]string, error) {
	return m.fields[level], m.failWith
}

func (m *mockStore) ListTitles(_ context.Context, level, field string) ([]catalog.Title, error) {
	return m.titles[level+"/"+field], m.failWith
}

func (m *mockStore) UpsertTitle(_ context.Context, level, field, title string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	key := level + "/" + field
	m.titles[key] = append(m.titles[key], catalog.Title{ID: id, Name: title})
	return id, m.failWith
}

func (m *mockStore) ListAreas(_ context.Context) ([]types.Area, error) {
	return m.areas, m.failWith
}

func (m *mockStore) ListCriterios(_ context.Context) ([]types.Criterio, error) {
	return m.criterios, m.failWith
}

func (m *mockStore) UpsertCriterio(_ context.Context, req *types.CreateCriterioRequest) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	m.criterios = append(m.criterios, types.Criterio{ID: id, Name: req.Name, Description: req.Description, Options: req.Options})
	return id, m.failWith
}

func (m *mockStore) ListIdiomas(_ context.Context) ([]types.Idioma, error) {
	return m.idiomas, m.failWith
}

func (m *mockStore) GetEmpresaIDByUser(_ context.Context, userID int) (int, error) {
	return m.empresas[userID], m.failWith
}

func (m *mockStore) CreateOferta(_ context.Context, empresaID, _ int, req *types.CreateOfertaRequest) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	for _, a := range m.areas {
		if a.ID == req.AreaID {
			m.created = append(m.created, req)
			return m.id(), nil
		}
	}
	return 0, fmt.Errorf("area %d of empresa %d: %w", req.AreaID, empresaID, db.ErrInvalidReference)
}

func (m *mockStore) ListOfertas(_ context.Context, filters db.OfertaFilters) ([]types.OfertaSummary, error) {
	m.lastFilters = filters
	return m.ofertas, m.failWith
}

func (m *mockStore) GetPostulanteIDByUser(_ context.Context, userID int) (int, error) {
	for pid, uid := range m.postulantes {
		if uid == userID {
			return pid, m.failWith
		}
	}
	return 0, m.failWith
}

func (m *mockStore) PostulanteOwner(_ context.Context, postulanteID int) (int, error) {
	return m.postulantes[postulanteID], m.failWith
}

func (m *mockStore) SaveFormacion(_ context.Context, req *types.FormacionRequest) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.formaciones = append(m.formaciones, req)
	return m.id(), m.failWith
}

func (m *mockStore) CreateExperiencia(_ context.Context, postulanteID int, _ selection.Experience) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	m.experiencia[id] = postulanteID
	return id, m.failWith
}

func (m *mockStore) UpdateExperiencia(_ context.Context, exp selection.Experience) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.experiencia[exp.ID]; !ok {
		return fmt.Errorf("experiencia %d: %w", exp.ID, db.ErrNotFound)
	}
	m.updated = append(m.updated, exp)
	return m.failWith
}

func (m *mockStore) ExperienciaOwner(_ context.Context, experienciaID int) (int, error) {
	return m.experiencia[experienciaID], m.failWith
}

func (m *mockStore) GetPerfil(_ context.Context, postulanteID int) (*types.Perfil, error) {
	return m.perfiles[postulanteID], m.failWith
}

var _ Store = (*mockStore)(nil)
