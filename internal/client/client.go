// Package client is an HTTP client of the ProaJob REST API. It implements
// catalog.Fetcher so the form state machines can drive it directly.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/proajob/proajob/internal/catalog"
	"github.com/proajob/proajob/internal/types"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 15 * time.Second

// APIError is returned for non-2xx responses.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

// Client calls the API at a base URL, optionally with a bearer token.
type Client struct {
	baseURL string
	http    *http.Client
	log     logrus.FieldLogger

	mu    sync.RWMutex
	token string
}

var _ catalog.Fetcher = (*Client)(nil)

// New creates a client. A nil httpClient uses one with DefaultTimeout.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     logger,
		token:   token,
	}
}

// WithLogger sets the logger used for failed calls and returns c.
func (c *Client) WithLogger(log logrus.FieldLogger) *Client {
	c.log = log
	return c
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Catalog fetches the unfiltered catalog.
func (c *Client) Catalog(ctx context.Context) (catalog.Catalog, error) {
	var cat catalog.Catalog
	err := c.do(ctx, http.MethodGet, "/titulos", nil, nil, &cat)
	return cat, err
}

// Fields fetches the fields offered under level.
func (c *Client) Fields(ctx context.Context, level string) ([]string, error) {
	var fields []string
	err := c.do(ctx, http.MethodGet, "/titulos/"+url.PathEscape(level), nil, nil, &fields)
	return fields, err
}

// Titles fetches the titles under level and field.
func (c *Client) Titles(ctx context.Context, level, field string) ([]catalog.Title, error) {
	var titles []catalog.Title
	path := "/titulos/" + url.PathEscape(level) + "/" + url.PathEscape(field)
	err := c.do(ctx, http.MethodGet, path, nil, nil, &titles)
	return titles, err
}

// Areas fetches the business areas.
func (c *Client) Areas(ctx context.Context) ([]types.Area, error) {
	var resp struct {
		Areas []types.Area `json:"areas"`
	}
	err := c.do(ctx, http.MethodGet, "/areas", nil, nil, &resp)
	return resp.Areas, err
}

// Criterios fetches the evaluation criteria.
func (c *Client) Criterios(ctx context.Context) ([]types.Criterio, error) {
	var resp struct {
		Criterios []types.Criterio `json:"criterios"`
	}
	err := c.do(ctx, http.MethodGet, "/criterios", nil, nil, &resp)
	return resp.Criterios, err
}

// Idiomas fetches the languages.
func (c *Client) Idiomas(ctx context.Context) ([]types.Idioma, error) {
	var resp struct {
		Idiomas []types.Idioma `json:"idiomas"`
	}
	err := c.do(ctx, http.MethodGet, "/idioma", nil, nil, &resp)
	return resp.Idiomas, err
}

// LoadReferences fetches the areas, criteria and languages concurrently. It
// fails if any of them fails. The degree catalog is not included; the
// catalog cascade loads it on its own.
func (c *Client) LoadReferences(ctx context.Context) (*types.References, error) {
	refs := &types.References{}
	g, gCtx := errgroup.WithContext(ctx)

	// Each goroutine writes a distinct field of refs.
	g.Go(func() error {
		areas, err := c.Areas(gCtx)
		if err != nil {
			return fmt.Errorf("areas: %w", err)
		}
		refs.Areas = areas
		return nil
	})
	g.Go(func() error {
		criterios, err := c.Criterios(gCtx)
		if err != nil {
			return fmt.Errorf("criterios: %w", err)
		}
		refs.Criterios = criterios
		return nil
	})
	g.Go(func() error {
		idiomas, err := c.Idiomas(gCtx)
		if err != nil {
			return fmt.Errorf("idiomas: %w", err)
		}
		refs.Idiomas = idiomas
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return refs, nil
}

// Ofertas lists published offers.
func (c *Client) Ofertas(ctx context.Context) ([]types.OfertaSummary, error) {
	var resp struct {
		Ofertas []types.OfertaSummary `json:"ofertas"`
	}
	err := c.do(ctx, http.MethodGet, "/ofertas", nil, nil, &resp)
	return resp.Ofertas, err
}

// Login authenticates and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*types.LoginResponse, error) {
	var resp types.LoginResponse
	req := types.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/login", nil, req, &resp); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.token = resp.Token
	c.mu.Unlock()
	return &resp, nil
}

// CreateOferta publishes an offer and returns its id.
func (c *Client) CreateOferta(ctx context.Context, req *types.CreateOfertaRequest) (int, error) {
	var resp struct {
		ID int `json:"id_oferta"`
	}
	err := c.do(ctx, http.MethodPost, "/add-oferta", nil, req, &resp)
	return resp.ID, err
}

// PostulanteID resolves the applicant record of userID.
func (c *Client) PostulanteID(ctx context.Context, userID int) (int, error) {
	var resp struct {
		ID int `json:"id_postulante"`
	}
	q := url.Values{"id_usuario": {strconv.Itoa(userID)}}
	err := c.do(ctx, http.MethodGet, "/postulanteId/id", q, nil, &resp)
	return resp.ID, err
}

// SubmitFormacion stores an academic formation and returns its id.
func (c *Client) SubmitFormacion(ctx context.Context, req *types.FormacionRequest) (int, error) {
	var resp struct {
		ID int `json:"id_formacion"`
	}
	err := c.do(ctx, http.MethodPost, "/postulante/forma", nil, req, &resp)
	return resp.ID, err
}

// Perfil fetches the profile of the applicant owned by userID.
func (c *Client) Perfil(ctx context.Context, userID int) (*types.Perfil, error) {
	var perfil types.Perfil
	if err := c.do(ctx, http.MethodGet, "/perfil/"+strconv.Itoa(userID), nil, nil, &perfil); err != nil {
		return nil, err
	}
	return &perfil, nil
}

// CreateExperiencia adds a work experience and returns its id.
func (c *Client) CreateExperiencia(ctx context.Context, req *types.CreateExperienciaRequest) (int, error) {
	var resp struct {
		ID int `json:"id_formacion_pro"`
	}
	err := c.do(ctx, http.MethodPost, "/exp", nil, req, &resp)
	return resp.ID, err
}

// UpdateExperiencia replaces work experience id.
func (c *Client) UpdateExperiencia(ctx context.Context, id int, req *types.ExperienciaRequest) error {
	return c.do(ctx, http.MethodPut, "/experiencia/"+strconv.Itoa(id), nil, req, nil)
}

// do sends body as JSON and decodes a 2xx response into out when out is
// not nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{"method": method, "path": path}).Warn("request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Method: method, Path: path, Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &payload) == nil {
			switch {
			case payload.Message != "" && resp.StatusCode == http.StatusTooManyRequests:
				apiErr.Message = payload.Message
			case payload.Error != "":
				apiErr.Message = payload.Error
			}
		}
		c.log.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		}).Warn(apiErr.Message)
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
