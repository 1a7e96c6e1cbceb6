package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"walldecor-admin/internal/composer"
	"walldecor-admin/internal/model"
	"walldecor-admin/pkg/idgen"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// APIError is a non-success answer from the remote service
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote API %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return ErrBackend
}

type APIClientConfig struct {
	BaseURL string // e.g. https://admin.example.com/api/v1
	Token   string
	Timeout time.Duration
}

// APIClient implements Repository against a remote instance of this service.
// The remote side runs each cascade as one batch, so one call is one atomic write.
type APIClient struct {
	http     *http.Client
	baseURL  string
	token    string
	notifier Notifier
	composer *composer.Composer
	log      *zap.Logger

	metaMu    sync.RWMutex
	ready     bool
	updatedAt *time.Time
}

func NewAPIClient(cfg APIClientConfig, notifier Notifier, log *zap.Logger) (*APIClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &APIClient{
		http:     &http.Client{Timeout: cfg.Timeout},
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		token:    cfg.Token,
		notifier: notifier,
		composer: composer.New(idgen.New(time.UTC), time.Now),
		log:      log,
	}, nil
}

type envelope[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("Remote API unreachable", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %s %s: %w", ErrBackend, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrBackend, err)
	}

	if resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", ErrBackend, method, path, err)
	}
	return nil
}

func decodeAPIError(status int, raw []byte) error {
	var body composer.ValidationError
	_ = json.Unmarshal(raw, &body)
	if body.Message == "" {
		body.Message = http.StatusText(status)
	}
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &body
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", body.Message, ErrNotFound)
	}
	return &APIError{Status: status, Message: body.Message}
}

// mutate performs one remote write and raises the local change signal on success
func (c *APIClient) mutate(ctx context.Context, method, path string, body, out any) error {
	if err := c.do(ctx, method, path, body, out); err != nil {
		return err
	}
	c.touch()
	c.notifier.NotifyChanged()
	return nil
}

func (c *APIClient) touch() {
	now := time.Now()
	c.metaMu.Lock()
	c.ready = true
	c.updatedAt = &now
	c.metaMu.Unlock()
}

func (c *APIClient) GetAll(ctx context.Context) (*model.AppData, error) {
	var data model.AppData
	if err := c.do(ctx, http.MethodGet, "/app-data", nil, &data); err != nil {
		return nil, err
	}
	data.Normalize()
	c.touch()
	return &data, nil
}

// Meta is not ready until the first successful round trip
func (c *APIClient) Meta() model.Meta {
	c.metaMu.RLock()
	defer c.metaMu.RUnlock()
	return model.Meta{Ready: c.ready, UpdatedAt: c.updatedAt}
}

func (c *APIClient) Employees() EmployeeRepository           { return apiEmployees{c} }
func (c *APIClient) Products() ProductRepository             { return apiProducts{c} }
func (c *APIClient) StockMovements() StockMovementRepository { return apiMovements{c} }
func (c *APIClient) Transactions() TransactionRepository     { return apiTransactions{c} }
func (c *APIClient) Productions() ProductionRepository       { return apiProductions{c} }
func (c *APIClient) Meetings() MeetingRepository             { return apiMeetings{c} }
func (c *APIClient) Settings() SettingsRepository            { return apiSettings{c} }

func list[T any](ctx context.Context, c *APIClient, path string) ([]T, error) {
	out := []T{}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func write[T any](ctx context.Context, c *APIClient, method, path string, body any) (*T, error) {
	var env envelope[T]
	if err := c.mutate(ctx, method, path, body, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func itemPath(base, id string) string {
	return base + "/" + url.PathEscape(id)
}

type apiEmployees struct{ c *APIClient }

func (a apiEmployees) List(ctx context.Context) ([]model.Employee, error) {
	return list[model.Employee](ctx, a.c, "/employees")
}

func (a apiEmployees) Create(ctx context.Context, in composer.EmployeeInput) (*model.Employee, error) {
	if _, err := a.c.composer.NewEmployee(in); err != nil {
		return nil, err
	}
	return write[model.Employee](ctx, a.c, http.MethodPost, "/employees", in)
}

func (a apiEmployees) Update(ctx context.Context, id string, patch model.EmployeePatch) (*model.Employee, error) {
	return write[model.Employee](ctx, a.c, http.MethodPatch, itemPath("/employees", id), patch)
}

type apiProducts struct{ c *APIClient }

func (a apiProducts) List(ctx context.Context) ([]model.Product, error) {
	products, err := list[model.Product](ctx, a.c, "/products")
	for i := range products {
		products[i].Normalize()
	}
	return products, err
}

func (a apiProducts) Create(ctx context.Context, in composer.ProductInput) (*model.Product, error) {
	if _, err := a.c.composer.NewProduct(in); err != nil {
		return nil, err
	}
	return write[model.Product](ctx, a.c, http.MethodPost, "/products", in)
}

func (a apiProducts) Update(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error) {
	return write[model.Product](ctx, a.c, http.MethodPatch, itemPath("/products", id), patch)
}

func (a apiProducts) Remove(ctx context.Context, id string) error {
	return a.c.mutate(ctx, http.MethodDelete, itemPath("/products", id), nil, nil)
}

type apiMovements struct{ c *APIClient }

func (a apiMovements) List(ctx context.Context) ([]model.StockMovement, error) {
	return list[model.StockMovement](ctx, a.c, "/stock-movements")
}

func (a apiMovements) Create(ctx context.Context, in composer.MovementInput) (*model.StockMovement, error) {
	if _, err := a.c.composer.ComposeMovement(in); err != nil {
		return nil, err
	}
	return write[model.StockMovement](ctx, a.c, http.MethodPost, "/stock-movements", in)
}

func (a apiMovements) Remove(ctx context.Context, id string) error {
	return a.c.mutate(ctx, http.MethodDelete, itemPath("/stock-movements", id), nil, nil)
}

type apiTransactions struct{ c *APIClient }

func (a apiTransactions) List(ctx context.Context) ([]model.Transaction, error) {
	return list[model.Transaction](ctx, a.c, "/transactions")
}

func (a apiTransactions) Create(ctx context.Context, in composer.TransactionInput) (*model.Transaction, error) {
	if _, _, err := a.c.composer.ComposeTransaction(in); err != nil {
		return nil, err
	}
	return write[model.Transaction](ctx, a.c, http.MethodPost, "/transactions", in)
}

func (a apiTransactions) Remove(ctx context.Context, id string) error {
	return a.c.mutate(ctx, http.MethodDelete, itemPath("/transactions", id), nil, nil)
}

type apiProductions struct{ c *APIClient }

func (a apiProductions) List(ctx context.Context) ([]model.Production, error) {
	return list[model.Production](ctx, a.c, "/productions")
}

func (a apiProductions) Create(ctx context.Context, in composer.ProductionInput) (*model.Production, error) {
	if _, _, err := a.c.composer.ComposeProduction(in); err != nil {
		return nil, err
	}
	return write[model.Production](ctx, a.c, http.MethodPost, "/productions", in)
}

func (a apiProductions) Remove(ctx context.Context, id string) error {
	return a.c.mutate(ctx, http.MethodDelete, itemPath("/productions", id), nil, nil)
}

type apiMeetings struct{ c *APIClient }

func (a apiMeetings) List(ctx context.Context) ([]model.Meeting, error) {
	return list[model.Meeting](ctx, a.c, "/meetings")
}

func (a apiMeetings) Create(ctx context.Context, in composer.MeetingInput) (*model.Meeting, error) {
	if _, err := a.c.composer.NewMeeting(in); err != nil {
		return nil, err
	}
	return write[model.Meeting](ctx, a.c, http.MethodPost, "/meetings", in)
}

func (a apiMeetings) Update(ctx context.Context, id string, patch model.MeetingPatch) (*model.Meeting, error) {
	return write[model.Meeting](ctx, a.c, http.MethodPatch, itemPath("/meetings", id), patch)
}

func (a apiMeetings) Remove(ctx context.Context, id string) error {
	return a.c.mutate(ctx, http.MethodDelete, itemPath("/meetings", id), nil, nil)
}

type apiSettings struct{ c *APIClient }

func (a apiSettings) Get(ctx context.Context) (model.AppSettings, error) {
	var s model.AppSettings
	if err := a.c.do(ctx, http.MethodGet, "/settings", nil, &s); err != nil {
		return model.AppSettings{}, err
	}
	s.ID = model.SettingsID
	return s, nil
}

func (a apiSettings) SetCashOpeningBalance(ctx context.Context, amount decimal.Decimal) (model.AppSettings, error) {
	body := map[string]decimal.Decimal{"cashOpeningBalance": amount}
	s, err := write[model.AppSettings](ctx, a.c, http.MethodPatch, "/settings", body)
	if err != nil {
		return model.AppSettings{}, err
	}
	s.ID = model.SettingsID
	return *s, nil
}

var _ Repository = (*APIClient)(nil)

// IsTransport reports whether err came from the storage transport rather than the rules
func IsTransport(err error) bool {
	return errors.Is(err, ErrBackend)
}
