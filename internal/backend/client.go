package backend

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/vacina-dashboard/internal/model"
	"github.com/jwalitptl/vacina-dashboard/pkg/circuitbreaker"
	"github.com/jwalitptl/vacina-dashboard/pkg/errors"
	"github.com/jwalitptl/vacina-dashboard/pkg/metrics"
)

const (
	MsgPatientNotFound = "Paciente não encontrado"
	MsgVaccineNotFound = "Vacina não encontrada"
)

type Config struct {
	BaseURL         string
	Timeout         time.Duration
	PageSize        int
	BreakerFailures int
	BreakerTimeout  time.Duration
}

// Client talks to the registry REST backend on behalf of one bearer token per call.
type Client struct {
	baseURL  string
	http     *http.Client
	pageSize int
	cb       *circuitbreaker.CircuitBreaker
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewClient(cfg Config, m *metrics.Metrics, logger zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 1000
	}

	return &Client{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/") + "/",
		http:     &http.Client{Timeout: cfg.Timeout},
		pageSize: cfg.PageSize,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "registry-backend",
			MaxFailures: cfg.BreakerFailures,
			Timeout:     cfg.BreakerTimeout,
			IsFailure:   func(err error) bool { return errors.Is(err, errors.ErrTransport) },
		}),
		metrics: m,
		logger:  logger,
	}
}

// statusError is produced by the response validator for non-2xx answers.
type statusError struct {
	status int
	body   []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.status)
}

func checkStatus(res *http.Response) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	return &statusError{status: res.StatusCode, body: body}
}

type call struct {
	endpoint string
	method   string
	path     string
	list     bool
	body     interface{}
}

func (c *Client) fetch(ctx context.Context, token string, cl call) ([]byte, error) {
	var buf bytes.Buffer

	rb := requests.
		URL(c.baseURL).
		Path(cl.path).
		Client(c.http).
		Method(cl.method).
		Header("Accept", "application/json").
		AddValidator(checkStatus).
		ToBytesBuffer(&buf)
	if token != "" {
		rb = rb.Bearer(token)
	}
	if cl.list {
		rb = rb.Param("size", strconv.Itoa(c.pageSize)).Param("page", "0")
	}
	if cl.body != nil {
		rb = rb.BodyJSON(cl.body)
	}

	start := time.Now()
	status := "error"
	err := c.cb.Execute(func() error {
		err := classify(rb.Fetch(ctx))
		if err == nil {
			status = "2xx"
		} else if appErr, ok := errors.As(err); ok && appErr.Status > 0 {
			status = strconv.Itoa(appErr.Status)
		}
		return err
	})
	if stderrors.Is(err, circuitbreaker.ErrOpen) {
		err = errors.Transport(err)
	}

	c.metrics.BackendRequests.WithLabelValues(cl.endpoint, status).Inc()
	c.metrics.BackendLatency.WithLabelValues(cl.endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("endpoint", cl.endpoint).
			Str("method", cl.method).
			Str("status", status).
			Dur("latency", time.Since(start)).
			Msg("backend request failed")
		return nil, err
	}

	c.logger.Debug().
		Str("endpoint", cl.endpoint).
		Dur("latency", time.Since(start)).
		Msg("backend request done")
	return buf.Bytes(), nil
}

// classify maps a requests error onto the application error kinds.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var se *statusError
	if !stderrors.As(err, &se) {
		return errors.Transport(err)
	}

	msg := apiMessage(se.body)
	switch se.status {
	case http.StatusUnauthorized:
		return &errors.AppError{Code: errors.ErrUnauthorized, Message: errors.MsgInvalidSession, Status: se.status, Err: se}
	case http.StatusForbidden:
		return &errors.AppError{Code: errors.ErrForbidden, Message: errors.MsgAccessDenied, Status: se.status, Err: se}
	case http.StatusNotFound:
		if msg == "" {
			msg = http.StatusText(se.status)
		}
		return &errors.AppError{Code: errors.ErrNotFound, Message: msg, Status: se.status, Err: se}
	default:
		return errors.Upstream(se.status, msg, se)
	}
}

func listOf[T any](ctx context.Context, c *Client, token, endpoint, path string) ([]T, error) {
	body, err := c.fetch(ctx, token, call{endpoint: endpoint, method: http.MethodGet, path: path, list: true})
	if err != nil {
		return nil, err
	}
	items, skipped, err := normalize[T](body)
	if err != nil {
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("malformed backend payload")
		return nil, err
	}
	if len(skipped) > 0 {
		c.logger.Warn().Err(skipped[0]).Str("endpoint", endpoint).Int("skipped", len(skipped)).Msg("dropped undecodable records")
	}
	return items, nil
}

// ListPatients uses /pessoa/all for elevated sessions, which also returns inactive records.
func (c *Client) ListPatients(ctx context.Context, token string, elevated bool) ([]model.Patient, error) {
	if elevated {
		return listOf[model.Patient](ctx, c, token, "pessoa.all", "pessoa/all")
	}
	return listOf[model.Patient](ctx, c, token, "pessoa.list", "pessoa")
}

func (c *Client) ListVaccines(ctx context.Context, token string) ([]model.Vaccine, error) {
	return listOf[model.Vaccine](ctx, c, token, "vacina.list", "vacina")
}

func (c *Client) ListUsers(ctx context.Context, token string) ([]model.User, error) {
	return listOf[model.User](ctx, c, token, "usuario.list", "usuario")
}

func (c *Client) ListVaccinations(ctx context.Context, token string) ([]model.Vaccination, error) {
	return listOf[model.Vaccination](ctx, c, token, "vacinacoes.list", "vacinacoes")
}

func (c *Client) FindPatientByCPF(ctx context.Context, token, cpf string) (*model.Patient, error) {
	body, err := c.fetch(ctx, token, call{
		endpoint: "pessoa.cpf",
		method:   http.MethodPost,
		path:     "pessoa/cpf",
		body:     model.SearchPatientRequest{CPF: cpf},
	})
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.NotFound(MsgPatientNotFound, err)
		}
		return nil, err
	}
	return NormalizeOne[model.Patient](body, MsgPatientNotFound)
}

func (c *Client) GetVaccine(ctx context.Context, token, id string) (*model.Vaccine, error) {
	body, err := c.fetch(ctx, token, call{endpoint: "vacina.get", method: http.MethodGet, path: "vacina/" + url.PathEscape(id)})
	if err != nil {
		return nil, err
	}
	return NormalizeOne[model.Vaccine](body, MsgVaccineNotFound)
}

func (c *Client) UpdatePatient(ctx context.Context, token, id string, req model.UpdatePatientRequest) error {
	_, err := c.fetch(ctx, token, call{endpoint: "pessoa.update", method: http.MethodPut, path: "pessoa/" + url.PathEscape(id), body: req})
	return notFoundAs(err, MsgPatientNotFound)
}

func (c *Client) DeletePatient(ctx context.Context, token, id string) error {
	_, err := c.fetch(ctx, token, call{endpoint: "pessoa.delete", method: http.MethodDelete, path: "pessoa/" + url.PathEscape(id)})
	return notFoundAs(err, MsgPatientNotFound)
}

func (c *Client) UpdateVaccine(ctx context.Context, token, id string, req model.UpdateVaccineRequest) error {
	_, err := c.fetch(ctx, token, call{endpoint: "vacina.update", method: http.MethodPut, path: "vacina/" + url.PathEscape(id), body: req})
	return notFoundAs(err, MsgVaccineNotFound)
}

func (c *Client) DeleteVaccine(ctx context.Context, token, id string) error {
	_, err := c.fetch(ctx, token, call{endpoint: "vacina.delete", method: http.MethodDelete, path: "vacina/" + url.PathEscape(id)})
	return notFoundAs(err, MsgVaccineNotFound)
}

func (c *Client) UpdateVaccination(ctx context.Context, token, id string, req model.UpdateVaccinationRequest) error {
	_, err := c.fetch(ctx, token, call{endpoint: "vacinacoes.update", method: http.MethodPut, path: "vacinacoes/" + url.PathEscape(id), body: req})
	return err
}

func (c *Client) DeleteVaccination(ctx context.Context, token, id string) error {
	_, err := c.fetch(ctx, token, call{endpoint: "vacinacoes.delete", method: http.MethodDelete, path: "vacinacoes/" + url.PathEscape(id)})
	return err
}

func (c *Client) UpdateUser(ctx context.Context, token, id string, req model.UpdateUserRequest) error {
	_, err := c.fetch(ctx, token, call{endpoint: "usuario.update", method: http.MethodPut, path: "usuario/" + url.PathEscape(id), body: req})
	return err
}

// Ping reports whether the client currently lets calls through. It does not
// contact the backend, which needs a token for every endpoint.
func (c *Client) Ping(context.Context) error {
	if c.cb.State() == circuitbreaker.StateOpen {
		return errors.Transport(circuitbreaker.ErrOpen)
	}
	return nil
}

func notFoundAs(err error, message string) error {
	if errors.Is(err, errors.ErrNotFound) {
		return errors.NotFound(message, err)
	}
	return err
}
