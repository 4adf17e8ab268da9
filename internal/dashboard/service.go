// Package dashboard runs the four chart pipelines of the home page. Each
// pipeline fetches its own data and fails on its own.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/vacina-dashboard/internal/aggregate"
	"github.com/jwalitptl/vacina-dashboard/internal/chart"
	"github.com/jwalitptl/vacina-dashboard/internal/model"
	apperrors "github.com/jwalitptl/vacina-dashboard/pkg/errors"
	"github.com/jwalitptl/vacina-dashboard/pkg/metrics"
)

const (
	PipelinePeriod     = "periodo"
	PipelineTop        = "top-vacinas"
	PipelineAges       = "faixa-etaria"
	PipelineComparison = "cadastrados-vacinados"
)

const (
	LineWidth  = 800
	LineHeight = 300
	PieSize    = 300
)

type Backend interface {
	ListPatients(ctx context.Context, token string, elevated bool) ([]model.Patient, error)
	ListVaccinations(ctx context.Context, token string) ([]model.Vaccination, error)
}

type Period struct {
	Days   []aggregate.DayCount `json:"days"`
	Labels []string             `json:"labels"`
	Values []int                `json:"values"`
}

type TopVaccines struct {
	Items []model.ChartDatum `json:"items"`
}

// Dashboard holds whichever summaries loaded. A nil summary has its
// pipeline's message in Errors.
type Dashboard struct {
	Period      *Period                    `json:"periodo"`
	TopVaccines *TopVaccines               `json:"topVacinas"`
	Ages        *aggregate.AgeDistribution `json:"faixaEtaria"`
	Comparison  *aggregate.Comparison      `json:"cadastradosVacinados"`
	Errors      map[string]string          `json:"errors,omitempty"`
}

type Service struct {
	backend Backend
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

func NewService(backend Backend, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{backend: backend, metrics: m, logger: logger, now: time.Now}
}

// Load runs all pipelines concurrently and waits for them.
func (s *Service) Load(ctx context.Context, token string) *Dashboard {
	d := &Dashboard{}
	var errs [4]error

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		d.Period, errs[0] = s.Period(ctx, token)
	}()
	go func() {
		defer wg.Done()
		d.TopVaccines, errs[1] = s.TopVaccines(ctx, token)
	}()
	go func() {
		defer wg.Done()
		d.Ages, errs[2] = s.Ages(ctx, token)
	}()
	go func() {
		defer wg.Done()
		d.Comparison, errs[3] = s.Comparison(ctx, token)
	}()
	wg.Wait()

	for i, name := range []string{PipelinePeriod, PipelineTop, PipelineAges, PipelineComparison} {
		if errs[i] == nil {
			continue
		}
		if d.Errors == nil {
			d.Errors = make(map[string]string)
		}
		d.Errors[name] = apperrors.Message(errs[i])
	}
	return d
}

// run times one pipeline. A malformed payload counts as no records.
func (s *Service) run(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	result := "ok"
	switch {
	case apperrors.Is(err, apperrors.ErrMalformed):
		result = "malformed"
		s.logger.Warn().Err(err).Str("pipeline", name).Msg("malformed payload, showing empty chart")
		err = nil
	case err != nil:
		result = "error"
		s.logger.Error().Err(err).Str("pipeline", name).Msg("dashboard pipeline failed")
	}
	if s.metrics != nil {
		s.metrics.PipelineRuns.WithLabelValues(name, result).Inc()
		s.metrics.PipelineLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}
	return err
}

func (s *Service) Period(ctx context.Context, token string) (*Period, error) {
	var out *Period
	err := s.run(PipelinePeriod, func() error {
		events, err := s.backend.ListVaccinations(ctx, token)
		counts := aggregate.DailyCounts(events, s.now(), aggregate.PeriodDays)
		labels, values := aggregate.Series(counts)
		out = &Period{Days: counts, Labels: labels, Values: values}
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) TopVaccines(ctx context.Context, token string) (*TopVaccines, error) {
	var out *TopVaccines
	err := s.run(PipelineTop, func() error {
		events, err := s.backend.ListVaccinations(ctx, token)
		out = &TopVaccines{Items: aggregate.TopN(events, aggregate.TopVaccines)}
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Ages(ctx context.Context, token string) (*aggregate.AgeDistribution, error) {
	var out aggregate.AgeDistribution
	err := s.run(PipelineAges, func() error {
		patients, err := s.backend.ListPatients(ctx, token, false)
		out = aggregate.Ages(patients, s.now())
		if out.Skipped > 0 {
			s.logger.Debug().Int("skipped", out.Skipped).Msg("birth dates could not be parsed")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Comparison(ctx context.Context, token string) (*aggregate.Comparison, error) {
	var out aggregate.Comparison
	err := s.run(PipelineComparison, func() error {
		patients, err := s.backend.ListPatients(ctx, token, false)
		if err != nil && !apperrors.Is(err, apperrors.ErrMalformed) {
			return err
		}
		events, evErr := s.backend.ListVaccinations(ctx, token)
		out = aggregate.Compare(len(patients), events)
		if err != nil {
			return err
		}
		return evErr
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RenderPeriod draws the period line chart.
func (s *Service) RenderPeriod(w io.Writer, format chart.Format, p *Period) error {
	s.countRender(PipelinePeriod, format)
	return chart.Render(w, format, LineWidth, LineHeight, func(surface chart.Surface) error {
		_, err := chart.DrawLine(surface, p.Labels, p.Values)
		if err != nil {
			return fmt.Errorf("failed to draw period chart: %w", err)
		}
		return nil
	})
}

// RenderAges draws the age distribution donut.
func (s *Service) RenderAges(w io.Writer, format chart.Format, d *aggregate.AgeDistribution) error {
	s.countRender(PipelineAges, format)
	return chart.Render(w, format, PieSize, PieSize, func(surface chart.Surface) error {
		chart.DrawPie(surface, d.Data(), chart.PatientCaption)
		return nil
	})
}

func (s *Service) countRender(name string, format chart.Format) {
	if s.metrics != nil {
		s.metrics.ChartRenders.WithLabelValues(name, string(format)).Inc()
	}
}
