package dashboard

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/vacina-dashboard/internal/chart"
	"github.com/jwalitptl/vacina-dashboard/internal/model"
	apperrors "github.com/jwalitptl/vacina-dashboard/pkg/errors"
	"github.com/jwalitptl/vacina-dashboard/pkg/metrics"
)

type fakeBackend struct {
	patients    []model.Patient
	patientsErr error
	events      []model.Vaccination
	eventsErr   error
}

func (f *fakeBackend) ListPatients(context.Context, string, bool) ([]model.Patient, error) {
	return f.patients, f.patientsErr
}

func (f *fakeBackend) ListVaccinations(context.Context, string) ([]model.Vaccination, error) {
	return f.events, f.eventsErr
}

var now = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func newService(b Backend) (*Service, *metrics.Metrics) {
	m, _ := metrics.New("test")
	s := NewService(b, m, zerolog.Nop())
	s.now = func() time.Time { return now }
	return s, m
}

func fixture() *fakeBackend {
	return &fakeBackend{
		patients: []model.Patient{
			{UUID: "a", DataNascimento: "2015-01-01"},
			{UUID: "b", DataNascimento: "15/06/2000"},
			{UUID: "c", DataNascimento: "1950-03-03"},
			{UUID: "d", DataNascimento: "ontem"},
		},
		events: []model.Vaccination{
			{PessoaUUID: "a", Vacina: &model.VaccineRef{Nome: "BCG"}, DataAplicacao: "2024-06-15"},
			{PessoaUUID: "a", Vacina: &model.VaccineRef{Nome: "BCG"}, DataAplicacao: "14/06/2024"},
			{PessoaUUID: "b", DataAplicacao: "2024-05-01"},
		},
	}
}

func TestLoadAllPipelines(t *testing.T) {
	s, m := newService(fixture())
	d := s.Load(context.Background(), "tok")

	assert.Empty(t, d.Errors)
	require.NotNil(t, d.Period)
	require.Len(t, d.Period.Values, 30)
	assert.Equal(t, 1, d.Period.Values[29])
	assert.Equal(t, 1, d.Period.Values[28])
	assert.Equal(t, "15/06", d.Period.Labels[29])

	require.NotNil(t, d.TopVaccines)
	assert.Equal(t, []model.ChartDatum{{Label: "BCG", Value: 2}, {Label: "Não informado", Value: 1}}, d.TopVaccines.Items)

	require.NotNil(t, d.Ages)
	assert.Equal(t, 3, d.Ages.Total())
	assert.Equal(t, 1, d.Ages.Skipped)

	require.NotNil(t, d.Comparison)
	assert.Equal(t, 4, d.Comparison.Registered)
	assert.Equal(t, 2, d.Comparison.Vaccinated)
	assert.Equal(t, "50.0", d.Comparison.CoverageText())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PipelineRuns.WithLabelValues(PipelineAges, "ok")))
}

func TestLoadPartialFailure(t *testing.T) {
	b := fixture()
	b.patientsErr = apperrors.Transport(errors.New("refused"))
	s, m := newService(b)

	d := s.Load(context.Background(), "tok")
	assert.NotNil(t, d.Period)
	assert.NotNil(t, d.TopVaccines)
	assert.Nil(t, d.Ages)
	assert.Nil(t, d.Comparison)
	assert.Equal(t, map[string]string{
		PipelineAges:       apperrors.MsgConnection,
		PipelineComparison: apperrors.MsgConnection,
	}, d.Errors)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PipelineRuns.WithLabelValues(PipelineComparison, "error")))
}

func TestMalformedPayloadShowsEmptyChart(t *testing.T) {
	b := fixture()
	b.events = nil
	b.eventsErr = apperrors.Malformed(errors.New("scalar"))
	s, m := newService(b)

	d := s.Load(context.Background(), "tok")
	assert.Empty(t, d.Errors)
	require.NotNil(t, d.TopVaccines)
	assert.Empty(t, d.TopVaccines.Items)
	require.NotNil(t, d.Comparison)
	assert.Equal(t, 0, d.Comparison.Vaccinated)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PipelineRuns.WithLabelValues(PipelinePeriod, "malformed")))
}

func TestRenderCharts(t *testing.T) {
	s, m := newService(fixture())

	p, err := s.Period(context.Background(), "tok")
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, s.RenderPeriod(&buf, chart.FormatSVG, p))
	assert.Contains(t, buf.String(), "<svg")

	ages, err := s.Ages(context.Background(), "tok")
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, s.RenderAges(&buf, chart.FormatPNG, ages))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChartRenders.WithLabelValues(PipelineAges, "png")))
}
