package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/vacina-dashboard/internal/model"
	"github.com/jwalitptl/vacina-dashboard/pkg/errors"
)

func TestNormalizeShapes(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []string
	}{
		{"double wrapped", `{"dados":[[{"uuid":"a"},{"uuid":"b"}]]}`, []string{"a", "b"}},
		{"wrapped array", `{"dados":[{"uuid":"a"}],"mensagem":"ok"}`, []string{"a"}},
		{"wrapped object", `{"dados":{"uuid":"a"}}`, []string{"a"}},
		{"bare array", `[{"uuid":"a"},{"uuid":"b"},{"uuid":"c"}]`, []string{"a", "b", "c"}},
		{"bare object", `{"uuid":"a"}`, []string{"a"}},
		{"null dados", `{"dados":null}`, []string{}},
		{"empty dados", `{"dados":[]}`, []string{}},
		{"empty inner", `{"dados":[[]]}`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize[model.Patient]([]byte(tt.payload))
			require.NoError(t, err)

			ids := make([]string, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.UUID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestNormalizeMalformed(t *testing.T) {
	for _, payload := range []string{``, `42`, `"dados"`, `{"dados":7}`, `{"dados":[`, `[1,2]`} {
		_, err := Normalize[model.Vaccine]([]byte(payload))
		assert.True(t, errors.Is(err, errors.ErrMalformed), payload)
	}
}

func TestNormalizeDropsUndecodableRecords(t *testing.T) {
	payload := []byte(`{"dados":[{"uuid":"a","id":1},{"uuid":"b","id":"dois"},{"uuid":"c","id":3}]}`)

	got, skipped, err := normalize[model.Patient](payload)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].UUID)
	assert.Equal(t, "c", got[1].UUID)
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0].Error(), "record 1")

	_, err = Normalize[model.Patient]([]byte(`[{"id":"x"},{"id":"y"}]`))
	assert.True(t, errors.Is(err, errors.ErrMalformed))
}

func TestNormalizeOne(t *testing.T) {
	p, err := NormalizeOne[model.Patient]([]byte(`{"dados":[{"uuid":"a","nomeCompleto":"Ana"}]}`), "Paciente não encontrado")
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.NomeCompleto)

	_, err = NormalizeOne[model.Patient]([]byte(`{"dados":[]}`), "Paciente não encontrado")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestAPIMessage(t *testing.T) {
	assert.Equal(t, "CPF inválido", apiMessage([]byte(`{"mensagem":"CPF inválido"}`)))
	assert.Equal(t, "bad", apiMessage([]byte(`{"message":"bad"}`)))
	assert.Empty(t, apiMessage([]byte(`<html>`)))
}
