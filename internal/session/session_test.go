package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/vacina-dashboard/internal/model"
	apperrors "github.com/jwalitptl/vacina-dashboard/pkg/errors"
	"github.com/jwalitptl/vacina-dashboard/pkg/metrics"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func token(t *testing.T, sub, role string, exp time.Time) string {
	t.Helper()
	claims := Claims{Role: role, RegisteredClaims: jwt.RegisteredClaims{Subject: sub}}
	if !exp.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-checked"))
	require.NoError(t, err)
	return s
}

func TestDecode(t *testing.T) {
	s, err := Decode(token(t, "maria", "ADMIN", now.Add(time.Hour)), now)
	require.NoError(t, err)
	assert.Equal(t, "maria", s.Username())
	assert.True(t, s.Elevated())

	s, err = Decode(token(t, "joao", "USER", time.Time{}), now)
	require.NoError(t, err)
	assert.False(t, s.Elevated())
}

func TestDecodeRejects(t *testing.T) {
	for name, tok := range map[string]string{
		"garbage":    "abc.def",
		"no subject": token(t, "", "ADMIN", time.Time{}),
		"expired":    token(t, "maria", "ADMIN", now.Add(-time.Minute)),
	} {
		_, err := Decode(tok, now)
		assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized), name)
	}
}

func TestTokenFrom(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, TokenFrom(r))

	r.AddCookie(&http.Cookie{Name: CookieName, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", TokenFrom(r))

	r.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", TokenFrom(r))

	r.Header.Set("Authorization", "Basic xyz")
	assert.Empty(t, TokenFrom(r))

	_, err := FromRequest(httptest.NewRequest(http.MethodGet, "/", nil), now)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
}

func TestMemoryStore(t *testing.T) {
	m, _ := metrics.New("test")
	store := NewMemoryStore(time.Minute, m)
	ctx := context.Background()

	st, err := store.Get(ctx, "maria")
	require.NoError(t, err)
	assert.Nil(t, st.SelectedPatient)

	require.NoError(t, store.Save(ctx, "maria", State{SelectedPatient: &model.Patient{UUID: "p1", NomeCompleto: "Ana"}}))
	st, err = store.Get(ctx, "maria")
	require.NoError(t, err)
	require.NotNil(t, st.SelectedPatient)
	assert.Equal(t, "p1", st.SelectedPatient.UUID)

	require.NoError(t, store.Delete(ctx, "maria"))
	st, _ = store.Get(ctx, "maria")
	assert.Nil(t, st.SelectedPatient)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.SessionStoreOps.WithLabelValues("get", "ok")))
	assert.NoError(t, store.Close())
}

func TestRedisStoreRejectsBadURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), RedisConfig{URL: "http://nope"}, nil, zerolog.Nop())
	assert.ErrorContains(t, err, "failed to parse Redis URL")
}
