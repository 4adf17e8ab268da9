package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAcceptedLayouts(t *testing.T) {
	want := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{
		"09/03/2024",
		"9/3/2024",
		"09/3/2024",
		"2024-03-09",
		"2024-03-09T14:30:00",
		"2024-03-09T14:30:00.123",
		"2024-03-09T14:30:00-03:00",
		" 2024-03-09 ",
	} {
		got, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseRejects(t *testing.T) {
	_, err := Parse("")
	assert.ErrorIs(t, err, ErrEmpty)

	for _, in := range []string{"9/3/24", "2024/03/09", "31/02/2024", "ontem", "1710000000"} {
		_, err := Parse(in)
		var perr *ParseError
		assert.ErrorAs(t, err, &perr, in)
	}
}

func TestUnpaddedBRDateFormatsPadded(t *testing.T) {
	got, err := Parse("5/6/2000")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2000, 6, 5, 0, 0, 0, 0, time.UTC), got)

	br, err := BR("5/6/2000")
	require.NoError(t, err)
	assert.Equal(t, "05/06/2000", br)
	assert.Equal(t, "05/06/2000", Display("5/6/2000", DetailPlaceholder))
}

func TestFormatting(t *testing.T) {
	iso, err := ISO("09/03/2024")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-09", iso)

	br, err := BR("2024-03-09T10:00:00")
	require.NoError(t, err)
	assert.Equal(t, "09/03/2024", br)

	assert.Equal(t, "09/03", DayMonth(time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, ListPlaceholder, Display("", ListPlaceholder))
	assert.Equal(t, DetailPlaceholder, Display("garbage", DetailPlaceholder))
	assert.Equal(t, "09/03/2024", Display("2024-03-09", DetailPlaceholder))
}

func TestAgeAroundBirthday(t *testing.T) {
	age, err := Age("15/06/2000", time.Date(2024, 6, 14, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 23, age)

	age, err = Age("15/06/2000", time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 24, age)

	age, err = Age("2000-06-15", time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 23, age)
}

func TestAgeEmptyAndInvalid(t *testing.T) {
	age, err := Age("", time.Now())
	assert.NoError(t, err)
	assert.Zero(t, age)

	_, err = Age("15-06-2000", time.Now())
	assert.Error(t, err)
}

func TestBracketBoundaries(t *testing.T) {
	assert.Equal(t, BracketChild, BracketOf(0))
	assert.Equal(t, BracketChild, BracketOf(12))
	assert.Equal(t, BracketTeen, BracketOf(13))
	assert.Equal(t, BracketTeen, BracketOf(17))
	assert.Equal(t, BracketAdult, BracketOf(18))
	assert.Equal(t, BracketAdult, BracketOf(59))
	assert.Equal(t, BracketSenior, BracketOf(60))
}

func TestStatus(t *testing.T) {
	now := time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)

	assert.Equal(t, StatusValid, Status("15/06/2024", now))
	assert.Equal(t, StatusValid, Status("2025-01-01", now))
	assert.Equal(t, StatusExpired, Status("14/06/2024", now))
	assert.Equal(t, StatusExpired, Status("", now))
	assert.Equal(t, StatusExpired, Status("??", now))
}

func TestTimestampKeepsTimeOfDay(t *testing.T) {
	a, err := Timestamp("2024-06-01T08:00:00")
	require.NoError(t, err)
	b, err := Timestamp("2024-06-01T17:30:00")
	require.NoError(t, err)
	assert.True(t, b.After(a))

	_, err = Timestamp("")
	assert.ErrorIs(t, err, ErrEmpty)
}
