package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID_IsValid(t *testing.T) {
	t.Parallel()

	id := NewID()
	require.NoError(t, id.Validate())
	assert.NotEqual(t, id, NewID())
}

func TestID_Validate(t *testing.T) {
	t.Parallel()

	assert.Error(t, ID("").Validate())
	assert.Error(t, ID("not-a-uuid").Validate())
}

func TestParseGender(t *testing.T) {
	t.Parallel()

	cases := map[string]Gender{
		"Male":      GenderMale,
		"male":      GenderMale,
		" M ":       GenderMale,
		"FEMALE":    GenderFemale,
		"f":         GenderFemale,
		"Other":     GenderOther,
		"nonbinary": GenderOther,
		"":          GenderUnknown,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseGender(in), in)
	}
}

func TestGender_IsBinary(t *testing.T) {
	t.Parallel()

	assert.True(t, GenderMale.IsBinary())
	assert.True(t, GenderFemale.IsBinary())
	assert.False(t, GenderOther.IsBinary())
	assert.False(t, GenderUnknown.IsBinary())
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	d, err := ParseDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), d)

	ts, err := ParseDate("2024-06-01T10:30:00+05:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 5, 0, 0, 0, time.UTC), ts)

	_, err = ParseDate("01/06/2024")
	assert.Error(t, err)
}

func TestBaseEvent(t *testing.T) {
	t.Parallel()

	e := NewBaseEvent("visit-1")
	assert.NotEmpty(t, e.EventID())
	assert.Equal(t, "visit-1", e.AggregateID())
	assert.WithinDuration(t, time.Now(), e.OccurredAt(), time.Minute)
}

func TestAPIResponse(t *testing.T) {
	t.Parallel()

	ok := NewSuccessResponse(42)
	assert.True(t, ok.Success)
	assert.Equal(t, 42, ok.Data)
	assert.Nil(t, ok.Error)

	bad := NewErrorResponse("FORM_001", "not found", "form x")
	assert.False(t, bad.Success)
	assert.Equal(t, "FORM_001", bad.Error.Code)
}
