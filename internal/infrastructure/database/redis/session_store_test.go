package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/FamilyCare-Analytics/internal/application/evaluation"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/assessment"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/FamilyCare-Analytics/pkg/errors"
)

func TestSessionStore_RoundTrip(t *testing.T) {
	mr, client := newMiniClient(t)
	store := NewSessionStore(client, logging.NewNopLogger())
	ctx := context.Background()

	sess := evaluation.NewSession(assessment.FormAnthropometry)
	sess.Apply(scoring.Answers{scoring.FieldWeightKg: 60, scoring.FieldHeightCm: 165})
	require.NoError(t, store.Put(ctx, sess, time.Hour))
	assert.True(t, mr.Exists("famcare:session:"+sess.ID))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.Form, got.Form)
	assert.Equal(t, sess.Revision, got.Revision)
	assert.Equal(t, sess.Results[assessment.ResultBMI].Category, got.Results[assessment.ResultBMI].Category)

	require.NoError(t, store.Delete(ctx, sess.ID))
	_, err = store.Get(ctx, sess.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeSessionNotFound))
}

func TestSessionStore_Expiry(t *testing.T) {
	mr, client := newMiniClient(t)
	store := NewSessionStore(client, logging.NewNopLogger())
	ctx := context.Background()

	sess := evaluation.NewSession(assessment.FormPHQ9)
	require.NoError(t, store.Put(ctx, sess, time.Minute))

	mr.FastForward(2 * time.Minute)
	_, err := store.Get(ctx, sess.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeSessionNotFound))
	assert.True(t, pkgerrors.IsNotFound(err))
}
