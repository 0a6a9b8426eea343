package client

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
)

func TestSessions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "POST /api/v1/forms/phq9/sessions":
			writeData(w, http.StatusCreated, Session{ID: "s1", Form: "phq9"})
		case "GET /api/v1/sessions/s1":
			writeData(w, http.StatusOK, Session{ID: "s1", Form: "phq9", Revision: 2})
		case "POST /api/v1/sessions/s1/evaluate":
			var req evaluateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "phq9", req.Form)
			assert.EqualValues(t, 2, req.Changes["q1"])
			writeData(w, http.StatusOK, Evaluation{
				Session:    Session{ID: "s1", Results: map[string]Result{"phq9": {Instrument: "phq9", Category: "Minimal"}}},
				Recomputed: true,
			})
		case "POST /api/v1/sessions/s1/save":
			var req SaveRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "fam-1", req.FamilyID)
			writeData(w, http.StatusCreated, Submission{SessionID: "s1", VisitID: "v1"})
		case "POST /api/v1/sessions/busy/evaluate":
			writeFailure(w, http.StatusConflict, errors.ErrCodeSessionBusy, "session is being evaluated")
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	s, err := c.Sessions().Start(ctx, "phq9")
	require.NoError(t, err)
	assert.Equal(t, "s1", s.ID)

	s, err = c.Sessions().Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, s.Revision)

	ev, err := c.Sessions().Evaluate(ctx, "s1", "phq9", Answers{"q1": 2})
	require.NoError(t, err)
	assert.True(t, ev.Recomputed)
	assert.Equal(t, "Minimal", ev.Session.Results["phq9"].Category)

	sub, err := c.Sessions().Save(ctx, "s1", SaveRequest{FamilyID: "fam-1"})
	require.NoError(t, err)
	assert.Equal(t, "v1", sub.VisitID)

	_, err = c.Sessions().Evaluate(ctx, "busy", "", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsConflict())
	assert.Equal(t, errors.ErrCodeSessionBusy, apiErr.Code)
}

func TestVisits(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/families/fam%201/visits", r.URL.EscapedPath())
		switch r.Method {
		case http.MethodPost:
			var req LogVisitRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "ncd_screening", req.Protocol)
			writeData(w, http.StatusCreated, Visit{ID: "v1", FamilyID: "fam 1", Date: "2024-03-01", Protocol: req.Protocol})
		default:
			writeData(w, http.StatusOK, []Visit{{ID: "v1"}, {ID: "v2"}})
		}
	})
	ctx := context.Background()

	v, err := c.Visits().Log(ctx, "fam 1", LogVisitRequest{Protocol: "ncd_screening", Answers: Answers{"rbs": 110}})
	require.NoError(t, err)
	assert.Equal(t, "v1", v.ID)

	list, err := c.Visits().List(ctx, "fam 1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
