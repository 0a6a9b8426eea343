package client

import (
	"context"
)

// LogVisitRequest records one home visit. Date defaults to today on the
// server.
type LogVisitRequest struct {
	MemberID     string  `json:"member_id,omitempty"`
	Date         string  `json:"date,omitempty"`
	ActivityType string  `json:"activity_type,omitempty"`
	Notes        string  `json:"notes,omitempty"`
	Protocol     string  `json:"protocol,omitempty"`
	Answers      Answers `json:"answers,omitempty"`
}

// Visit is a logged home visit.
type Visit struct {
	ID       string `json:"id"`
	FamilyID string `json:"family_id"`
	MemberID string `json:"member_id,omitempty"`
	Date     string `json:"date"`
	Protocol string `json:"protocol"`
}

// VisitsClient logs and lists a family's visits.
type VisitsClient struct {
	client *Client
}

func (v *VisitsClient) Log(ctx context.Context, familyID string, req LogVisitRequest) (*Visit, error) {
	var out Visit
	if err := v.client.post(ctx, "/families/"+escape(familyID)+"/visits", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (v *VisitsClient) List(ctx context.Context, familyID string) ([]Visit, error) {
	var out []Visit
	if err := v.client.get(ctx, "/families/"+escape(familyID)+"/visits", &out); err != nil {
		return nil, err
	}
	return out, nil
}
