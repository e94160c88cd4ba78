package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

const defaultInvalidateReason = "Manual invalidation"

func (c *Client) AnalyticsUsers(ctx context.Context) (*model.AnalyticsUsers, error) {
	var out model.AnalyticsUsers
	if err := c.query(ctx, "/analytics/users", nil, &out, TagAnalytics); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AnalyticsCompetency(ctx context.Context) (*model.CompetencyAnalytics, error) {
	var out model.CompetencyAnalytics
	if err := c.query(ctx, "/analytics/competency", nil, &out, TagAnalytics); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AnalyticsAssessments(ctx context.Context) (*model.AssessmentsAnalytics, error) {
	var out model.AssessmentsAnalytics
	if err := c.query(ctx, "/analytics/assessments", nil, &out, TagAnalytics); err != nil {
		return nil, err
	}
	return &out, nil
}

// MonitorUser returns the user's running attempt; Attempt is nil when there
// is none.
func (c *Client) MonitorUser(ctx context.Context, userID string) (*model.MonitorResponse, error) {
	p, err := idPath("/supervisor/monitor", userID)
	if err != nil {
		return nil, err
	}
	var out model.MonitorResponse
	if err := c.query(ctx, p, nil, &out, TagSupervisor); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) InvalidateAttempt(ctx context.Context, userID, reason string) (*model.InvalidateResponse, error) {
	p, err := idPath("/supervisor/invalidate", userID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		reason = defaultInvalidateReason
	}
	var out model.InvalidateResponse
	if err := c.mutate(ctx, http.MethodPost, p, model.InvalidatePayload{Reason: reason}, &out, TagSupervisor, TagAssessment, TagAnalytics); err != nil {
		return nil, err
	}
	return &out, nil
}
