package api

import (
	"context"
	"net/http"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

// StartAssessment opens a new attempt; the server picks the step. Never cached.
func (c *Client) StartAssessment(ctx context.Context) (*model.StartAssessmentResponse, error) {
	var out model.StartAssessmentResponse
	if err := c.query(ctx, "/assessment/start", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitAssessment(ctx context.Context, p model.SubmitAssessmentPayload) (*model.AssessmentAttempt, error) {
	if p.AttemptID == "" {
		return nil, invalid("attempt id is required")
	}
	if p.Answers == nil {
		p.Answers = map[string]string{}
	}
	var out model.AttemptEnvelope
	if err := c.mutate(ctx, http.MethodPost, "/assessment/submit", p, &out, TagAssessment, TagCertificate, TagAnalytics); err != nil {
		return nil, err
	}
	return &out.Attempt, nil
}

func (c *Client) AssessmentStatus(ctx context.Context) ([]model.AssessmentAttempt, error) {
	var out model.AttemptsEnvelope
	if err := c.query(ctx, "/assessment/status", nil, &out, TagAssessment); err != nil {
		return nil, err
	}
	return out.Attempts, nil
}

func (c *Client) AssessmentHistory(ctx context.Context) ([]model.AssessmentAttempt, error) {
	var out model.AttemptsEnvelope
	if err := c.query(ctx, "/assessment/history", nil, &out, TagAssessment); err != nil {
		return nil, err
	}
	return out.Attempts, nil
}

func (c *Client) Certificate(ctx context.Context) (*model.Certificate, error) {
	var out model.CertificateEnvelope
	if err := c.query(ctx, "/assessment/certificate", nil, &out, TagCertificate); err != nil {
		return nil, err
	}
	return &out.Certificate, nil
}
