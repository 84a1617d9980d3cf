package inference

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/physician-notetaker/internal/domain"
)

// PolarityClient calls the remote polarity classifier. It implements
// domain.PolarityClassifier; the sentiment service only consults it when no
// lexicon rule fires.
type PolarityClient struct {
	client *modelClient
}

// NewPolarityClient creates a client for the polarity endpoint.
func NewPolarityClient(config domain.ModelEndpointConfig, logger *logrus.Logger) *PolarityClient {
	return &PolarityClient{client: newModelClient("polarity", config, logger)}
}

type polarityRequest struct {
	Text string `json:"text"`
}

type polarityResponse struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ClassifyPolarity returns the model's label for text, typically POSITIVE or
// NEGATIVE. Unexpected labels pass through unchanged; the caller decides how
// to degrade.
func (c *PolarityClient) ClassifyPolarity(ctx context.Context, text string) (string, error) {
	var resp polarityResponse
	if err := c.client.postJSON(ctx, "/v1/polarity", polarityRequest{Text: text}, &resp); err != nil {
		return "", fmt.Errorf("classifying polarity: %w", err)
	}

	c.client.logger.WithFields(logrus.Fields{
		"label": resp.Label,
		"score": resp.Score,
	}).Debug("Polarity classified")

	return resp.Label, nil
}
