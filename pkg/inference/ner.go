package inference

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/physician-notetaker/internal/domain"
)

// NERClient calls the remote clinical entity recognizer. It implements
// domain.EntityRecognizer and is interchangeable with the in-process rule
// recognizer.
type NERClient struct {
	client *modelClient
}

// NewNERClient creates a client for the entity recognition endpoint.
func NewNERClient(config domain.ModelEndpointConfig, logger *logrus.Logger) *NERClient {
	return &NERClient{client: newModelClient("ner", config, logger)}
}

type nerRequest struct {
	Text string `json:"text"`
}

type nerEntity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

type nerResponse struct {
	Entities []nerEntity `json:"entities"`
}

// Recognize labels clinical spans in text via the model server. Entities
// with labels outside the recognized clinical categories are dropped with a
// warning rather than failing the document.
func (c *NERClient) Recognize(ctx context.Context, text string) ([]domain.Entity, error) {
	var resp nerResponse
	if err := c.client.postJSON(ctx, "/v1/ner", nerRequest{Text: text}, &resp); err != nil {
		return nil, fmt.Errorf("recognizing entities: %w", err)
	}

	entities := make([]domain.Entity, 0, len(resp.Entities))
	for _, e := range resp.Entities {
		entity := domain.Entity{
			Text:  e.Text,
			Label: domain.EntityLabel(e.Label),
			Start: e.Start,
			End:   e.End,
		}
		if err := entity.Validate(); err != nil {
			c.client.logger.WithFields(logrus.Fields{
				"label": e.Label,
				"text":  e.Text,
			}).Warn("Dropping invalid entity from model server")
			continue
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
