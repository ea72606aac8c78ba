package backend

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

// HistoryItem is one past question set as listed by the backend. Fields are
// decoded leniently: history rows written by older backends may miss fields
// or carry numbers where strings are expected.
type HistoryItem struct {
	ID            string   `json:"_id"`
	Timestamp     string   `json:"timestamp"`
	SourceType    string   `json:"sourceType"`
	Questions     []string `json:"questions"`
	Skills        []string `json:"skills"`
	ResumeDetails string   `json:"resumeDetails"`
	ResumeName    string   `json:"resumeName"`
}

// History lists past question sets in backend order. A body that is not a
// list yields an empty history.
func (c *Client) History(ctx context.Context) ([]HistoryItem, error) {
	var raw any
	if err := c.getJSON(ctx, questionHistoryPath, &raw); err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	list, ok := raw.([]any)
	if !ok {
		c.logger.Debug("history response is not a list", zap.String("type", fmt.Sprintf("%T", raw)))
		return []HistoryItem{}, nil
	}

	items := make([]HistoryItem, 0, len(list))
	for i, entry := range list {
		var item HistoryItem
		if err := decodeLoose(entry, &item); err != nil {
			return nil, fmt.Errorf("%w: history item %d: %w", ErrMalformedResponse, i, err)
		}
		items = append(items, item)
	}

	return items, nil
}

func decodeLoose(input any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}
