package backend

import (
	"bytes"
	"encoding/json"
)

// Page is the DRF pagination envelope
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// decodePage accepts both a paginated envelope and a bare JSON array,
// since list endpoints switch between the two depending on server settings.
func decodePage[T any](raw json.RawMessage) (*Page[T], error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return &Page[T]{Count: len(items), Results: items}, nil
	}
	page := &Page[T]{}
	if len(trimmed) == 0 {
		return page, nil
	}
	if err := json.Unmarshal(trimmed, page); err != nil {
		return nil, err
	}
	return page, nil
}
