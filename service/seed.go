// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"
	"io"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/danielhkuo/livepoll/models"
)

// ImportSeed loads a JSON array of poll aggregates, as authored outside this
// service, and imports each one. It stops at the first poll that fails.
func (s *Service) ImportSeed(ctx context.Context, r io.Reader) (int, error) {
	var polls []models.PollAggregate
	if err := json.NewDecoder(r).Decode(&polls); err != nil {
		return 0, errors.Wrap(err, "decode seed")
	}

	for i, agg := range polls {
		if err := s.Import(ctx, agg); err != nil {
			return i, errors.Wrapf(err, "import poll %q", agg.ID)
		}
	}
	return len(polls), nil
}
