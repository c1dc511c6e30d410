package usecase

import (
	"context"
	"fmt"
	"sync"

	"gifts-buyer/internal/domain"
	"gifts-buyer/internal/domain/model"
	"gifts-buyer/internal/domain/ports/repository"
	"gifts-buyer/internal/infra/metrics"

	"github.com/rs/zerolog"
)

type RangeUseCase interface {
	List() []model.GiftRange
	Count() int
	Add(ctx context.Context, text string) (model.GiftRange, error)
	Edit(ctx context.Context, index int, text string) (model.GiftRange, error)
	Delete(ctx context.Context, index int) (model.GiftRange, error)
	Match(price, remaining int64) model.Match
}

// Compile-time check
var _ RangeUseCase = (*RangeStore)(nil)

// RangeStore owns the ordered range list. Mutation and persistence happen under one lock;
// the in-memory list is swapped only after the writer succeeded, so readers never observe
// a list that differs from the durable copy.
type RangeStore struct {
	mu     sync.RWMutex
	ranges []model.GiftRange
	writer repository.RangeWriter
	log    *zerolog.Logger
}

func NewRangeStore(initial []model.GiftRange, writer repository.RangeWriter, logger *zerolog.Logger) *RangeStore {
	l := logger.With().Str("component", "RangeStore").Logger()
	return &RangeStore{ranges: cloneRanges(initial), writer: writer, log: &l}
}

func cloneRanges(in []model.GiftRange) []model.GiftRange {
	out := make([]model.GiftRange, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

// List returns a copy of the ranges in match order.
func (s *RangeStore) List() []model.GiftRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRanges(s.ranges)
}

func (s *RangeStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ranges)
}

// Match runs the matcher against the current list without copying it.
func (s *RangeStore) Match(price, remaining int64) model.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := MatchRange(price, remaining, s.ranges)
	m.Recipients = append([]model.Recipient(nil), m.Recipients...)
	return m
}

func (s *RangeStore) Add(ctx context.Context, text string) (model.GiftRange, error) {
	r, err := ParseRange(text)
	if err != nil {
		metrics.IncRangeMutation("add", "invalid")
		return model.GiftRange{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(cloneRanges(s.ranges), r)
	if err := s.commit(ctx, "add", next); err != nil {
		return model.GiftRange{}, err
	}
	s.log.Info().Str("range", FormatRange(r)).Int("count", len(next)).Msg("range added")
	return r.Clone(), nil
}

func (s *RangeStore) Edit(ctx context.Context, index int, text string) (model.GiftRange, error) {
	r, err := ParseRange(text)
	if err != nil {
		metrics.IncRangeMutation("edit", "invalid")
		return model.GiftRange{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(index); err != nil {
		metrics.IncRangeMutation("edit", "out_of_range")
		return model.GiftRange{}, err
	}
	next := cloneRanges(s.ranges)
	next[index] = r
	if err := s.commit(ctx, "edit", next); err != nil {
		return model.GiftRange{}, err
	}
	s.log.Info().Int("index", index).Str("range", FormatRange(r)).Msg("range edited")
	return r.Clone(), nil
}

func (s *RangeStore) Delete(ctx context.Context, index int) (model.GiftRange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(index); err != nil {
		metrics.IncRangeMutation("delete", "out_of_range")
		return model.GiftRange{}, err
	}
	removed := s.ranges[index].Clone()
	next := make([]model.GiftRange, 0, len(s.ranges)-1)
	next = append(next, cloneRanges(s.ranges[:index])...)
	next = append(next, cloneRanges(s.ranges[index+1:])...)
	if err := s.commit(ctx, "delete", next); err != nil {
		return model.GiftRange{}, err
	}
	s.log.Info().Int("index", index).Str("range", FormatRange(removed)).Msg("range deleted")
	return removed, nil
}

func (s *RangeStore) checkIndex(index int) error {
	if index < 0 || index >= len(s.ranges) {
		return fmt.Errorf("%w: %d not in [0,%d)", domain.ErrRangeIndexOutOfRange, index, len(s.ranges))
	}
	return nil
}

// commit persists next and installs it. Must be called with mu held.
func (s *RangeStore) commit(ctx context.Context, op string, next []model.GiftRange) error {
	if err := s.writer.WriteRanges(ctx, FormatRanges(next)); err != nil {
		metrics.IncRangeMutation(op, "persist_failed")
		s.log.Error().Err(err).Str("op", op).Msg("persisting ranges failed; in-memory list unchanged")
		return fmt.Errorf("%w: %v", domain.ErrPersistRanges, err)
	}
	s.ranges = next
	metrics.IncRangeMutation(op, "ok")
	metrics.SetRangesConfigured(len(next))
	return nil
}
