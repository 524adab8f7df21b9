package store

import "context"

func (s *Store) ListGameResults(ctx context.Context, roomID uint) ([]GameResult, error) {
	return s.repo.ListGameResults(ctx, roomID)
}

func (s *Store) ListGameResultsByHost(ctx context.Context, hostUID string) ([]GameResult, error) {
	return s.repo.ListGameResultsByHost(ctx, hostUID)
}

func (s *Store) GetGameResult(ctx context.Context, id uint) (GameResult, error) {
	return s.repo.GetGameResult(ctx, id)
}
