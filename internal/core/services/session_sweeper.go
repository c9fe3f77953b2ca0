package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/vncsmyrnk/auth-service/internal/core/ports"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var _ ports.SessionSweeper = (*SessionSweeper)(nil)

const defaultSweepConcurrency = 4

type SessionSweeper struct {
	userRepo    ports.UserRepository
	tokens      ports.TokenService
	concurrency int
	logger      *zap.Logger
}

func NewSessionSweeper(userRepo ports.UserRepository, tokens ports.TokenService, logger *zap.Logger) *SessionSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionSweeper{
		userRepo:    userRepo,
		tokens:      tokens,
		concurrency: defaultSweepConcurrency,
		logger:      logger.Named("sweeper"),
	}
}

// SweepExpired clears stored refresh tokens that no longer verify. A row is
// only cleared while it still holds the token that was checked, so a token
// stored by a concurrent sign-in or refresh survives the sweep.
func (s *SessionSweeper) SweepExpired(ctx context.Context) (int, error) {
	users, err := s.userRepo.ListWithRefreshToken(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch sessions: %w", err)
	}

	var swept atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, user := range users {
		if user.RefreshToken == nil {
			continue
		}
		stale := *user.RefreshToken
		if _, err := s.tokens.Verify(stale); err == nil {
			continue
		}

		id := user.ID
		g.Go(func() error {
			cleared, err := s.userRepo.ClearRefreshTokenIf(gctx, id, stale)
			if err != nil {
				return fmt.Errorf("failed to sweep user %s: %w", id, err)
			}
			if cleared {
				swept.Add(1)
			} else {
				s.logger.Debug("session changed during sweep", zap.Stringer("user_id", id))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(swept.Load()), err
	}

	s.logger.Info("expired sessions swept", zap.Int("scanned", len(users)), zap.Int64("swept", swept.Load()))
	return int(swept.Load()), nil
}
