// Package worker holds the periodic maintenance jobs of the blog and the
// HTTP server exposing their health and metrics.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"blog-platform/internal/domain/entity"
	"blog-platform/internal/handler/http/respond"
	"blog-platform/internal/observability/metrics"
	"blog-platform/internal/pkg/search"
	"blog-platform/internal/repository"
)

// Job names used as metric labels.
const (
	JobPurge = "purge"
	JobStats = "stats"
)

// PurgeStats is the outcome of one purge run.
type PurgeStats struct {
	Sessions int64
	Tokens   int64
	Users    int64
	Duration time.Duration
}

// Purger removes expired or revoked sessions, activation tokens older than
// TokenMaxAge and the never activated accounts those tokens belonged to, so
// that their usernames can be registered again.
type Purger struct {
	Sessions    repository.SessionRepository
	Tokens      repository.TokenRepository
	Users       repository.UserRepository
	TokenMaxAge time.Duration
	Now         func() time.Time
}

func (p *Purger) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Run purges the three tables. A failure on one table does not stop the
// others; the errors are joined.
func (p *Purger) Run(ctx context.Context) (PurgeStats, error) {
	start := time.Now()
	now := p.now()
	cutoff := now.Add(-p.TokenMaxAge)
	var stats PurgeStats
	var errs []error

	n, err := p.Sessions.DeleteExpired(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("purge sessions: %w", err))
	} else {
		stats.Sessions = n
		metrics.RecordPurge("sessions", n)
	}

	n, err = p.Tokens.DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		errs = append(errs, fmt.Errorf("purge activation tokens: %w", err))
	} else {
		stats.Tokens = n
		metrics.RecordPurge("activation_tokens", n)
	}

	n, err = p.Users.DeleteInactiveBefore(ctx, cutoff)
	if err != nil {
		errs = append(errs, fmt.Errorf("purge inactive users: %w", err))
	} else {
		stats.Users = n
		metrics.RecordPurge("inactive_users", n)
	}

	stats.Duration = time.Since(start)
	return stats, errors.Join(errs...)
}

// ArticleStats publishes the number of articles per status.
type ArticleStats struct {
	Articles repository.ArticleRepository
}

// Run counts active and archived articles.
func (s *ArticleStats) Run(ctx context.Context) error {
	for _, status := range []entity.ArticleStatus{entity.StatusActive, entity.StatusArchived} {
		n, err := s.Articles.Count(ctx, repository.ListQuery{Filter: search.Status(string(status))})
		if err != nil {
			return fmt.Errorf("count %s articles: %w", status, err)
		}
		metrics.UpdateArticlesTotal(string(status), n)
	}
	return nil
}

// Runner executes jobs with a timeout and records their metrics.
type Runner struct {
	Metrics *WorkerMetrics
	Logger  *slog.Logger
	Timeout time.Duration
}

// Run executes fn as job. Errors are logged and counted, never returned,
// so that a failed run does not stop the scheduler.
func (r *Runner) Run(job string, fn func(ctx context.Context) error) {
	start := time.Now()
	r.Metrics.RecordJobRun(job, "started")
	r.Logger.Info("job started", slog.String("job", job))

	ctx, cancel := context.WithTimeout(context.Background(), r.Timeout)
	defer cancel()

	err := fn(ctx)
	r.Metrics.RecordJobDuration(job, time.Since(start).Seconds())
	if err != nil {
		r.Metrics.RecordJobRun(job, "failure")
		// DSN passwords can surface in driver errors
		r.Logger.Error("job failed", slog.String("job", job), slog.String("error", respond.SanitizeError(err)))
		return
	}

	r.Metrics.RecordJobRun(job, "success")
	r.Metrics.RecordLastSuccess(job)
	r.Logger.Info("job completed",
		slog.String("job", job),
		slog.Duration("duration", time.Since(start)))
}
