package gameclock

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"walletbot/models"
)

const (
	// periodSeconds is the length of one draw cycle
	periodSeconds = 60

	// closingSeconds is the tail of a period during which bets are rejected
	closingSeconds = 5

	// resultsKey is the redis list holding the global result history,
	// newest first
	resultsKey = "gameclock:results"

	// maxResults caps the stored history
	maxResults = 50
)

// Service runs the periodic draw and answers read-only queries about it.
// Draw state lives in redis so the history survives restarts and can be
// shared by multiple processes.
type Service struct {
	rdb *redis.Client
	rng *rand.Rand
}

// New creates a game clock backed by the redis instance at url
func New(url string) (*Service, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	return &Service{
		rdb: redis.NewClient(opts),
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Close releases the redis connection
func (s *Service) Close() error {
	return s.rdb.Close()
}

// periodIDAt derives the period identifier for a wall-clock instant:
// YYYYMMDD followed by the minute-of-day sequence number.
func periodIDAt(t time.Time) int64 {
	day := int64(t.Year())*10000 + int64(t.Month())*100 + int64(t.Day())
	seq := int64(t.Hour()*60 + t.Minute())
	return day*1_000_000 + seq
}

// secondsLeftAt returns how long the period containing t still has to run
func secondsLeftAt(t time.Time) int {
	return periodSeconds - t.Second()%periodSeconds
}

// statusAt returns where the period containing t is in its lifecycle
func statusAt(t time.Time) models.PeriodStatus {
	if secondsLeftAt(t) <= closingSeconds {
		return models.PeriodClosing
	}
	return models.PeriodOpen
}

// colorFor maps a drawn digit to its display color
func colorFor(result int) string {
	switch {
	case result == 0 || result == 5:
		return "violet"
	case result%2 == 0:
		return "red"
	default:
		return "green"
	}
}

// CurrentPeriod returns a snapshot of the running period
func (s *Service) CurrentPeriod(ctx context.Context) (*models.GamePeriod, error) {
	now := time.Now()

	period := &models.GamePeriod{
		ID:          periodIDAt(now),
		SecondsLeft: secondsLeftAt(now),
		Status:      statusAt(now),
	}

	results, err := s.RecentResults(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(results) > 0 {
		r := results[0].Result
		period.LastResult = &r
	}

	return period, nil
}

// RecentResults returns the latest settled draws, newest first
func (s *Service) RecentResults(ctx context.Context, limit int) ([]models.PeriodResult, error) {
	raw, err := s.rdb.LRange(ctx, resultsKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read result history: %w", err)
	}

	results := make([]models.PeriodResult, 0, len(raw))
	for _, item := range raw {
		var r models.PeriodResult
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			log.WithFields(log.Fields{
				"item":  item,
				"error": err,
			}).Warn("Skipping unreadable result history entry")
			continue
		}
		results = append(results, r)
	}

	return results, nil
}

// Run draws a result at the end of every period until ctx is cancelled.
// Safe to run in exactly one process; concurrent runners would double-draw.
func (s *Service) Run(ctx context.Context) error {
	log.WithField("periodSeconds", periodSeconds).Info("Game clock started")

	for {
		now := time.Now()
		wait := time.Duration(secondsLeftAt(now)) * time.Second

		select {
		case <-ctx.Done():
			log.Info("Game clock stopped")
			return ctx.Err()
		case <-time.After(wait):
		}

		// The period that just ended
		ended := periodIDAt(time.Now().Add(-time.Second))
		if err := s.draw(ctx, ended); err != nil {
			log.WithFields(log.Fields{
				"period": ended,
				"error":  err,
			}).Error("Failed to record draw result")
		}
	}
}

// draw records the result for a finished period
func (s *Service) draw(ctx context.Context, periodID int64) error {
	result := s.rng.Intn(10)

	entry := models.PeriodResult{
		Period: periodID,
		Result: result,
		Color:  colorFor(result),
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, resultsKey, payload)
	pipe.LTrim(ctx, resultsKey, 0, maxResults-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}

	log.WithFields(log.Fields{
		"period": periodID,
		"result": result,
		"color":  entry.Color,
	}).Info("Period result drawn")

	return nil
}
