package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-rl/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
)

const (
	reportKeyPrefix = "report:"
	recentReportKey = "reports:recent"

	DefaultRecentReports = 50
)

var ErrReportWithoutID = errors.New("report has no id")

type ReportRepository interface {
	Save(ctx context.Context, report *entity.Report) error
	GetByID(ctx context.Context, id string) (*entity.Report, error)
	ListRecent(ctx context.Context) ([]string, error)
}

type dbReport struct {
	client *redis.Client
	ttl    time.Duration
	recent int64
}

// NewReportRepository - ttl 0 keeps reports forever; recent caps the list of
// latest report IDs.
func NewReportRepository(client *redis.Client, ttl time.Duration, recent int64) ReportRepository {
	if recent <= 0 {
		recent = DefaultRecentReports
	}

	return &dbReport{
		client: client,
		ttl:    ttl,
		recent: recent,
	}
}

func (that *dbReport) Save(ctx context.Context, report *entity.Report) error {
	if report.ID == "" {
		return ErrReportWithoutID
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("could not marshal report: %w", err)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, reportKeyPrefix+report.ID, reportJSON, that.ttl)
		pipe.LPush(ctx, recentReportKey, report.ID)
		pipe.LTrim(ctx, recentReportKey, 0, that.recent-1)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set report: %w", err)
	}

	return nil
}

func (that *dbReport) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	response, err := that.client.Get(ctx, reportKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrReportNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get report by id: %w", err)
	}

	var report entity.Report
	if err = json.Unmarshal(response, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return &report, nil
}

// ListRecent - IDs of the latest saved reports, newest first. Expired
// reports may still be listed; GetByID reports them as not found.
func (that *dbReport) ListRecent(ctx context.Context) ([]string, error) {
	ids, err := that.client.LRange(ctx, recentReportKey, 0, that.recent-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	return ids, nil
}
