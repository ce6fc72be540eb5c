package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"kickfleet/internal/geo"
	"kickfleet/internal/models"
)

const (
	// matchWindow bounds how far a candidate sample's timestamp may sit
	// from the report time.
	matchWindow = 5 * time.Minute
	// timeWeight converts seconds of time offset into meters of penalty:
	// one meter of distance trades against 0.1 second of offset.
	timeWeight = 10.0
)

// MatcherService attributes a crowd-sourced violation report to the most
// plausible nearby rider.
type MatcherService struct {
	telemetry TelemetryStore
	logger    *zap.Logger
}

// NewMatcherService builds service.
func NewMatcherService(telemetry TelemetryStore, logger *zap.Logger) *MatcherService {
	return &MatcherService{telemetry: telemetry, logger: logger}
}

// FindClosestRider scans telemetry within ±5 minutes of the report,
// excluding the reporter's own samples, and returns the candidate with
// the lowest combined space-time cost. No candidate is not an error; the
// report stays unattributed.
func (s *MatcherService) FindClosestRider(ctx context.Context, reporterUserID int64, reporterPos geo.Position, reportTime time.Time) (*models.ViolationMatch, error) {
	if err := reporterPos.Validate(); err != nil {
		return nil, err
	}

	from := reportTime.Add(-matchWindow)
	to := reportTime.Add(matchWindow)
	samples, err := s.telemetry.SamplesInWindow(ctx, from, to, reporterUserID)
	if err != nil {
		return nil, err
	}

	best := &models.ViolationMatch{}
	for _, sample := range samples {
		km, err := geo.Distance(reporterPos, sample.Position())
		if err != nil {
			// Stored samples are validated on ingest; skip anything odd.
			s.logger.Warn("skipping telemetry sample with bad coordinates",
				zap.Int64("sample_id", sample.ID),
				zap.Error(err),
			)
			continue
		}
		offsetSeconds := math.Abs(reportTime.Sub(sample.CapturedAt).Seconds())
		score := km*1000 + timeWeight*offsetSeconds

		if !best.Matched || score < best.Score {
			best = &models.ViolationMatch{
				Matched:    true,
				UserID:     sample.UserID,
				DeviceCode: sample.DeviceCode,
				Score:      score,
			}
		}
	}

	if best.Matched {
		s.logger.Info("violation report attributed",
			zap.Int64("reporter_user_id", reporterUserID),
			zap.Int64("reported_user_id", best.UserID),
			zap.String("reported_device_code", best.DeviceCode),
			zap.Float64("score", best.Score),
		)
	}
	return best, nil
}
