// SPDX-License-Identifier: EPL-2.0

// Package mixer renders the server-side mood mixes.
package mixer

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ik5/moodmix"
	"github.com/ik5/moodmix/audio"
	"github.com/ik5/moodmix/formats/wav"
	"github.com/ik5/moodmix/internal/metrics"
	"github.com/ik5/moodmix/internal/model"
)

// Mix sources, used as metric labels.
const (
	SourceMedia = "media"
	SourceURL   = "url"
)

var ErrRateLimited = errors.New("mixer: mix rate limit exceeded")

type MediaFinder interface {
	MediaByID(ctx context.Context, id string) (*model.Media, error)
}

type ObjectGetter interface {
	Get(ctx context.Context, name string) ([]byte, error)
}

type Downloader interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// Service loads the voice and the mood track and mixes them. Mixing is CPU
// bound, so requests beyond the limiter's rate and burst are refused.
type Service struct {
	media   MediaFinder
	bucket  ObjectGetter
	fetcher Downloader
	opts    moodmix.Options
	limiter *rate.Limiter
	logger  *zap.Logger
}

// Config tunes a Service.
type Config struct {
	MoodGain float64
	Rate     float64 // mixes per second
	Burst    int
}

func NewService(media MediaFinder, bucket ObjectGetter, fetcher Downloader, cfg Config, logger *zap.Logger) (*Service, error) {
	opts := moodmix.DefaultOptions()
	opts.SecondaryGain = audio.Gain(cfg.MoodGain)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("mixer: %w", err)
	}

	return &Service{
		media:   media,
		bucket:  bucket,
		fetcher: fetcher,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst),
		logger:  logger.With(zap.String("component", "mixer")),
	}, nil
}

// MixMedia mixes a stored media file with its mood track and returns a WAV.
func (s *Service) MixMedia(ctx context.Context, mediaID string) ([]byte, error) {
	return s.run(SourceMedia, func() ([]byte, []byte, error) {
		m, err := s.media.MediaByID(ctx, mediaID)
		if err != nil {
			return nil, nil, err
		}

		voice, err := s.bucket.Get(ctx, m.FileObject)
		if err != nil {
			return nil, nil, fmt.Errorf("media file %s: %w", m.FileObject, err)
		}

		mood, err := s.moodTrack(ctx, m.Mood)
		if err != nil {
			return nil, nil, err
		}

		return voice, mood, nil
	}, zap.String("mediaID", mediaID))
}

// MixURL fetches remote audio and mixes it with the track for mood.
func (s *Service) MixURL(ctx context.Context, audioURL string, mood model.Mood) ([]byte, error) {
	return s.run(SourceURL, func() ([]byte, []byte, error) {
		voice, err := s.fetcher.Get(ctx, audioURL)
		if err != nil {
			return nil, nil, err
		}

		track, err := s.moodTrack(ctx, mood)
		if err != nil {
			return nil, nil, err
		}

		return voice, track, nil
	}, zap.String("audioURL", audioURL), zap.String("mood", string(mood)))
}

func (s *Service) moodTrack(ctx context.Context, mood model.Mood) ([]byte, error) {
	name := mood.TrackObject()
	data, err := s.bucket.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("mood track %s: %w", name, err)
	}

	return data, nil
}

func (s *Service) run(source string, load func() (voice, mood []byte, err error), fields ...zap.Field) ([]byte, error) {
	if !s.limiter.Allow() {
		metrics.MixesTotal.WithLabelValues(source, metrics.OutcomeRateLimited).Inc()
		s.logger.Warn("mix rejected by rate limit", fields...)
		return nil, ErrRateLimited
	}

	metrics.MixesInFlight.Inc()
	defer metrics.MixesInFlight.Dec()

	start := time.Now()
	out, err := s.mix(load)
	elapsed := time.Since(start)
	metrics.MixDuration.WithLabelValues(source).Observe(float64(elapsed.Milliseconds()))

	if err != nil {
		metrics.MixesTotal.WithLabelValues(source, metrics.OutcomeError).Inc()
		s.logger.Info("mix failed", append(fields, zap.Duration("elapsed", elapsed), zap.Error(err))...)
		return nil, err
	}

	seconds := wavSeconds(out)
	metrics.MixesTotal.WithLabelValues(source, metrics.OutcomeOK).Inc()
	metrics.MixOutputSeconds.Observe(seconds)
	s.logger.Info("mix rendered", append(fields,
		zap.Duration("elapsed", elapsed),
		zap.Float64("audioSeconds", seconds),
		zap.Int("bytes", len(out)),
	)...)

	return out, nil
}

func (s *Service) mix(load func() ([]byte, []byte, error)) ([]byte, error) {
	voice, mood, err := load()
	if err != nil {
		return nil, err
	}

	return moodmix.MixBytes(voice, mood, s.opts)
}

// wavSeconds reads the byte rate out of an encoded header.
func wavSeconds(data []byte) float64 {
	if len(data) < wav.HeaderSize {
		return 0
	}
	byteRate := binary.LittleEndian.Uint32(data[28:32])
	if byteRate == 0 {
		return 0
	}

	return float64(len(data)-wav.HeaderSize) / float64(byteRate)
}
