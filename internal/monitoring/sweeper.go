package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/focoshop/focoshop-be/internal/media"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// DefaultGracePeriod protects uploads whose user record is still being written.
const DefaultGracePeriod = time.Hour

// ImageLister lists stored images.
type ImageLister interface {
	List(ctx context.Context) ([]media.Object, error)
	Delete(ctx context.Context, ref string) error
}

// ImageReferences returns every image ref currently held by a user.
type ImageReferences interface {
	ListImages(ctx context.Context) ([]string, error)
}

// Sweeper periodically deletes stored images no user references.
type Sweeper struct {
	images ImageLister
	refs   ImageReferences
	grace  time.Duration
	now    func() time.Time
	cron   *cron.Cron
}

// NewSweeper creates a new Sweeper.
func NewSweeper(images ImageLister, refs ImageReferences, grace time.Duration) *Sweeper {
	return &Sweeper{
		images: images,
		refs:   refs,
		grace:  grace,
		now:    time.Now,
		cron:   cron.New(),
	}
}

// Start schedules the sweep with a standard cron spec or descriptor such as
// "@hourly". An empty spec leaves the sweeper disabled.
func (s *Sweeper) Start(spec string) error {
	if spec == "" {
		log.Info().Msg("Upload sweeper disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.Sweep(ctx); err != nil {
			log.Error().Err(err).Msg("Upload sweep failed")
		}
	}); err != nil {
		return fmt.Errorf("monitoring: invalid sweep schedule %q: %w", spec, err)
	}
	s.cron.Start()
	log.Info().Str("schedule", spec).Msg("Starting upload sweeper...")
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("Stopping upload sweeper.")
}

// Sweep deletes unreferenced images older than the grace period and returns
// how many were removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	refs, err := s.refs.ListImages(ctx)
	if err != nil {
		return 0, fmt.Errorf("monitoring.Sweep: %w", err)
	}
	inUse := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		inUse[ref] = struct{}{}
	}

	objects, err := s.images.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("monitoring.Sweep: %w", err)
	}

	cutoff := s.now().Add(-s.grace)
	removed := 0
	for _, obj := range objects {
		if _, ok := inUse[obj.Ref]; ok {
			continue
		}
		if obj.ModTime.After(cutoff) {
			continue
		}
		if err := s.images.Delete(ctx, obj.Ref); err != nil {
			log.Warn().Err(err).Str("ref", obj.Ref).Msg("Failed to delete orphaned upload")
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Msg("Swept orphaned uploads")
	}
	return removed, nil
}
