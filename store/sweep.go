package store

import (
	"context"
	"time"

	"mascot/events"
	"mascot/models"

	log "github.com/sirupsen/logrus"
)

// SweepExpired removes entries from temporary_purchases, temporary_roles and
// reminders whose expiry instant has passed, and persists the reduced
// collections. It is idempotent: a second run with no time passing is a
// no-op. Returns the number of entries removed.
func (s *RecordStore) SweepExpired(ctx context.Context) (int, error) {
	docs, err := s.allDocuments(ctx, KindUser)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	removed := 0
	for id, doc := range docs {
		record, err := userFromDocument(doc)
		if err != nil {
			log.WithFields(log.Fields{"id": id}).WithError(err).Warn("Skipping malformed record during sweep")
			continue
		}

		purchases := activePurchases(record.TemporaryPurchases, now)
		roles := activeRoles(record.TemporaryRoles, now)
		reminders := activeReminders(record.Reminders, now)

		droppedPurchases := len(record.TemporaryPurchases) - len(purchases)
		droppedRoles := len(record.TemporaryRoles) - len(roles)
		droppedReminders := len(record.Reminders) - len(reminders)
		dropped := droppedPurchases + droppedRoles + droppedReminders
		if dropped == 0 {
			continue
		}

		applyFields(doc, map[string]any{
			"temporary_purchases": purchases,
			"temporary_roles":     roles,
			"reminders":           reminders,
		})
		if err := s.persist(ctx, KindUser, id, doc); err != nil {
			log.WithFields(log.Fields{"id": id}).WithError(err).Warn("Failed to persist swept record")
			continue
		}

		removed += dropped
		sweptTotal.WithLabelValues("temporary_purchases").Add(float64(droppedPurchases))
		sweptTotal.WithLabelValues("temporary_roles").Add(float64(droppedRoles))
		sweptTotal.WithLabelValues("reminders").Add(float64(droppedReminders))

		if s.bus != nil {
			s.bus.Emit(ctx, events.ItemsExpiredEvent{
				UserID:    id,
				Purchases: droppedPurchases,
				Roles:     droppedRoles,
				Reminders: droppedReminders,
			})
		}
	}

	if removed > 0 {
		log.WithField("removed", removed).Info("Swept expired entries")
	}
	return removed, nil
}

// StartSweeper starts a background worker that sweeps expired entries on an
// interval. Returns a cleanup function to stop the worker gracefully.
func (s *RecordStore) StartSweeper(ctx context.Context, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	stopChan := make(chan struct{})

	go func() {
		log.WithField("interval", interval).Info("Expiry sweeper started")

		// Run immediately on startup
		if _, err := s.SweepExpired(ctx); err != nil {
			log.WithError(err).Error("Error sweeping expired entries")
		}

		for {
			select {
			case <-ctx.Done():
				log.Info("Expiry sweeper shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Expiry sweeper shutting down (stop requested)...")
				return
			case <-ticker.C:
				if _, err := s.SweepExpired(ctx); err != nil {
					log.WithError(err).Error("Error sweeping expired entries")
				}
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(stopChan)
	}
}

// ActiveTemporaryPurchases returns the purchases whose expiry is still in
// the future. Expired entries are filtered from the view even before a sweep
// compacts them out of the persisted collection.
func (s *RecordStore) ActiveTemporaryPurchases(ctx context.Context, id int64) ([]models.TemporaryPurchase, error) {
	record, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return activePurchases(record.TemporaryPurchases, time.Now().UTC()), nil
}

// ActiveTemporaryRoles returns the role grants whose expiry is still in the future.
func (s *RecordStore) ActiveTemporaryRoles(ctx context.Context, id int64) ([]models.TemporaryRole, error) {
	record, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return activeRoles(record.TemporaryRoles, time.Now().UTC()), nil
}

// ActiveReminders returns the reminders that haven't come due yet.
func (s *RecordStore) ActiveReminders(ctx context.Context, id int64) ([]models.Reminder, error) {
	record, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return activeReminders(record.Reminders, time.Now().UTC()), nil
}

func activePurchases(entries []models.TemporaryPurchase, now time.Time) []models.TemporaryPurchase {
	out := make([]models.TemporaryPurchase, 0, len(entries))
	for _, e := range entries {
		if e.ExpiresAt.After(now) {
			out = append(out, e)
		}
	}
	return out
}

func activeRoles(entries []models.TemporaryRole, now time.Time) []models.TemporaryRole {
	out := make([]models.TemporaryRole, 0, len(entries))
	for _, e := range entries {
		if e.ExpiresAt.After(now) {
			out = append(out, e)
		}
	}
	return out
}

func activeReminders(entries []models.Reminder, now time.Time) []models.Reminder {
	out := make([]models.Reminder, 0, len(entries))
	for _, e := range entries {
		if e.RemindAt.After(now) {
			out = append(out, e)
		}
	}
	return out
}
