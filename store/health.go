package store

import (
	"context"
)

// Health is the operator-facing status of the record store.
type Health struct {
	Connected    bool     `json:"connected"`
	State        string   `json:"state"`
	Backend      string   `json:"backend"`
	CachedUsers  int64    `json:"cached_users"`
	CachedGuilds int64    `json:"cached_guilds"`
	RemoteUsers  int64    `json:"remote_users"`
	RemoteGuilds int64    `json:"remote_guilds"`
	Errors       []string `json:"errors"`
}

// HealthCheck reports the current backend state and record counts. It never
// fails: a failed remote probe is reported as connected=false with the error
// recorded in Errors.
func (s *RecordStore) HealthCheck(ctx context.Context) *Health {
	health := &Health{
		Backend: s.remoteName(),
		Errors:  []string{},
	}

	health.CachedUsers, _ = s.cache.Count(ctx, KindUser)
	health.CachedGuilds, _ = s.cache.Count(ctx, KindGuild)

	if s.remote != nil {
		rctx, cancel := s.remoteContext(ctx)
		err := s.remote.Ping(rctx)
		cancel()
		if err != nil {
			health.Errors = append(health.Errors, err.Error())
			if s.State() == StateConnected {
				s.markDegraded("ping", err)
			}
		} else {
			if users, err := s.countRemote(ctx, KindUser); err == nil {
				health.RemoteUsers = users
			} else {
				health.Errors = append(health.Errors, err.Error())
			}
			if guilds, err := s.countRemote(ctx, KindGuild); err == nil {
				health.RemoteGuilds = guilds
			} else {
				health.Errors = append(health.Errors, err.Error())
			}
		}
	}

	health.State = string(s.State())
	health.Connected = s.State() == StateConnected
	return health
}

func (s *RecordStore) countRemote(ctx context.Context, kind Kind) (int64, error) {
	rctx, cancel := s.remoteContext(ctx)
	defer cancel()
	return s.remote.Count(rctx, kind)
}
