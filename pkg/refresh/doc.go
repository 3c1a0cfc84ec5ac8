// Package refresh reloads a configuration on a cron schedule.
//
// File sources are watched through config.Watch; sources that cannot be
// watched (plugins backed by a database, a Git ref or an object store)
// are refreshed by a Scheduler instead:
//
//	s := refresh.NewScheduler(cfg, "@every 5m", refresh.WithLogger(logger))
//	if err := s.Start(ctx); err != nil {
//		return err
//	}
//	defer s.Stop()
//
// Schedules use the standard five-field cron syntax or a descriptor such
// as "@hourly" or "@every 30s".
package refresh
