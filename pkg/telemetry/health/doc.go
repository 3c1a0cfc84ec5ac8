// Package health serves liveness and readiness probes for long-running
// confkit processes such as confkit watch.
//
// Liveness always succeeds while the process runs. Readiness runs every
// registered check concurrently, each bounded by the checker timeout, and
// reports 503 when any of them fails.
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("watcher", func(context.Context) error {
//	    if !cfg.Watching() {
//	        return errors.New("not watching")
//	    }
//	    return nil
//	})
//	checker.Mount(mux, health.VersionInfo{Version: "1.0.0"})
package health
