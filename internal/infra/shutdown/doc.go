// Package shutdown runs cleanup hooks once, on the first of: SIGINT/SIGTERM,
// an explicit Trigger, or a process exit through atexit.Exit.
//
// Usage:
//
//	h := shutdown.NewHandler(30 * time.Second)
//	h.OnShutdown(srv.Shutdown)
//	h.RegisterAtExit() // hooks also run before a retirement exit
//	h.Wait()
package shutdown
