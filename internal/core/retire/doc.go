// Package retire implements graceful, self-initiated process retirement.
//
// A Controller counts requests flowing through its middleware and watches
// for faults. When the request threshold is reached, a fault is observed,
// or Retire is called, it starts a retirement sequence exactly once:
//
//  1. A deferral is drawn uniformly from [MinDeferral, MaxDeferral) and
//     the exit is scheduled after it.
//  2. Observers registered with OnRetire are notified. Any of them may
//     call Retirement.Cancel while being notified to abort the sequence.
//  3. The host stops accepting connections and, under a worker model,
//     the worker announces its disconnection to the supervisor.
//  4. When the deferral elapses the process exits with Config.ExitCode.
//
// The deferral staggers restarts across a fleet and doubles as the drain
// window for in-flight requests. The controller does not wait for the
// drain itself.
//
// States:
//
//	Armed ──► Pending ──► Terminating ──► Exited
//	  │          │
//	  │          └──(Cancel)──► Disarmed   (Armed with RearmAfterCancel)
//	  └──(custom Terminate)──► Delegated
//
// Usage:
//
//	cfg := retire.DefaultConfig()
//	cfg.MaxRequests = 10000
//	ctrl, err := retire.New(server, cfg, retire.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	handler = ctrl.Middleware()(handler)
package retire
