// Package fault provides a process-wide fault notification hub.
//
// Go has no global uncaught-panic hook, so goroutines that want their
// panics observed defer Guard. Guard notifies subscribers and then
// re-panics: observing a fault never handles it.
//
// Usage:
//
//	go func() {
//	    defer fault.Guard()
//	    work()
//	}()
//
//	unsubscribe := fault.Default().Subscribe(func(err error) { ... })
package fault
