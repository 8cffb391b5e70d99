// Package worker is the process-group handle of a retire-go process running
// under a supervisor.
//
// The supervisor passes RETIRE_SUPERVISOR_SOCKET (a Unix domain socket path)
// and RETIRE_WORKER_ID in the environment. On retirement the worker sends one
// line over that socket:
//
//	DISCONNECT <worker-id> <pid>
//
// and expects a reply of "OK" or "ERR <message>". The supervisor can then
// start a replacement while this process drains.
package worker
