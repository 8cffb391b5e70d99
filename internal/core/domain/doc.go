// Package domain defines the shared domain vocabulary for retire-go.
//
// It carries no IO dependencies. This package contains:
//
//   - Errors: structured error codes used by the controller, the
//     configuration layer and the admin API
//
// Error codes have the form RT-<CATEGORY>-<NNNN>. The numeric part mirrors
// the HTTP status the admin API maps them to.
package domain
