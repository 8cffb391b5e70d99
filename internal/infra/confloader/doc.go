// Package confloader loads layered configuration with koanf.
//
// Sources, later overriding earlier:
//
//  1. Defaults already present in the target struct
//  2. A YAML file
//  3. Environment variables with the RETIRE_ prefix
//  4. Maps (flags, tests)
//
// Environment keys use a double underscore between sections so that keys
// containing underscores stay addressable:
//
//	RETIRE_RETIRE__MAX_REQUESTS=5000  ->  retire.max_requests
//
// Watcher reports changes to watched files through fsnotify.
package confloader
