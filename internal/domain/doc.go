// Package domain defines the core types and interfaces of the dashboard's
// session and authorization subsystem.
//
// Concept-oriented files (identity.go, session.go, authz.go, permissions.go,
// errors.go) hold shared types and the interfaces that adapters implement.
// No I/O lives here.
package domain
