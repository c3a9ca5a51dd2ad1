// Package authz decides whether an authenticated session may use the
// dashboard.
//
// The decision is a left-to-right fold over an ordered list of authority
// sources. The first Affirmative verdict grants access; Denied and
// Inconclusive verdicts pass to the next source. When no source grants
// access the result is false, except when no dashboard owner id is
// configured: then every authenticated user is authorized. That fail-open
// default exists for zero-configuration first runs and means a deployment
// that forgets DASHBOARD_OWNER_ID admits anyone who completes the OAuth flow.
package authz
