// Package filestore reads the bot's on-disk JSON documents as authority
// sources: the general config file (its "owner" field) and the
// permissions map (user id → {"dashboard": bool}).
//
// Files are re-read on every check. A missing, unreadable or malformed file
// yields an Inconclusive verdict.
package filestore
