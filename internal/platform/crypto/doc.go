// Package crypto turns session payloads into cookie-safe strings.
//
// Two implementations: AesGcmSealer (AES-256-GCM, tamper-evident and
// confidential) and NoopSealer (plain standard base64, the legacy cookie
// format that any cookie holder can read and forge).
package crypto
