// Package session encodes the dashboard session into the value of the
// "session" cookie and back.
//
// There is no server-side session store. What the cookie protects depends on
// the Sealer the Codec is built with: crypto.NoopSealer reproduces the legacy
// readable base64 format, crypto.AesGcmSealer makes the value confidential and
// tamper-evident. Either way Decode never returns an error; anything it cannot
// read is treated as "logged out".
package session
