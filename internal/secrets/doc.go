// Package secrets detects and redacts credentials in free text.
//
// Chat messages and tracking notes are user-typed and sometimes carry pasted
// API keys or tokens. They are scrubbed before being sent to the model or
// persisted. Findings record rule IDs and positions, never the matched value.
package secrets
