// Package identify turns a garden photo into a structured pest or disease
// diagnosis by prompting a multimodal model and parsing its JSON reply.
//
// Model output is treated as untrusted text: it is stripped of markdown
// fences and trailing commas, then decoded. Decoding failures surface as
// ErrParse and the "no_disease_found" sentinel as ErrNoDiseaseFound.
package identify
