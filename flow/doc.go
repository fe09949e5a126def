// Package flow holds the user flows of the storage client.
//
// Orchestrator runs one flow at a time against the remote services: it performs
// local validation, decides whether a presentation exchange is needed and
// classifies failures. Controller sits above it and keeps the per-tab result
// state of an interactive session: it rejects overlapping submissions, cancels
// runs that a tab switch supersedes and owns the single displayed file handle.
//
// Retrieval by credential is a strict two-stage pipeline:
//
//	Idle -> ExchangingPresentation -> FetchingFile -> Succeeded | Failed
//	Idle -> FetchingFile -> Succeeded | Failed          (no credential)
//
// Nothing is cached between runs; every retrieval with a credential builds a
// new presentation and exchanges it for a new authorization token.
package flow
