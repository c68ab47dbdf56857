// Package model defines the transport abstraction that delivers raw provider
// messages to blockmesh.
//
// Core goals:
//   - Unify streaming + non‑streaming generation behind a single interface
//   - Hand back untranslated message.Chunk / message.Message values stamped
//     with the provider tag, leaving block translation to the registry
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (e.g. DeepSeek, Anthropic) implement the Model interface from this
// package so the accumulator and CLI remain decoupled from vendor SDKs.
package model
