// Package openai implements the ai service interfaces against
// OpenAI-compatible APIs (OpenAI, Ollama, LocalAI, vLLM) via langchaingo.
//
// Constructors return the ai interfaces rather than concrete types; use
// openai.NewProvider for the usual case of a shared config across the
// embedder and generator.
package openai
