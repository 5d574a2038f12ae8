// Package openai provides ai.Embedder and ai.Completer implementations backed
// by any OpenAI-compatible API (OpenAI itself, Ollama, LocalAI, vLLM).
package openai
