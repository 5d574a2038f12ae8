// Package ai defines the model-backed capabilities the bot consumes: text
// embeddings, grounded completions, and intent classification.
//
// The interfaces in this package are implemented by the openai and dialogflow
// subpackages for production use and by the mock subpackage for testing.
// Consumers receive them as constructor arguments; nothing in this module
// reaches for a process-wide client.
package ai
