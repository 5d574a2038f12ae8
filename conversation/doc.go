// Package conversation implements the turn state machine of the bot.
//
// A turn flows through three stages. The intent filter asks the classifier
// for a confident match and short-circuits with its canned fulfillment text.
// On fallback, the retriever embeds the query and assembles the most similar
// knowledge snippets. The generator then produces a grounded answer, or the
// reserved handoff sentinel when the knowledge base cannot support one.
//
// No stage returns an error to its caller: failures are logged and degrade
// into a reply, so every inbound message gets exactly one response.
package conversation
