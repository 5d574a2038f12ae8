// Package dialogflow binds ai.Classifier to Google Dialogflow ES.
//
// Intent matching, canned fulfillment texts and the fallback intent are all
// configured in the agent; this package only carries the query and a stable
// per-user session key to the service and interprets the result.
package dialogflow
