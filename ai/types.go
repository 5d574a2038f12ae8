package ai

// FallbackIntentLabel is the classifier's reserved label for "no confident
// match". A turn classified with this label is routed to the retrieval path.
const FallbackIntentLabel = "Default Fallback Intent"

// Intent is the raw classification result for one conversation turn.
type Intent struct {
	// Label is the display name of the matched intent.
	Label string

	// FulfillmentText is the canned reply configured for the intent, if any.
	FulfillmentText string

	// IsFallback reports that the classifier matched its fallback intent.
	IsFallback bool
}
