package core

import "strings"

// transportPrefix is the scheme WhatsApp transports prepend to sender
// addresses, e.g. "whatsapp:+5215512345678".
const transportPrefix = "whatsapp:"

// SessionKeyFromSender derives the classifier session key from a
// transport-level sender address. The derivation is deterministic: the same
// end-user always maps to the same key, which is what preserves the
// classifier's per-session memory across turns. Generating a fresh key per
// turn would silently reset that memory.
func SessionKeyFromSender(sender string) string {
	key := strings.TrimSpace(sender)
	key = strings.TrimPrefix(key, transportPrefix)
	key = strings.TrimPrefix(key, "+")
	return key
}
