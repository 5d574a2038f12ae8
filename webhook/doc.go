// Package webhook exposes the bot over HTTP.
//
// POST /webhook accepts a Twilio-style WhatsApp form (From, Body), runs the
// conversation turn, and answers with a TwiML <Response><Message> body. The
// handoff sentinel is translated into the user-facing handoff message here,
// at the outermost boundary. POST /documents/{id}/ingest schedules a
// detached ingestion run and returns 202 Accepted.
package webhook
