package webhook

import (
	"encoding/xml"
	"net/http"
)

// twimlResponse is the minimal TwiML messaging reply: one outbound message
// per inbound message.
type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

func writeTwiML(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	writeTwiMLBody(w, message)
}

func writeTwiMLBody(w http.ResponseWriter, message string) {
	w.Write([]byte(xml.Header))
	// Marshal on this struct cannot fail; the encoder output is discarded on
	// a broken connection anyway.
	out, _ := xml.Marshal(twimlResponse{Message: message})
	w.Write(out)
}
