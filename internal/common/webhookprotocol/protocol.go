package webhookprotocol

// Ack is returned for every delivery the processor has durably handled or
// deliberately ignored.
type Ack struct {
	Received bool `json:"received"`
}

type Error struct {
	Error string `json:"error"`
}
