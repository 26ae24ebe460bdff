package avrdude

import "strings"

// Cause is why a flash attempt ended the way it did.
type Cause string

const (
	CauseNone            Cause = ""
	CauseIncompatible    Cause = "incompatible_chip"
	CauseNoBoard         Cause = "no_board"
	CauseCommunication   Cause = "communication"
	CausePortMissing     Cause = "port_missing"
	CauseUnknown         Cause = "unknown"
	CauseToolUnavailable Cause = "tool_unavailable"
)

// Outcome is the classified result of one avrdude run.
type Outcome struct {
	Success bool
	Cause   Cause
	Message string // user-facing; empty on success
	Marker  string // the substring that decided the outcome, if any
}

// successMarker ends avrdude's "NNNN bytes of flash written" line.
const successMarker = "flash written"

// rule maps a diagnostic substring to a cause. Order matters: the first rule
// whose marker appears wins.
type rule struct {
	marker  string
	cause   Cause
	message string
}

var rules = []rule{
	{
		// avrdude: Expected signature for ATMEGA328P is 1E 95 0F
		marker:  "Expected signature",
		cause:   CauseIncompatible,
		message: "The connected board does not have a compatible chip.",
	},
	{
		// avrdude: stk500_getsync(): not in sync: resp=0x00
		marker:  "resp=0x00",
		cause:   CauseNoBoard,
		message: "There does not seem to be any board connected to the port.",
	},
	{
		// avrdude: ser_send(): write error: sorry no info avail
		marker:  "ser_send()",
		cause:   CauseCommunication,
		message: "An error occurred while communicating with the board.\nMake sure it is properly connected.",
	},
	{
		// avrdude: ser_open(): can't open device "/dev/ttyS9"
		marker:  "ser_open()",
		cause:   CausePortMissing,
		message: "The port does not exist. Make sure the board is properly connected.",
	},
}

// genericMessage is reported when no rule matches.
const genericMessage = "An error occurred while programming the board.\nCheck the connections."

// Classify inspects avrdude's standard error. Matching is by plain substring
// on the human-readable text.
func Classify(stderr string) Outcome {
	if strings.Contains(stderr, successMarker) {
		return Outcome{Success: true, Marker: successMarker}
	}
	for _, r := range rules {
		if strings.Contains(stderr, r.marker) {
			return Outcome{Cause: r.cause, Message: r.message, Marker: r.marker}
		}
	}
	return Outcome{Cause: CauseUnknown, Message: genericMessage}
}
