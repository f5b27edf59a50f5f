package weather

import "encoding/json"

// OutcomeKind tags which variant an Outcome holds.
type OutcomeKind int

const (
	OutcomeIdle OutcomeKind = iota
	OutcomeSuccess
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "idle"
	}
}

// FailureKind separates request failures from malformed provider payloads.
type FailureKind string

const (
	FailureRequest FailureKind = "request"
	FailureParse   FailureKind = "parse"
)

// User-facing failure messages.
const (
	MsgCityNotFound       = "City not found"
	MsgUnexpectedResponse = "Unexpected response from weather provider"
)

// Failure is the payload of a failed lookup.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// Outcome is the result of the most recent lookup: idle, a record, or a failure.
// The zero value is Idle.
type Outcome struct {
	kind    OutcomeKind
	record  Record
	failure Failure
}

// Idle is the outcome before any query has resolved.
func Idle() Outcome { return Outcome{} }

// Success wraps a record.
func Success(r Record) Outcome {
	return Outcome{kind: OutcomeSuccess, record: r}
}

// Fail builds a failure outcome.
func Fail(kind FailureKind, message string) Outcome {
	return Outcome{kind: OutcomeFailure, failure: Failure{Kind: kind, Message: message}}
}

func (o Outcome) Kind() OutcomeKind { return o.kind }

// Record returns the record when the outcome is a success.
func (o Outcome) Record() (Record, bool) {
	if o.kind != OutcomeSuccess {
		return Record{}, false
	}
	return o.record, true
}

// Failure returns the failure when the outcome is a failure.
func (o Outcome) Failure() (Failure, bool) {
	if o.kind != OutcomeFailure {
		return Failure{}, false
	}
	return o.failure, true
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	out := struct {
		Kind    string   `json:"kind"`
		Record  *Record  `json:"record,omitempty"`
		Failure *Failure `json:"failure,omitempty"`
	}{Kind: o.kind.String()}
	if r, ok := o.Record(); ok {
		out.Record = &r
	}
	if f, ok := o.Failure(); ok {
		out.Failure = &f
	}
	return json.Marshal(out)
}
