// Package pipeline implements the runtime every stage binary instantiates:
// a consume→transform→produce loop over durable queues, a timed producer
// loop for stages with no input, and the supervisory restart wrapper both
// share.
package pipeline

// Outbound is one message a transform wants published.
type Outbound struct {
	Queue string
	Body  []byte
}

type kind int

const (
	kindProcessed kind = iota
	kindFiltered
	kindFailed
)

// Result is the explicit outcome of one transform invocation. The runtime
// dispatches on the tag: Processed publishes then acks, Filtered acks with
// no output, Failed rejects without requeue and drops the message.
type Result struct {
	kind    kind
	outputs []Outbound
	err     error
}

// Processed acknowledges the input after every output is durably published.
func Processed(outputs ...Outbound) Result {
	return Result{kind: kindProcessed, outputs: outputs}
}

// Filtered acknowledges the input without producing output.
func Filtered() Result {
	return Result{kind: kindFiltered}
}

// Failed drops the input permanently; it is never redelivered by this stage.
func Failed(err error) Result {
	return Result{kind: kindFailed, err: err}
}
