package contract

import (
	"context"
	"reflect"

	"chat-hall/protocol"
)

// Worker doesn't protect itself.
// Can be silly, focused.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker lifecycle
// events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Endpoint is the outbound delivery side of one connected session. It is
// owned exclusively by that session's writer; Enqueue must never block or
// perform I/O, so it is safe to call while registry locks are held.
type Endpoint interface {
	// Enqueue appends a frame to the session's ordered outbound queue.
	// Frames enqueued sequentially are delivered in that order.
	Enqueue(f protocol.Frame)

	// Shutdown asks the endpoint to drain what was already enqueued and
	// then release the underlying transport. Safe to call more than once.
	Shutdown()
}
