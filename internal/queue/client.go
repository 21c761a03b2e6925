package queue

import "context"

// Client enqueues interview jobs for asynchronous processing. A nil
// Client on the service means setup runs in-process instead.
type Client interface {
	Send(ctx context.Context, msg Message) error
}
