// Package mailer contains the outbound mail transports. The service treats
// every Send error uniformly as a delivery failure, so transports only need
// to report whether the message was handed off.
package mailer

import "context"

// Sender delivers one message to a single recipient.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}
