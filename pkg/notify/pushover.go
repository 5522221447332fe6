package notify

import (
	"time"

	"github.com/cenkalti/backoff"
	"github.com/golang/glog"
	"github.com/gregdel/pushover"
	"github.com/pkg/errors"
)

const maxSendRetries = 2

// Sender delivers a titled message.
type Sender interface {
	SendMessageWithTitle(message, title string) error
}

// PushoverFacade is a wrapper on a Pushover client and a recipient. It simplifies function signatures that depend on both.
type PushoverFacade struct {
	push      *pushover.Pushover
	recipient *pushover.Recipient
}

func NewPushoverFacade(token, user string) *PushoverFacade {
	return &PushoverFacade{
		push:      pushover.New(token),
		recipient: pushover.NewRecipient(user),
	}
}

func (p *PushoverFacade) SendMessageWithTitle(message, title string) error {
	onError := func(e error, d time.Duration) {
		glog.Errorf("Cannot send Pushover message. Retrying in (%s): %s", d.Round(time.Millisecond), e)
	}
	err := backoff.RetryNotify(func() error {
		_, err := p.push.SendMessage(pushover.NewMessageWithTitle(message, title), p.recipient)
		return err
	}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxSendRetries), onError)
	return errors.Wrap(err, "could not send Pushover message")
}
