// Package notify holds the notification sinks a reminder can be delivered to.
package notify

import "errors"

var ErrUnavailable = errors.New("notifications unavailable")
