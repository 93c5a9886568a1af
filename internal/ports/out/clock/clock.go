package clock

import "time"

// Clock is the application's source of "now": booking timestamps, member
// creation times and session expiry all read from it.
type Clock interface {
	Now() time.Time
}
