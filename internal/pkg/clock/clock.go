package clock

import "time"

// Clock abstracts time so expiry logic can be exercised in tests without
// sleeping.
type Clock interface {
	Now() time.Time
}

// System is the production clock backed by time.Now.
type System struct{}

func New() System { return System{} }

func (System) Now() time.Time { return time.Now() }
