package controller

// Kind names the remote request a phase belongs to.
type Kind string

const (
	KindFetch  Kind = "fetch"
	KindCreate Kind = "create"
	KindDelete Kind = "delete"
)

// RequestKey identifies a request. ID is only set for deletes.
type RequestKey struct {
	Kind Kind
	ID   int64
}

// Phase is the state of the latest request for a key.
type Phase int

const (
	Idle Phase = iota
	Requesting
	Applied
	Failed
)

func (p Phase) String() string {
	switch p {
	case Requesting:
		return "requesting"
	case Applied:
		return "applied"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Phase returns the state of the latest request for key. Keys never
// requested are Idle.
func (c *Controller) Phase(key RequestKey) Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phases[key]
}

// Pending returns the keys of requests still in flight.
func (c *Controller) Pending() []RequestKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	var keys []RequestKey
	for key, phase := range c.phases {
		if phase == Requesting {
			keys = append(keys, key)
		}
	}
	return keys
}

func (c *Controller) setPhase(key RequestKey, p Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phases[key] = p
}
