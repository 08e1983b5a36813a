package home

// Actor identifies who requested a write.
type Actor struct {
	// Hostname is the machine the request came from.
	Hostname string
	// Username is the OS user that sent the request.
	Username string
}

// String returns username@hostname, or "unknown" for a nil actor.
func (a *Actor) String() string {
	if a == nil {
		return "unknown"
	}

	return a.Username + "@" + a.Hostname
}
