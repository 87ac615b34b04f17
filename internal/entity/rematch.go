package entity

const rematchCapacity = 2

// Rematch records which participants of a finished room have agreed to play
// again. It exists only while at least one acceptance is outstanding.
type Rematch struct {
	accepted []SessionID
}

func NewRematch() *Rematch {
	return &Rematch{
		accepted: make([]SessionID, 0, rematchCapacity),
	}
}

// Accept - records an acceptance; duplicates are ignored. Returns true if the
// caller was added.
func (that *Rematch) Accept(id SessionID) bool {
	if that.Contains(id) {
		return false
	}

	if len(that.accepted) >= rematchCapacity {
		return false
	}

	that.accepted = append(that.accepted, id)

	return true
}

// Withdraw - removes an acceptance; no-op if absent.
func (that *Rematch) Withdraw(id SessionID) {
	for i, accepted := range that.accepted {
		if accepted == id {
			that.accepted = append(that.accepted[:i], that.accepted[i+1:]...)
			return
		}
	}
}

func (that *Rematch) Contains(id SessionID) bool {
	for _, accepted := range that.accepted {
		if accepted == id {
			return true
		}
	}
	return false
}

func (that *Rematch) Size() int {
	return len(that.accepted)
}

// IsComplete - true once both participants have accepted.
func (that *Rematch) IsComplete() bool {
	return len(that.accepted) == rematchCapacity
}
