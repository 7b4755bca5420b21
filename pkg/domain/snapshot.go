package domain

import "time"

// Snapshot is the driver-visible view of a Doer after a step.
type Snapshot struct {
	Name      string    `json:"name"`
	State     State     `json:"state"`
	Desire    Control   `json:"desire"`
	Done      bool      `json:"done"`
	Tock      float64   `json:"tock"`
	Steps     int       `json:"steps"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Finished reports whether a driver should stop scheduling the Doer.
func (s Snapshot) Finished() bool {
	return s.State == StateAborted || (s.State == StateExited && s.Done)
}
