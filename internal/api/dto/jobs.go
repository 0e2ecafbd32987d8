package dto

import "time"

// TransitionRunResponseItem is one animal's outcome in a transition
// run.
type TransitionRunResponseItem struct {
	AnimalID string `json:"animal_id"`
	Name     string `json:"name"`
	Action   string `json:"action"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// TransitionRunResponse is the aggregate outcome of one daily
// transition run. A partial run with failures is still a normal
// response, not an error.
type TransitionRunResponse struct {
	// RunID identifies one run across the response and its log lines.
	RunID        string                       `json:"run_id"`
	RunDate      time.Time                    `json:"run_date"`
	Items        []*TransitionRunResponseItem `json:"items"`
	TotalSuccess int                          `json:"total_success"`
	TotalFailed  int                          `json:"total_failed"`
	Unchanged    int                          `json:"unchanged"`
}

// ReminderRunResponse reports one departure reminder check.
type ReminderRunResponse struct {
	RunID string `json:"run_id"`
	// Pending names every non-boarding animal still on the premises.
	Pending []string `json:"pending"`
	// ExpiringVaccinations names animals with a vaccination expiring
	// within the warning window.
	ExpiringVaccinations []string `json:"expiring_vaccinations,omitempty"`
	// Notified is false when there was nothing to remind about.
	Notified bool `json:"notified"`
}

// BackupRunResponse reports one backup trigger.
type BackupRunResponse struct {
	RunID    string    `json:"run_id"`
	Location string    `json:"location"`
	Animals  int       `json:"animals"`
	TakenAt  time.Time `json:"taken_at"`
}
