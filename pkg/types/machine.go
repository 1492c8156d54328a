package types

import "time"

// Machine identifies one client machine that writes to a copy of the store.
// Rows are registered on first use, keyed by (os_machine_id, user_id), and
// supply the stable machine ID fed to the number range allocator. The actual
// sync exchange between machines lives outside this repository.
type Machine struct {
	ID             string    `json:"id"`
	OSMachineID    string    `json:"os_machine_id"`
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	RegisteredAt   time.Time `json:"registered_at"`
	LastSeenAt     time.Time `json:"last_seen_at"`
	LastIPAddress  string    `json:"last_ip_address,omitempty"`
	IsActive       bool      `json:"is_active"`
	IsDuplicate    bool      `json:"is_duplicate"`
}
