package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pburrows/lepidoptera/pkg/types"
)

var machineColumns = []string{
	"id",
	"os_machine_id",
	"user_id",
	"name",
	"registered_at",
	"last_seen_at",
	"last_ip_address",
	"is_active",
	"is_duplicate",
}

func scanMachine(row RowScanner) (*types.Machine, error) {
	var (
		m            types.Machine
		registeredAt string
		lastSeenAt   string
		lastIP       sql.NullString
		isActive     int
		isDuplicate  int
	)
	err := row.Scan(&m.ID, &m.OSMachineID, &m.UserID, &m.Name, &registeredAt,
		&lastSeenAt, &lastIP, &isActive, &isDuplicate)
	if err != nil {
		return nil, err
	}
	if m.RegisteredAt, err = parseTime(registeredAt); err != nil {
		return nil, err
	}
	if m.LastSeenAt, err = parseTime(lastSeenAt); err != nil {
		return nil, err
	}
	m.LastIPAddress = stringOrEmpty(lastIP)
	m.IsActive = isActive != 0
	m.IsDuplicate = isDuplicate != 0
	return &m, nil
}

func machineInsertValues(m *types.Machine) []Value {
	return []Value{
		Text(m.ID),
		Text(m.OSMachineID),
		Text(m.UserID),
		Text(m.Name),
		Time(m.RegisteredAt),
		Time(m.LastSeenAt),
		NullableText(m.LastIPAddress),
		Bool(m.IsActive),
		Bool(m.IsDuplicate),
	}
}

var machineCodec = Codec[types.Machine]{
	Table:        "local_machines",
	Columns:      machineColumns,
	Scan:         scanMachine,
	ID:           func(m *types.Machine) string { return m.ID },
	InsertValues: machineInsertValues,
	UpdateValues: func(m *types.Machine) []Value { return machineInsertValues(m)[1:] },
}

// MachinesRepo stores local machine identities.
type MachinesRepo struct {
	*Repository[types.Machine]
}

// NewMachinesRepo builds the machines repository over pool.
func NewMachinesRepo(pool *Pool) *MachinesRepo {
	return &MachinesRepo{Repository: NewRepository(pool, machineCodec)}
}

// FindByOSUser returns the machine registered for (osMachineID, userID), or
// types.ErrNotFound when this machine has not registered yet.
func (r *MachinesRepo) FindByOSUser(ctx context.Context, q Querier, osMachineID, userID string) (*types.Machine, error) {
	q, release, err := r.querier(ctx, q)
	if err != nil {
		return nil, err
	}
	defer release()

	query := fmt.Sprintf(
		"SELECT %s FROM local_machines WHERE os_machine_id = ?1 AND user_id = ?2",
		strings.Join(machineColumns, ", "))
	m, err := scanMachine(q.QueryRowContext(ctx, query, osMachineID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying machine %s/%s: %w", osMachineID, userID, err)
	}
	return m, nil
}

// Ensure returns the machine for (osMachineID, userID), registering it on
// first use and bumping last_seen_at on every call.
func (r *MachinesRepo) Ensure(ctx context.Context, q Querier, osMachineID, userID, name string) (*types.Machine, error) {
	m, err := r.FindByOSUser(ctx, q, osMachineID, userID)
	switch {
	case err == nil:
		m.LastSeenAt = nowUTC()
		if err := r.Update(ctx, q, m); err != nil {
			return nil, err
		}
		return m, nil
	case errors.Is(err, types.ErrNotFound):
		now := nowUTC()
		m = &types.Machine{
			ID:           uuid.Must(uuid.NewV7()).String(),
			OSMachineID:  osMachineID,
			UserID:       userID,
			Name:         name,
			RegisteredAt: now,
			LastSeenAt:   now,
			IsActive:     true,
		}
		return r.Create(ctx, q, m)
	default:
		return nil, err
	}
}
