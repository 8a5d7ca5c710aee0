package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/waitline/waitline/internal/staff"
)

// StaffRepository implements staff.Repository
type StaffRepository struct {
	db *DB
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db *DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// Create inserts a staff member
func (r *StaffRepository) Create(ctx context.Context, m *staff.Member) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO staff (id, tenant_id, email, full_name, role, password_hash, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, m.ID, m.TenantID, m.Email, m.FullName, m.Role, m.PasswordHash, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert staff member: %w", err)
	}
	return nil
}

// GetByID retrieves a staff member scoped to a tenant
func (r *StaffRepository) GetByID(ctx context.Context, tenantID, id string) (*staff.Member, error) {
	return r.get(ctx, `WHERE id = $1 AND tenant_id = $2`, id, tenantID)
}

// GetByEmail retrieves a staff member by email scoped to a tenant
func (r *StaffRepository) GetByEmail(ctx context.Context, tenantID, email string) (*staff.Member, error) {
	return r.get(ctx, `WHERE email = $1 AND tenant_id = $2`, email, tenantID)
}

func (r *StaffRepository) get(ctx context.Context, where string, args ...any) (*staff.Member, error) {
	var m staff.Member
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, email, full_name, role, password_hash, created_at, updated_at
		FROM staff `+where,
		args...,
	).Scan(&m.ID, &m.TenantID, &m.Email, &m.FullName, &m.Role, &m.PasswordHash, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, staff.ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}
	return &m, nil
}
