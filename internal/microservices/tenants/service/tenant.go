package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/domain"
	"cafe-ordering/internal/microservices/tenants/repository"
)

type DepartmentInput struct {
	Name        string      `json:"name"`
	Role        domain.Role `json:"role"`
	ChatID      int64       `json:"chatId"`
	AdminChatID int64       `json:"adminChatId"`
}

type WaiterInput struct {
	WaiterName  string `json:"waiterName"`
	StartTable  int    `json:"startTable"`
	EndTable    int    `json:"endTable"`
	ChatID      int64  `json:"chatId"`
	ShiftStart  string `json:"shiftStart"`
	ShiftEnd    string `json:"shiftEnd"`
	WorkingDays []int  `json:"workingDays"`
	IsActive    *bool  `json:"isActive"`
}

type TenantServiceInterface interface {
	ListDepartments(ctx context.Context, tenantID string) ([]domain.Department, error)
	CreateDepartment(ctx context.Context, tenantID string, in DepartmentInput) (*domain.Department, error)
	UpdateDepartment(ctx context.Context, tenantID, id string, in DepartmentInput) (*domain.Department, error)
	DeleteDepartment(ctx context.Context, tenantID, id string) error

	ListWaiters(ctx context.Context, tenantID string) ([]domain.WaiterAssignment, error)
	CreateWaiter(ctx context.Context, tenantID string, in WaiterInput) (*domain.WaiterAssignment, error)
	UpdateWaiter(ctx context.Context, tenantID, id string, in WaiterInput) (*domain.WaiterAssignment, error)
	DeleteWaiter(ctx context.Context, tenantID, id string) error
}

type TenantService struct {
	tenants     repository.TenantRepositoryInterface
	departments repository.DepartmentRepositoryInterface
	waiters     repository.WaiterRepositoryInterface
	lg          *logger.Logger
}

func NewTenantService(
	tenants repository.TenantRepositoryInterface,
	departments repository.DepartmentRepositoryInterface,
	waiters repository.WaiterRepositoryInterface,
	lg *logger.Logger,
) TenantServiceInterface {
	return &TenantService{tenants: tenants, departments: departments, waiters: waiters, lg: lg}
}

func (s *TenantService) ListDepartments(ctx context.Context, tenantID string) ([]domain.Department, error) {
	if _, err := s.tenants.Get(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.departments.ListByTenant(ctx, tenantID)
}

func (s *TenantService) CreateDepartment(ctx context.Context, tenantID string, in DepartmentInput) (*domain.Department, error) {
	if err := validateDepartment(&in); err != nil {
		return nil, err
	}
	if _, err := s.tenants.Get(ctx, tenantID); err != nil {
		return nil, err
	}
	if err := s.ensureRoleFree(ctx, tenantID, in.Role, ""); err != nil {
		return nil, err
	}

	d := &domain.Department{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		Name:        strings.TrimSpace(in.Name),
		Role:        in.Role,
		ChatID:      in.ChatID,
		AdminChatID: in.AdminChatID,
	}
	if err := s.departments.Create(ctx, d); err != nil {
		return nil, err
	}
	s.lg.Info("department_created", map[string]any{"tenant_id": tenantID, "department_id": d.ID, "role": d.Role})
	return d, nil
}

func (s *TenantService) UpdateDepartment(ctx context.Context, tenantID, id string, in DepartmentInput) (*domain.Department, error) {
	if err := validateDepartment(&in); err != nil {
		return nil, err
	}
	d, err := s.departments.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if in.Role != d.Role {
		if err := s.ensureRoleFree(ctx, tenantID, in.Role, id); err != nil {
			return nil, err
		}
	}
	d.Name = strings.TrimSpace(in.Name)
	d.Role = in.Role
	d.ChatID = in.ChatID
	d.AdminChatID = in.AdminChatID
	if err := s.departments.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *TenantService) DeleteDepartment(ctx context.Context, tenantID, id string) error {
	return s.departments.Delete(ctx, tenantID, id)
}

// one department per role; the unique index backs this up
func (s *TenantService) ensureRoleFree(ctx context.Context, tenantID string, role domain.Role, exceptID string) error {
	existing, err := s.departments.ListByTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	for _, d := range existing {
		if d.Role == role && d.ID != exceptID {
			return fmt.Errorf("department with role %s already exists: %w", role, domain.ErrConflict)
		}
	}
	return nil
}

func validateDepartment(in *DepartmentInput) error {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if in.Role == "" {
		missing = append(missing, "role")
	}
	if in.ChatID == 0 {
		missing = append(missing, "chatId")
	}
	if len(missing) > 0 {
		return domain.Missing(missing...)
	}
	if !in.Role.Valid() {
		return &domain.ValidationError{Message: fmt.Sprintf("invalid role %q: expected kitchen, cashier or admin", in.Role)}
	}
	// admin sub-chat только у кассы
	if in.Role != domain.RoleCashier {
		in.AdminChatID = 0
	}
	return nil
}

func (s *TenantService) ListWaiters(ctx context.Context, tenantID string) ([]domain.WaiterAssignment, error) {
	if _, err := s.tenants.Get(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.waiters.ListByTenant(ctx, tenantID, false)
}

func (s *TenantService) CreateWaiter(ctx context.Context, tenantID string, in WaiterInput) (*domain.WaiterAssignment, error) {
	t, err := s.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := validateWaiter(in, t.TableCount); err != nil {
		return nil, err
	}
	w := &domain.WaiterAssignment{ID: uuid.NewString(), TenantID: tenantID, IsActive: true}
	applyWaiter(w, in)
	if err := s.waiters.Create(ctx, w); err != nil {
		return nil, err
	}
	s.lg.Info("waiter_assignment_created", map[string]any{
		"tenant_id": tenantID, "assignment_id": w.ID, "start_table": w.StartTable, "end_table": w.EndTable,
	})
	return w, nil
}

func (s *TenantService) UpdateWaiter(ctx context.Context, tenantID, id string, in WaiterInput) (*domain.WaiterAssignment, error) {
	t, err := s.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := validateWaiter(in, t.TableCount); err != nil {
		return nil, err
	}
	w, err := s.waiters.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	applyWaiter(w, in)
	if err := s.waiters.Update(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *TenantService) DeleteWaiter(ctx context.Context, tenantID, id string) error {
	return s.waiters.Delete(ctx, tenantID, id)
}

func applyWaiter(w *domain.WaiterAssignment, in WaiterInput) {
	w.WaiterName = strings.TrimSpace(in.WaiterName)
	w.StartTable = in.StartTable
	w.EndTable = in.EndTable
	w.ChatID = in.ChatID
	w.ShiftStart = in.ShiftStart
	w.ShiftEnd = in.ShiftEnd
	w.WorkingDays = in.WorkingDays
	if in.IsActive != nil {
		w.IsActive = *in.IsActive
	}
}

func validateWaiter(in WaiterInput, tableCount int) error {
	var missing []string
	if strings.TrimSpace(in.WaiterName) == "" {
		missing = append(missing, "waiterName")
	}
	if in.StartTable == 0 {
		missing = append(missing, "startTable")
	}
	if in.EndTable == 0 {
		missing = append(missing, "endTable")
	}
	if len(missing) > 0 {
		return domain.Missing(missing...)
	}
	if in.StartTable < 1 || in.StartTable > in.EndTable {
		return &domain.ValidationError{Message: "startTable must be between 1 and endTable"}
	}
	if tableCount > 0 && in.EndTable > tableCount {
		return &domain.ValidationError{Message: fmt.Sprintf("endTable exceeds table count %d", tableCount)}
	}
	for _, v := range []string{in.ShiftStart, in.ShiftEnd} {
		if v == "" {
			continue
		}
		if _, err := time.Parse("15:04", v); err != nil {
			return &domain.ValidationError{Message: fmt.Sprintf("invalid shift time %q, expected HH:MM", v)}
		}
	}
	for _, d := range in.WorkingDays {
		if d < 0 || d > 6 {
			return &domain.ValidationError{Message: fmt.Sprintf("invalid working day %d, expected 0-6", d)}
		}
	}
	return nil
}
