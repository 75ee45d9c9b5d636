package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukyu/ledger/internal/models"
	"gorm.io/gorm"
)

// Repository defines the contract for LeaveRequest storage.
type Repository interface {
	Get(ctx context.Context, id string) (*models.LeaveRequest, error)
	List(ctx context.Context, employeeNum string, year int) ([]models.LeaveRequest, error)
	Create(ctx context.Context, req *models.LeaveRequest) error
	Update(ctx context.Context, req *models.LeaveRequest) error
	WithTx(tx *gorm.DB) Repository
}

// GORMRepository implements Repository against the single-schema Postgres
// database via GORM.
type GORMRepository struct {
	db *gorm.DB
}

func NewGORMRepository(db *gorm.DB) *GORMRepository {
	return &GORMRepository{db: db}
}

func (r *GORMRepository) WithTx(tx *gorm.DB) Repository {
	return &GORMRepository{db: tx}
}

func (r *GORMRepository) Get(ctx context.Context, id string) (*models.LeaveRequest, error) {
	var req models.LeaveRequest
	err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get leave request: %w", err)
	}
	return &req, nil
}

func (r *GORMRepository) List(ctx context.Context, employeeNum string, year int) ([]models.LeaveRequest, error) {
	q := r.db.WithContext(ctx).Order("requested_at DESC")
	if employeeNum != "" {
		q = q.Where("employee_num = ?", employeeNum)
	}
	if year != 0 {
		q = q.Where("year = ?", year)
	}
	var rows []models.LeaveRequest
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	return rows, nil
}

func (r *GORMRepository) Create(ctx context.Context, req *models.LeaveRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("create leave request: %w", err)
	}
	return nil
}

func (r *GORMRepository) Update(ctx context.Context, req *models.LeaveRequest) error {
	if err := r.db.WithContext(ctx).Save(req).Error; err != nil {
		return fmt.Errorf("update leave request: %w", err)
	}
	return nil
}
