package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"voicechallan/internal/dto"
	"voicechallan/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// sortColumns whitelists the columns GET /api/list-challans may order by.
var sortColumns = map[string]string{
	"created_at":    "created_at",
	"customer_name": "customer_name",
	"challan_no":    "challan_no",
	"total_items":   "total_items",
	"total_price":   "total_price",
}

type ChallanRepository interface {
	Create(ctx context.Context, c *model.Challan) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Challan, error)
	FindByChallanNo(ctx context.Context, challanNo string) (*model.Challan, error)
	// List never loads pdf_data. A non-positive filter.Limit returns every match.
	List(ctx context.Context, filter dto.ChallanFilter) ([]model.Challan, int64, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	UpdatePDF(ctx context.Context, id uuid.UUID, pdf []byte) error
}

type challanRepo struct{ db *gorm.DB }

func NewChallanRepository(db *gorm.DB) ChallanRepository { return &challanRepo{db: db} }

func (r *challanRepo) Create(ctx context.Context, c *model.Challan) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *challanRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Challan, error) {
	var c model.Challan
	err := r.db.WithContext(ctx).Where("is_deleted = false").First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *challanRepo) FindByChallanNo(ctx context.Context, challanNo string) (*model.Challan, error) {
	var c model.Challan
	err := r.db.WithContext(ctx).Omit("pdf_data").Where("challan_no = ?", challanNo).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *challanRepo) List(ctx context.Context, filter dto.ChallanFilter) ([]model.Challan, int64, error) {
	var challans []model.Challan
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Challan{}).Where("is_deleted = false")

	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + escapeLike(s) + "%"
		q = q.Where("(customer_name ILIKE ? OR challan_no ILIKE ?)", pattern, pattern)
	}
	if filter.StartDate != "" {
		start, err := time.Parse("2006-01-02", filter.StartDate)
		if err != nil {
			return nil, 0, fmt.Errorf("start_date: %w", err)
		}
		q = q.Where("created_at >= ?", start)
	}
	if filter.EndDate != "" {
		end, err := time.Parse("2006-01-02", filter.EndDate)
		if err != nil {
			return nil, 0, fmt.Errorf("end_date: %w", err)
		}
		// inclusive of the whole end day
		q = q.Where("created_at < ?", end.AddDate(0, 0, 1))
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	col, ok := sortColumns[filter.Sort]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(filter.Order, "asc") {
		dir = "ASC"
	}

	q = q.Omit("pdf_data").Order(col + " " + dir).Order("id")
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		q = q.Offset((page - 1) * filter.Limit).Limit(filter.Limit)
	}
	err := q.Find(&challans).Error
	return challans, total, err
}

func (r *challanRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Challan{}).
		Where("id = ? AND is_deleted = false", id).
		Update("is_deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *challanRepo) UpdatePDF(ctx context.Context, id uuid.UUID, pdf []byte) error {
	return r.db.WithContext(ctx).Model(&model.Challan{}).Where("id = ?", id).Update("pdf_data", pdf).Error
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
