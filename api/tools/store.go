// api/tools/store.go
package tools

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

// AttendanceLog records a check-in or check-out.
type AttendanceLog struct {
	ID        uint `gorm:"primaryKey"`
	UserID    string
	Action    string
	Location  string
	Timestamp time.Time
	Status    string
}

// ExpenseLog records a submitted expense.
type ExpenseLog struct {
	ID        uint `gorm:"primaryKey"`
	UserID    string
	Action    string
	Amount    float64
	Category  string
	Timestamp time.Time
	Status    string
}

// LeaveRequest records a requested leave.
type LeaveRequest struct {
	ID        uint `gorm:"primaryKey"`
	UserID    string
	Action    string
	LeaveType string
	StartDate string
	EndDate   string
	Days      float64
	Timestamp time.Time
	Status    string
}

// PurchaseRequest records a requested purchase.
type PurchaseRequest struct {
	ID        uint `gorm:"primaryKey"`
	UserID    string
	Action    string
	Amount    float64
	Vendor    string
	Item      string
	Quantity  int
	Timestamp time.Time
	Status    string
}

// HistoryRecord is the merged, feature-agnostic view of an executed action.
type HistoryRecord struct {
	Feature   string                 `json:"feature"`
	UserID    string                 `json:"user_id"`
	Action    string                 `json:"action"`
	Timestamp time.Time              `json:"timestamp"`
	Status    string                 `json:"status"`
	Details   map[string]interface{} `json:"details"`
}

// Store persists executed actions per feature, mirroring the tables the
// original deployment kept.
type Store struct {
	db *gorm.DB
}

func NewStore(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gorm_logger.Default.LogMode(gorm_logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&AttendanceLog{}, &ExpenseLog{}, &LeaveRequest{}, &PurchaseRequest{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) RecordAttendance(ctx context.Context, log *AttendanceLog) error {
	return s.db.WithContext(ctx).Create(log).Error
}

func (s *Store) RecordExpense(ctx context.Context, log *ExpenseLog) error {
	return s.db.WithContext(ctx).Create(log).Error
}

func (s *Store) RecordLeave(ctx context.Context, req *LeaveRequest) error {
	return s.db.WithContext(ctx).Create(req).Error
}

func (s *Store) RecordPurchase(ctx context.Context, req *PurchaseRequest) error {
	return s.db.WithContext(ctx).Create(req).Error
}

// History returns the most recent executed actions across all feature tables,
// newest first. user and feature filters are optional ("" matches all).
func (s *Store) History(ctx context.Context, user, feature string, limit int) ([]HistoryRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	var (
		attendance []AttendanceLog
		expenses   []ExpenseLog
		leaves     []LeaveRequest
		purchases  []PurchaseRequest
	)

	scoped := func(q *gorm.DB) *gorm.DB {
		if user != "" {
			q = q.Where("user_id = ?", user)
		}
		return q.Order("timestamp desc").Limit(limit)
	}

	g, gctx := errgroup.WithContext(ctx)
	if feature == "" || feature == "ATTENDANCE" {
		g.Go(func() error {
			return scoped(s.db.WithContext(gctx)).Find(&attendance).Error
		})
	}
	if feature == "" || feature == "EXPENSE" {
		g.Go(func() error {
			return scoped(s.db.WithContext(gctx)).Find(&expenses).Error
		})
	}
	if feature == "" || feature == "LEAVE" {
		g.Go(func() error {
			return scoped(s.db.WithContext(gctx)).Find(&leaves).Error
		})
	}
	if feature == "" || feature == "PURCHASE" {
		g.Go(func() error {
			return scoped(s.db.WithContext(gctx)).Find(&purchases).Error
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]HistoryRecord, 0, len(attendance)+len(expenses)+len(leaves)+len(purchases))
	for _, a := range attendance {
		records = append(records, HistoryRecord{
			Feature: "ATTENDANCE", UserID: a.UserID, Action: a.Action,
			Timestamp: a.Timestamp, Status: a.Status,
			Details: map[string]interface{}{"location": a.Location},
		})
	}
	for _, e := range expenses {
		records = append(records, HistoryRecord{
			Feature: "EXPENSE", UserID: e.UserID, Action: e.Action,
			Timestamp: e.Timestamp, Status: e.Status,
			Details: map[string]interface{}{"amount": e.Amount, "category": e.Category},
		})
	}
	for _, l := range leaves {
		records = append(records, HistoryRecord{
			Feature: "LEAVE", UserID: l.UserID, Action: l.Action,
			Timestamp: l.Timestamp, Status: l.Status,
			Details: map[string]interface{}{
				"leave_type": l.LeaveType, "start_date": l.StartDate,
				"end_date": l.EndDate, "days": l.Days,
			},
		})
	}
	for _, p := range purchases {
		records = append(records, HistoryRecord{
			Feature: "PURCHASE", UserID: p.UserID, Action: p.Action,
			Timestamp: p.Timestamp, Status: p.Status,
			Details: map[string]interface{}{
				"amount": p.Amount, "vendor": p.Vendor,
				"item": p.Item, "quantity": p.Quantity,
			},
		})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
