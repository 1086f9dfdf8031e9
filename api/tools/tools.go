// api/tools/tools.go
package tools

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dev-mohitbeniwal/arbiter/api/registry"
)

// RegisterBuiltins binds the workplace action tools to their (feature, action)
// keys. Attendance check-in and check-out are non-idempotent: punching the
// clock twice for the same request must not produce two rows.
func RegisterBuiltins(reg *registry.Registry, store *Store) error {
	bindings := []struct {
		feature, action, name string
		idempotent            bool
		fn                    registry.ToolFunc
	}{
		{"ATTENDANCE", "CHECK-IN", "attendance.check_in", false, checkInTool(store)},
		{"ATTENDANCE", "CHECK-OUT", "attendance.check_out", false, checkOutTool(store)},
		{"EXPENSE", "SUBMIT", "expense.submit", false, expenseTool(store)},
		{"LEAVE", "REQUEST", "leave.request", false, leaveTool(store)},
		{"PURCHASE", "REQUEST", "purchase.request", false, purchaseTool(store)},
	}
	for _, b := range bindings {
		err := reg.Register(b.feature, b.action, registry.Tool{
			Name:       b.name,
			Idempotent: b.idempotent,
			Fn:         b.fn,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func checkInTool(store *Store) registry.ToolFunc {
	return func(ctx context.Context, callerID string, params map[string]interface{}) (map[string]interface{}, error) {
		return recordAttendance(ctx, store, callerID, "CHECK-IN", params)
	}
}

func checkOutTool(store *Store) registry.ToolFunc {
	return func(ctx context.Context, callerID string, params map[string]interface{}) (map[string]interface{}, error) {
		return recordAttendance(ctx, store, callerID, "CHECK-OUT", params)
	}
}

func recordAttendance(ctx context.Context, store *Store, callerID, action string, params map[string]interface{}) (map[string]interface{}, error) {
	log := &AttendanceLog{
		UserID:    callerID,
		Action:    action,
		Location:  asString(params, "LOCATION"),
		Timestamp: time.Now().UTC(),
		Status:    "EXECUTED",
	}
	if err := store.RecordAttendance(ctx, log); err != nil {
		return nil, fmt.Errorf("recording attendance: %w", err)
	}
	return map[string]interface{}{
		"log_id":   log.ID,
		"action":   action,
		"location": log.Location,
	}, nil
}

func expenseTool(store *Store) registry.ToolFunc {
	return func(ctx context.Context, callerID string, params map[string]interface{}) (map[string]interface{}, error) {
		amount, err := asNumber(params, "AMOUNT")
		if err != nil {
			return nil, err
		}
		log := &ExpenseLog{
			UserID:    callerID,
			Action:    "SUBMIT",
			Amount:    amount,
			Category:  asString(params, "CATEGORY"),
			Timestamp: time.Now().UTC(),
			Status:    "EXECUTED",
		}
		if err := store.RecordExpense(ctx, log); err != nil {
			return nil, fmt.Errorf("recording expense: %w", err)
		}
		return map[string]interface{}{
			"log_id":   log.ID,
			"amount":   amount,
			"category": log.Category,
		}, nil
	}
}

func leaveTool(store *Store) registry.ToolFunc {
	return func(ctx context.Context, callerID string, params map[string]interface{}) (map[string]interface{}, error) {
		days, err := asNumber(params, "DAYS")
		if err != nil {
			days = 0
		}
		req := &LeaveRequest{
			UserID:    callerID,
			Action:    "REQUEST",
			LeaveType: asString(params, "LEAVE_TYPE"),
			StartDate: asString(params, "START_DATE"),
			EndDate:   asString(params, "END_DATE"),
			Days:      days,
			Timestamp: time.Now().UTC(),
			Status:    "EXECUTED",
		}
		if err := store.RecordLeave(ctx, req); err != nil {
			return nil, fmt.Errorf("recording leave request: %w", err)
		}
		return map[string]interface{}{
			"request_id": req.ID,
			"leave_type": req.LeaveType,
			"start_date": req.StartDate,
			"end_date":   req.EndDate,
		}, nil
	}
}

func purchaseTool(store *Store) registry.ToolFunc {
	return func(ctx context.Context, callerID string, params map[string]interface{}) (map[string]interface{}, error) {
		amount, err := asNumber(params, "AMOUNT")
		if err != nil {
			return nil, err
		}
		quantity := 1
		if q, err := asNumber(params, "QUANTITY"); err == nil && q > 0 {
			quantity = int(q)
		}
		req := &PurchaseRequest{
			UserID:    callerID,
			Action:    "REQUEST",
			Amount:    amount,
			Vendor:    asString(params, "VENDOR"),
			Item:      asString(params, "ITEM"),
			Quantity:  quantity,
			Timestamp: time.Now().UTC(),
			Status:    "EXECUTED",
		}
		if err := store.RecordPurchase(ctx, req); err != nil {
			return nil, fmt.Errorf("recording purchase request: %w", err)
		}
		return map[string]interface{}{
			"request_id": req.ID,
			"amount":     amount,
			"vendor":     req.Vendor,
		}, nil
	}
}

func asString(params map[string]interface{}, key string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	return ""
}

func asNumber(params map[string]interface{}, key string) (float64, error) {
	v, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("missing parameter %s", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("parameter %s is not numeric: %q", key, n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("parameter %s is not numeric: %T", key, v)
	}
}
