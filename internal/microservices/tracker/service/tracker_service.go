package service

import (
	"context"
	"fmt"
	"time"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/domain"
	notify "cafe-ordering/internal/microservices/notificator/service"
	tenants "cafe-ordering/internal/microservices/tenants/repository"
	"cafe-ordering/internal/microservices/tracker/models"
	"cafe-ordering/internal/microservices/tracker/repository"
)

const (
	defaultTimelineLimit = 50
	maxTimelineLimit     = 500
)

type TrackerServiceInterface interface {
	GetOrderView(ctx context.Context, id string) (*models.OrderView, error)
	GetOrderTimeline(ctx context.Context, id string, limit, offset int) ([]domain.StatusChange, error)
	// DayReport summarises the tenant-local day and sends it to the admin chat.
	DayReport(ctx context.Context, tenantID, date string) (*domain.DayReport, bool, error)
}

type TrackerService struct {
	repo     repository.TrackerRepoInterface
	tenants  tenants.TenantRepositoryInterface
	notifier notify.DispatcherInterface
	lg       *logger.Logger
	now      func() time.Time
}

func NewTrackerService(
	repo repository.TrackerRepoInterface,
	tenantRepo tenants.TenantRepositoryInterface,
	notifier notify.DispatcherInterface,
	lg *logger.Logger,
) *TrackerService {
	return &TrackerService{repo: repo, tenants: tenantRepo, notifier: notifier, lg: lg, now: time.Now}
}

func (s *TrackerService) GetOrderView(ctx context.Context, id string) (*models.OrderView, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	v := &models.OrderView{Order: o}
	if !o.Status.IsFinal() && o.EstimatedPrepTime > 0 {
		start := o.CreatedAt
		if at, ok := o.StatusTimestamps[string(domain.StatusConfirmed)+"At"]; ok {
			start = at
		}
		eta := start.Add(time.Duration(o.EstimatedPrepTime) * time.Minute)
		v.EstimatedCompletion = &eta
	}
	return v, nil
}

func (s *TrackerService) GetOrderTimeline(ctx context.Context, id string, limit, offset int) ([]domain.StatusChange, error) {
	if limit <= 0 {
		limit = defaultTimelineLimit
	}
	if limit > maxTimelineLimit {
		limit = maxTimelineLimit
	}
	if offset < 0 {
		offset = 0
	}
	if _, err := s.repo.GetOrder(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetOrderTimeline(ctx, id, limit, offset)
}

func (s *TrackerService) DayReport(ctx context.Context, tenantID, date string) (*domain.DayReport, bool, error) {
	t, err := s.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, false, err
	}
	loc := t.Location()

	var day time.Time
	if date == "" {
		n := s.now().In(loc)
		day = time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
	} else {
		day, err = time.ParseInLocation("2006-01-02", date, loc)
		if err != nil {
			return nil, false, &domain.ValidationError{Message: fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD", date)}
		}
	}

	rows, err := s.repo.DayRows(ctx, tenantID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, false, err
	}

	rep := &domain.DayReport{
		TenantID: tenantID,
		Date:     day.Format("2006-01-02"),
		ByStatus: map[string]int{},
		BySource: map[string]int{},
		Currency: t.Currency,
	}
	for _, row := range rows {
		rep.Orders += row.Count
		rep.ByStatus[string(row.Status)] += row.Count
		rep.BySource[row.Source] += row.Count
		if row.Status == domain.StatusCancelled {
			rep.Cancelled += row.Count
			continue
		}
		rep.Revenue += row.Revenue
	}
	rep.Revenue = domain.RoundMoney(rep.Revenue)

	sent := s.notifier.Notify(ctx, tenantID, domain.RoleAdmin, notify.KindDayReport, notify.Payload{
		TenantName: t.BusinessName,
		Currency:   t.Currency,
		Report:     rep,
	})
	s.lg.Info("day_report_built", map[string]any{"tenant_id": tenantID, "date": rep.Date, "orders": rep.Orders, "sent": sent})
	return rep, sent, nil
}
