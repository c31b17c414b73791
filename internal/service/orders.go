package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/creamcroissant/ovenboard/internal/deal"
	"github.com/creamcroissant/ovenboard/internal/notification"
	"github.com/creamcroissant/ovenboard/internal/order"
	"github.com/creamcroissant/ovenboard/internal/repository"
)

// OrderFetcher is the storefront capability the order service consumes.
type OrderFetcher interface {
	ListOrders(ctx context.Context, limit int) ([]order.Order, error)
	GetOrder(ctx context.Context, id string) (*order.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status order.Status) error
}

// OrderService presents storefront orders enriched with the derived stage
// timeline and per-item deal classification.
type OrderService interface {
	List(ctx context.Context, limit int) ([]OrderView, error)
	Get(ctx context.Context, id string) (*OrderView, error)
	UpdateStatus(ctx context.Context, id string, to order.Status) error
	PendingElapsed(ctx context.Context, id string) (elapsed string, pending bool, err error)
	StatusHistory(ctx context.Context, id string, limit int) ([]*repository.OrderStatusLog, error)
}

// OrderView is an order prepared for a dashboard view.
type OrderView struct {
	ID             string      `json:"id"`
	Customer       string      `json:"customer_name,omitempty"`
	Status         order.Status `json:"status"`
	StatusLabel    string      `json:"status_label"`
	StatusError    string      `json:"status_error,omitempty"`
	Cancelled      bool        `json:"cancelled,omitempty"`
	Total          float64     `json:"total"`
	CreatedAt      string      `json:"created_at"`
	UpdatedAt      string      `json:"updated_at"`
	PendingElapsed string      `json:"pending_elapsed,omitempty"`
	Timeline       []StageView `json:"timeline,omitempty"`
	Items          []ItemView  `json:"items,omitempty"`
}

// StageView is one timeline row.
type StageView struct {
	Stage order.Status `json:"stage"`
	Label string       `json:"label"`
	Time  *time.Time   `json:"time,omitempty"`
	Exact bool         `json:"exact"`
}

// ItemView is a line item plus its classification.
type ItemView struct {
	ProductID string  `json:"product_id,omitempty"`
	Name      string  `json:"name,omitempty"`
	Price     string  `json:"price,omitempty"`
	Quantity  int     `json:"quantity"`
	IsDeal    bool    `json:"is_deal"`
}

type orderService struct {
	orders     OrderFetcher
	deals      DealService
	statusLogs repository.OrderStatusLogRepository
	ledger     *notification.Ledger
	estimator  *order.Estimator
	classifier *deal.Classifier
	logger     *slog.Logger
	now        func() time.Time
}

// NewOrderService constructs the order view service.
func NewOrderService(
	orders OrderFetcher,
	deals DealService,
	statusLogs repository.OrderStatusLogRepository,
	ledger *notification.Ledger,
	estimator *order.Estimator,
	classifier *deal.Classifier,
	logger *slog.Logger,
) OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &orderService{
		orders:     orders,
		deals:      deals,
		statusLogs: statusLogs,
		ledger:     ledger,
		estimator:  estimator,
		classifier: classifier,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *orderService) List(ctx context.Context, limit int) ([]OrderView, error) {
	raw, err := s.orders.ListOrders(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	// One snapshot per render; classification is re-evaluated every time
	// because the same item flips once deals (de)activate.
	activeDeals := s.deals.Snapshot(ctx)
	views := make([]OrderView, 0, len(raw))
	for _, o := range raw {
		views = append(views, s.buildView(o, activeDeals))
	}
	return views, nil
}

func (s *orderService) Get(ctx context.Context, id string) (*OrderView, error) {
	o, err := s.fetchOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	s.syncStatusLog(ctx, *o)
	view := s.buildView(*o, s.deals.Snapshot(ctx))
	return &view, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, id string, to order.Status) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", order.ErrUnknownStatus, to)
	}
	o, err := s.fetchOrder(ctx, id)
	if err != nil {
		return err
	}
	from, err := order.ParseStatus(string(o.Status))
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}
	if !order.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if err := s.orders.UpdateOrderStatus(ctx, id, to); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.appendStatusLog(ctx, id, string(from), string(to), false)
	if s.ledger != nil {
		s.ledger.Add(ctx, notification.OrderStatusChanged(id, to.Label()))
	}
	return nil
}

func (s *orderService) PendingElapsed(ctx context.Context, id string) (string, bool, error) {
	o, err := s.fetchOrder(ctx, id)
	if err != nil {
		return "", false, err
	}
	elapsed, ok := s.estimator.PendingElapsed(*o, s.now())
	return elapsed, ok, nil
}

func (s *orderService) StatusHistory(ctx context.Context, id string, limit int) ([]*repository.OrderStatusLog, error) {
	if s.statusLogs == nil {
		return nil, nil
	}
	return s.statusLogs.ListByOrder(ctx, id, limit)
}

func (s *orderService) fetchOrder(ctx context.Context, id string) (*order.Order, error) {
	o, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if o == nil {
		return nil, ErrNotFound
	}
	return o, nil
}

func (s *orderService) buildView(o order.Order, activeDeals []deal.Deal) OrderView {
	view := OrderView{
		ID:        o.ID,
		Customer:  o.Customer,
		Total:     o.TotalDue,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}

	status, err := order.ParseStatus(string(o.Status))
	if err != nil {
		// Unknown statuses are a defect upstream; surface them instead of
		// rendering the order as if it were mid-sequence.
		s.logger.Error("order carries unrecognized status", "order_id", o.ID, "status", string(o.Status))
		view.StatusError = err.Error()
		view.StatusLabel = string(o.Status)
		return view
	}
	o.Status = status
	view.Status = status
	view.StatusLabel = status.Label()
	view.Cancelled = status == order.StatusCancelled

	if elapsed, ok := s.estimator.PendingElapsed(o, s.now()); ok {
		view.PendingElapsed = elapsed
	}

	stages := order.Stages()
	view.Timeline = make([]StageView, 0, len(stages))
	for i, stage := range stages {
		est := s.estimator.EstimateStage(o, i)
		row := StageView{Stage: stage, Label: stage.Label(), Exact: est.Exact}
		if est.Known {
			t := est.Time
			row.Time = &t
		}
		view.Timeline = append(view.Timeline, row)
	}

	view.Items = make([]ItemView, 0, len(o.Items))
	for _, item := range o.Items {
		view.Items = append(view.Items, ItemView{
			ProductID: item.ProductID.String(),
			Name:      item.Name,
			Price:     item.Price.String(),
			Quantity:  item.Quantity,
			IsDeal:    s.classifier.IsDeal(item, activeDeals),
		})
	}
	return view
}

// syncStatusLog records the observed status when it differs from the last
// audit entry. A backward move is recorded and logged loudly; it means the
// upstream data broke the lifecycle invariant.
func (s *orderService) syncStatusLog(ctx context.Context, o order.Order) {
	if s.statusLogs == nil {
		return
	}
	status, err := order.ParseStatus(string(o.Status))
	if err != nil {
		return
	}
	last, err := s.statusLogs.LastByOrder(ctx, o.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("status audit lookup failed", "order_id", o.ID, "error", err)
		return
	}
	prev := ""
	if last != nil {
		if last.ToStatus == string(status) {
			return
		}
		prev = last.ToStatus
	}
	backward := false
	if prev != "" {
		if prevStatus, perr := order.ParseStatus(prev); perr == nil {
			prevOrd, prevOK := prevStatus.Ordinal()
			curOrd, curOK := status.Ordinal()
			if prevOK && curOK && curOrd < prevOrd {
				backward = true
				s.logger.Error("order status moved backward", "order_id", o.ID, "from", prev, "to", string(status))
			}
		}
	}
	s.appendStatusLog(ctx, o.ID, prev, string(status), backward)
}

func (s *orderService) appendStatusLog(ctx context.Context, orderID, from, to string, backward bool) {
	if s.statusLogs == nil {
		return
	}
	entry := &repository.OrderStatusLog{
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
		Backward:   backward,
		ChangedAt:  s.now().Unix(),
	}
	if err := s.statusLogs.Append(ctx, entry); err != nil {
		s.logger.Warn("status audit append failed", "order_id", orderID, "error", err)
	}
}
