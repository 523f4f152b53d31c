package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"farmdash/internal/farm"
)

// Mode decides when a status change reaches the mirror.
type Mode string

const (
	// Optimistic sets the field locally before the gateway call and keeps it
	// even if the call fails.
	Optimistic Mode = "optimistic"
	// Confirmed sets the field only after the gateway call succeeds.
	Confirmed Mode = "confirmed"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", Optimistic:
		return Optimistic, nil
	case Confirmed:
		return Confirmed, nil
	}
	return "", fmt.Errorf("unknown sync mode %q (want optimistic or confirmed)", s)
}

// Sample order quantities are drawn from [SampleQtyMin, SampleQtyMax] kg.
const (
	SampleQtyMin = 5
	SampleQtyMax = 50
)

var sampleBuyers = []string{"Fresh Market", "Green Grocer", "City Bakery", "Harvest Co-op", "Corner Deli", "Hilltop Hotel"}

type Options struct {
	CropStatusMode  Mode
	OrderStatusMode Mode
	// ClearConcurrency bounds the in-flight deletes of ClearAll.
	ClearConcurrency int
	Logger           *slog.Logger
	Rand             *rand.Rand
}

// Service turns user intent into gateway calls and mirror updates. Create,
// edit and delete only touch the Store after the gateway confirms; status
// changes follow their configured Mode.
type Service struct {
	store  *Store
	client farm.Client
	opts   Options
	log    *slog.Logger

	randMu sync.Mutex
	rand   *rand.Rand
}

func NewService(store *Store, client farm.Client, opts Options) *Service {
	if opts.CropStatusMode == "" {
		opts.CropStatusMode = Optimistic
	}
	if opts.OrderStatusMode == "" {
		opts.OrderStatusMode = Optimistic
	}
	if opts.ClearConcurrency <= 0 {
		opts.ClearConcurrency = 4
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := opts.Rand
	if r == nil {
		seed := uint64(time.Now().UnixNano())
		r = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &Service{store: store, client: client, opts: opts, log: logger, rand: r}
}

func (s *Service) Store() *Store { return s.store }

func (s *Service) intN(n int) int {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.rand.IntN(n)
}

// Load replaces the mirror with the server's collections. Either list
// failing is an initialization failure and leaves the mirror untouched.
func (s *Service) Load(ctx context.Context) error {
	crops, orders, err := s.fetch(ctx)
	if err != nil {
		s.log.Error("initial load failed", "err", err)
		return fmt.Errorf("%w: %w", ErrInit, err)
	}
	s.store.ReplaceCrops(crops)
	s.store.ReplaceOrders(orders)
	return nil
}

func (s *Service) fetch(ctx context.Context) ([]farm.Crop, []farm.Order, error) {
	crops, err := s.client.ListCrops(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list crops: %w", err)
	}
	orders, err := s.client.ListOrders(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list orders: %w", err)
	}
	return crops, orders, nil
}

func (s *Service) CreateCrop(ctx context.Context, in CropInput) (farm.Crop, error) {
	in, err := ValidateCrop(in)
	if err != nil {
		return farm.Crop{}, err
	}
	created, err := s.client.CreateCrop(ctx, farm.NewCrop{Name: in.Name, Quantity: in.Quantity, Price: in.Price})
	if err != nil {
		s.log.Warn("create crop failed", "name", in.Name, "err", err)
		return farm.Crop{}, err
	}
	s.store.PrependCrop(created)
	s.log.Info("crop created", "id", created.ID, "name", created.Name)
	return created, nil
}

// EditCrop prompts for name, quantity and price, defaulting to the current
// values. A cancelled prompt or any invalid value aborts the whole edit.
func (s *Service) EditCrop(ctx context.Context, id farm.ID, p Prompter) error {
	cur, ok := s.store.Crop(id)
	if !ok {
		return fmt.Errorf("crop %s: %w", id, ErrNotFound)
	}
	if p == nil {
		p = declineAll{}
	}

	name, ok := p.Prompt(PromptName, cur.Name)
	if !ok {
		return ErrCancelled
	}
	qty, ok := p.Prompt(PromptQuantity, formatAmount(cur.Quantity))
	if !ok {
		return ErrCancelled
	}
	price, ok := p.Prompt(PromptPrice, formatAmount(cur.Price))
	if !ok {
		return ErrCancelled
	}

	in, err := ParseCropInput(name, qty, price)
	if err != nil {
		return err
	}

	patch := farm.CropPatch{Name: &in.Name, Quantity: &in.Quantity, Price: &in.Price}
	if _, err := s.client.UpdateCrop(ctx, id, patch); err != nil {
		s.log.Warn("edit crop failed", "id", id, "err", err)
		return err
	}
	s.store.UpdateCrop(id, patch)
	return nil
}

func (s *Service) DeleteCrop(ctx context.Context, id farm.ID, p Prompter) error {
	cur, ok := s.store.Crop(id)
	if !ok {
		return fmt.Errorf("crop %s: %w", id, ErrNotFound)
	}
	if p == nil || !p.Confirm(fmt.Sprintf("Delete crop %q?", cur.Name)) {
		return ErrCancelled
	}
	if err := s.client.DeleteCrop(ctx, id); err != nil {
		s.log.Warn("delete crop failed", "id", id, "err", err)
		return err
	}
	s.store.RemoveCrop(id)
	return nil
}

func (s *Service) DeleteOrder(ctx context.Context, id farm.ID, p Prompter) error {
	cur, ok := s.store.Order(id)
	if !ok {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if p == nil || !p.Confirm(fmt.Sprintf("Delete order %s from %s?", cur.ID, cur.Buyer)) {
		return ErrCancelled
	}
	if err := s.client.DeleteOrder(ctx, id); err != nil {
		s.log.Warn("delete order failed", "id", id, "err", err)
		return err
	}
	s.store.RemoveOrder(id)
	return nil
}

// SetCropStatus changes one crop's status. In Optimistic mode a failed call
// leaves the local status changed; the failure is logged and returned.
func (s *Service) SetCropStatus(ctx context.Context, id farm.ID, status farm.CropStatus) error {
	if !status.Valid() {
		return &ValidationError{Fields: map[string]string{"status": "is invalid"}}
	}
	if _, ok := s.store.Crop(id); !ok {
		return fmt.Errorf("crop %s: %w", id, ErrNotFound)
	}

	patch := farm.CropPatch{Status: &status}
	mode := s.opts.CropStatusMode
	if mode == Optimistic {
		s.store.UpdateCrop(id, patch)
	}
	if _, err := s.client.UpdateCrop(ctx, id, patch); err != nil {
		s.log.Warn("crop status update failed", "id", id, "status", status, "mode", mode, "err", err)
		return err
	}
	if mode == Confirmed {
		s.store.UpdateCrop(id, patch)
	}
	return nil
}

func (s *Service) SetOrderStatus(ctx context.Context, id farm.ID, status farm.OrderStatus) error {
	if !status.Valid() {
		return &ValidationError{Fields: map[string]string{"status": "is invalid"}}
	}
	if _, ok := s.store.Order(id); !ok {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}

	patch := farm.OrderPatch{Status: &status}
	mode := s.opts.OrderStatusMode
	if mode == Optimistic {
		s.store.UpdateOrder(id, patch)
	}
	if _, err := s.client.UpdateOrder(ctx, id, patch); err != nil {
		s.log.Warn("order status update failed", "id", id, "status", status, "mode", mode, "err", err)
		return err
	}
	if mode == Confirmed {
		s.store.UpdateOrder(id, patch)
	}
	return nil
}

// AddSampleOrder creates a Received order from a random buyer for a random
// existing crop.
func (s *Service) AddSampleOrder(ctx context.Context) (farm.Order, error) {
	crops := s.store.Crops()
	if len(crops) == 0 {
		return farm.Order{}, ErrNoCrops
	}
	in := farm.NewOrder{
		Buyer:   sampleBuyers[s.intN(len(sampleBuyers))],
		Product: crops[s.intN(len(crops))].Name,
		Qty:     float64(SampleQtyMin + s.intN(SampleQtyMax-SampleQtyMin+1)),
		Status:  farm.OrderReceived,
	}
	created, err := s.client.CreateOrder(ctx, in)
	if err != nil {
		s.log.Warn("create sample order failed", "buyer", in.Buyer, "err", err)
		return farm.Order{}, err
	}
	s.store.PrependOrder(created)
	return created, nil
}

// ClearAll deletes every crop and order the mirror holds, one call each.
// Entities whose delete succeeds leave the mirror as they go; anything added
// while the deletes are in flight stays. Failures are joined.
func (s *Service) ClearAll(ctx context.Context, p Prompter) error {
	if p == nil || !p.Confirm("Delete ALL crops and orders? This cannot be undone.") {
		return ErrCancelled
	}
	crops := s.store.Crops()
	orders := s.store.Orders()

	var (
		mu   sync.Mutex
		errs []error
	)
	record := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(s.opts.ClearConcurrency)
	for _, c := range crops {
		id := c.ID
		g.Go(func() error {
			if err := s.client.DeleteCrop(ctx, id); err != nil {
				record(fmt.Errorf("crop %s: %w", id, err))
				return nil
			}
			s.store.RemoveCrop(id)
			return nil
		})
	}
	for _, o := range orders {
		id := o.ID
		g.Go(func() error {
			if err := s.client.DeleteOrder(ctx, id); err != nil {
				record(fmt.Errorf("order %s: %w", id, err))
				return nil
			}
			s.store.RemoveOrder(id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		record(err)
	}

	if len(errs) > 0 {
		s.log.Warn("clear all incomplete", "failed", len(errs), "total", len(crops)+len(orders))
		return errors.Join(errs...)
	}
	s.log.Info("cleared all data", "crops", len(crops), "orders", len(orders))
	return nil
}

// ImportSampleData asks the server to append its samples, then replaces the
// mirror with a fresh copy of both collections.
func (s *Service) ImportSampleData(ctx context.Context, p Prompter) error {
	if p == nil || !p.Confirm("Import sample crops and orders?") {
		return ErrCancelled
	}
	if err := s.client.ImportSampleData(ctx); err != nil {
		s.log.Warn("import sample data failed", "err", err)
		return err
	}
	crops, orders, err := s.fetch(ctx)
	if err != nil {
		s.log.Warn("refetch after import failed", "err", err)
		return err
	}
	s.store.ReplaceCrops(crops)
	s.store.ReplaceOrders(orders)
	return nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
