package inventory

import (
	"context"
	"fmt"

	"farmdash/internal/farm"
)

// Action names a user intent. UIs map their own events (keys, commands) to
// actions and never call the gateway themselves.
type Action string

const (
	ActionCreateCrop   Action = "crop.create"
	ActionEditCrop     Action = "crop.edit"
	ActionDeleteCrop   Action = "crop.delete"
	ActionCropStatus   Action = "crop.status"
	ActionOrderStatus  Action = "order.status"
	ActionDeleteOrder  Action = "order.delete"
	ActionSampleOrder  Action = "order.sample"
	ActionClearAll     Action = "data.clear"
	ActionImportSample Action = "data.import"
	ActionReload       Action = "data.reload"
)

// Request carries the arguments of an action; each handler reads only the
// fields it needs.
type Request struct {
	ID          farm.ID
	Crop        CropInput
	CropStatus  farm.CropStatus
	OrderStatus farm.OrderStatus
	Prompter    Prompter
}

type HandlerFunc func(ctx context.Context, req Request) error

type Dispatcher struct {
	handlers map[Action]HandlerFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[Action]HandlerFunc)}
}

func (d *Dispatcher) Register(a Action, h HandlerFunc) {
	d.handlers[a] = h
}

func (d *Dispatcher) Dispatch(ctx context.Context, a Action, req Request) error {
	h, ok := d.handlers[a]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, a)
	}
	return h(ctx, req)
}

// Dispatcher returns the action table for s.
func (s *Service) Dispatcher() *Dispatcher {
	d := NewDispatcher()
	d.Register(ActionCreateCrop, func(ctx context.Context, req Request) error {
		_, err := s.CreateCrop(ctx, req.Crop)
		return err
	})
	d.Register(ActionEditCrop, func(ctx context.Context, req Request) error {
		return s.EditCrop(ctx, req.ID, req.Prompter)
	})
	d.Register(ActionDeleteCrop, func(ctx context.Context, req Request) error {
		return s.DeleteCrop(ctx, req.ID, req.Prompter)
	})
	d.Register(ActionCropStatus, func(ctx context.Context, req Request) error {
		return s.SetCropStatus(ctx, req.ID, req.CropStatus)
	})
	d.Register(ActionOrderStatus, func(ctx context.Context, req Request) error {
		return s.SetOrderStatus(ctx, req.ID, req.OrderStatus)
	})
	d.Register(ActionDeleteOrder, func(ctx context.Context, req Request) error {
		return s.DeleteOrder(ctx, req.ID, req.Prompter)
	})
	d.Register(ActionSampleOrder, func(ctx context.Context, req Request) error {
		_, err := s.AddSampleOrder(ctx)
		return err
	})
	d.Register(ActionClearAll, func(ctx context.Context, req Request) error {
		return s.ClearAll(ctx, req.Prompter)
	})
	d.Register(ActionImportSample, func(ctx context.Context, req Request) error {
		return s.ImportSampleData(ctx, req.Prompter)
	})
	d.Register(ActionReload, func(ctx context.Context, req Request) error {
		return s.Load(ctx)
	})
	return d
}
