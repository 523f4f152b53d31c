package inventory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"farmdash/internal/farm"
)

type call struct {
	method string
	id     farm.ID
}

type fakeClient struct {
	mu sync.Mutex

	crops  []farm.Crop
	orders []farm.Order
	nextID int

	calls []call
	// errs fails the named method ("CreateCrop", "DeleteCrop:3", ...).
	errs map[string]error
	// beforeUpdateCrop runs at the start of UpdateCrop, before any result.
	beforeUpdateCrop func(id farm.ID)
}

func (f *fakeClient) record(method string, id farm.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{method: method, id: id})
	if err, ok := f.errs[method+":"+id.String()]; ok {
		return err
	}
	return f.errs[method]
}

func (f *fakeClient) callsTo(method string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeClient) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeClient) newID() farm.ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return farm.ID(fmt.Sprintf("n%d", f.nextID))
}

func (f *fakeClient) ListCrops(ctx context.Context) ([]farm.Crop, error) {
	if err := f.record("ListCrops", ""); err != nil {
		return nil, err
	}
	return append([]farm.Crop(nil), f.crops...), nil
}

func (f *fakeClient) CreateCrop(ctx context.Context, in farm.NewCrop) (farm.Crop, error) {
	if err := f.record("CreateCrop", ""); err != nil {
		return farm.Crop{}, err
	}
	return farm.Crop{ID: f.newID(), Name: in.Name, Quantity: in.Quantity, Price: in.Price, Status: farm.CropAvailable}, nil
}

func (f *fakeClient) UpdateCrop(ctx context.Context, id farm.ID, patch farm.CropPatch) (farm.Crop, error) {
	if f.beforeUpdateCrop != nil {
		f.beforeUpdateCrop(id)
	}
	return farm.Crop{}, f.record("UpdateCrop", id)
}

func (f *fakeClient) DeleteCrop(ctx context.Context, id farm.ID) error {
	return f.record("DeleteCrop", id)
}

func (f *fakeClient) ListOrders(ctx context.Context) ([]farm.Order, error) {
	if err := f.record("ListOrders", ""); err != nil {
		return nil, err
	}
	return append([]farm.Order(nil), f.orders...), nil
}

func (f *fakeClient) CreateOrder(ctx context.Context, in farm.NewOrder) (farm.Order, error) {
	if err := f.record("CreateOrder", ""); err != nil {
		return farm.Order{}, err
	}
	return farm.Order{ID: f.newID(), Buyer: in.Buyer, Product: in.Product, Qty: in.Qty, Status: in.Status}, nil
}

func (f *fakeClient) UpdateOrder(ctx context.Context, id farm.ID, patch farm.OrderPatch) (farm.Order, error) {
	return farm.Order{}, f.record("UpdateOrder", id)
}

func (f *fakeClient) DeleteOrder(ctx context.Context, id farm.ID) error {
	return f.record("DeleteOrder", id)
}

func (f *fakeClient) ImportSampleData(ctx context.Context) error {
	return f.record("ImportSampleData", "")
}

func (f *fakeClient) Ping(ctx context.Context) error {
	return f.record("Ping", "")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(fc *fakeClient, opts Options) (*Service, *Store) {
	st := NewStore()
	st.ReplaceCrops(fc.crops)
	st.ReplaceOrders(fc.orders)
	opts.Logger = quietLogger()
	return NewService(st, fc, opts), st
}

func cropNames(cs []farm.Crop) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Name)
	}
	return out
}
