package inventory

import (
	"context"
	"errors"
	"math/rand/v2"
	"reflect"
	"sync"
	"testing"

	"farmdash/internal/farm"
)

var errBoom = errors.New("boom")

func TestService_CreateCrop_validationBoundary(t *testing.T) {
	tests := []struct {
		name  string
		in    CropInput
		field string
	}{
		{name: "zero quantity", in: CropInput{Name: "Wheat", Quantity: 0, Price: 1}, field: "quantity"},
		{name: "zero price", in: CropInput{Name: "Wheat", Quantity: 1, Price: 0}, field: "price"},
		{name: "negative price", in: CropInput{Name: "Wheat", Quantity: 1, Price: -3}, field: "price"},
		{name: "empty name", in: CropInput{Name: "", Quantity: 1, Price: 1}, field: "name"},
		{name: "whitespace name", in: CropInput{Name: " \t ", Quantity: 1, Price: 1}, field: "name"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{}
			svc, st := newTestService(fc, Options{})

			_, err := svc.CreateCrop(context.Background(), tt.in)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := ve.Fields[tt.field]; !ok {
				t.Fatalf("expected field %q in %v", tt.field, ve.Fields)
			}
			if fc.totalCalls() != 0 {
				t.Fatalf("gateway called on invalid input: %+v", fc.calls)
			}
			if len(st.Crops()) != 0 {
				t.Fatalf("store mutated on invalid input")
			}
		})
	}
}

func TestService_CreateCrop_prependsServerEntity(t *testing.T) {
	fc := &fakeClient{crops: []farm.Crop{{ID: "1", Name: "Wheat", Quantity: 100, Price: 20, Status: farm.CropAvailable}}}
	svc, st := newTestService(fc, Options{})

	created, err := svc.CreateCrop(context.Background(), CropInput{Name: "  Corn ", Quantity: 200, Price: 3})
	if err != nil {
		t.Fatalf("CreateCrop: %v", err)
	}
	if created.Name != "Corn" || created.ID == "" {
		t.Fatalf("unexpected created crop: %+v", created)
	}
	if got := cropNames(st.Crops()); !reflect.DeepEqual(got, []string{"Corn", "Wheat"}) {
		t.Fatalf("expected new crop first, got %v", got)
	}

	// Freshly created crops always show under the default view.
	view := ProjectCrops(st.Crops(), CropQuery{Status: FilterAll})
	if view[0].ID != created.ID {
		t.Fatalf("created crop missing from default view: %v", view)
	}
}

func TestService_CreateCrop_gatewayFailureLeavesStore(t *testing.T) {
	fc := &fakeClient{errs: map[string]error{"CreateCrop": errBoom}}
	svc, st := newTestService(fc, Options{})

	if _, err := svc.CreateCrop(context.Background(), CropInput{Name: "Corn", Quantity: 1, Price: 1}); !errors.Is(err, errBoom) {
		t.Fatalf("expected gateway error, got %v", err)
	}
	if len(st.Crops()) != 0 {
		t.Fatalf("store mutated after failed create")
	}
}

func TestService_EditCrop(t *testing.T) {
	base := farm.Crop{ID: "1", Name: "Wheat", Quantity: 100, Price: 20, Status: farm.CropAvailable}

	tests := []struct {
		name      string
		answers   Answers
		wantErr   func(error) bool
		wantCrop  farm.Crop
		wantCalls int
	}{
		{
			name:      "partial answers keep defaults",
			answers:   Answers{Values: map[string]string{PromptPrice: "25.5"}},
			wantErr:   func(err error) bool { return err == nil },
			wantCrop:  farm.Crop{ID: "1", Name: "Wheat", Quantity: 100, Price: 25.5, Status: farm.CropAvailable},
			wantCalls: 1,
		},
		{
			name:    "invalid quantity aborts whole edit",
			answers: Answers{Values: map[string]string{PromptName: "Spelt", PromptQuantity: "0"}},
			wantErr: func(err error) bool {
				var ve *ValidationError
				return errors.As(err, &ve)
			},
			wantCrop: base,
		},
		{
			name:    "non-numeric price aborts",
			answers: Answers{Values: map[string]string{PromptPrice: "cheap"}},
			wantErr: func(err error) bool {
				var ve *ValidationError
				return errors.As(err, &ve) && ve.Fields["price"] != ""
			},
			wantCrop: base,
		},
		{
			name:     "cancelled prompt",
			answers:  Answers{Cancelled: true},
			wantErr:  func(err error) bool { return errors.Is(err, ErrCancelled) },
			wantCrop: base,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{crops: []farm.Crop{base}}
			svc, st := newTestService(fc, Options{})

			err := svc.EditCrop(context.Background(), "1", tt.answers)
			if !tt.wantErr(err) {
				t.Fatalf("unexpected error: %v", err)
			}
			got, _ := st.Crop("1")
			if got != tt.wantCrop {
				t.Fatalf("crop mismatch\n got: %+v\nwant: %+v", got, tt.wantCrop)
			}
			if n := len(fc.callsTo("UpdateCrop")); n != tt.wantCalls {
				t.Fatalf("expected %d UpdateCrop calls, got %d", tt.wantCalls, n)
			}
		})
	}
}

func TestService_EditCrop_gatewayFailureLeavesStore(t *testing.T) {
	base := farm.Crop{ID: "1", Name: "Wheat", Quantity: 100, Price: 20}
	fc := &fakeClient{crops: []farm.Crop{base}, errs: map[string]error{"UpdateCrop": errBoom}}
	svc, st := newTestService(fc, Options{})

	err := svc.EditCrop(context.Background(), "1", Answers{Values: map[string]string{PromptName: "Spelt"}})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected gateway error, got %v", err)
	}
	if got, _ := st.Crop("1"); got != base {
		t.Fatalf("store changed after failed edit: %+v", got)
	}
}

func TestService_DeleteOrder_confirmation(t *testing.T) {
	orders := []farm.Order{{ID: "5", Buyer: "City Bakery", Product: "Wheat", Qty: 10, Status: farm.OrderReceived}}

	t.Run("confirmed", func(t *testing.T) {
		fc := &fakeClient{orders: orders}
		svc, st := newTestService(fc, Options{})
		if err := svc.DeleteOrder(context.Background(), "5", Answers{Confirmed: true}); err != nil {
			t.Fatalf("DeleteOrder: %v", err)
		}
		if len(ProjectOrders(st.Orders(), OrderQuery{})) != 0 {
			t.Fatalf("order still in view")
		}
		if calls := fc.callsTo("DeleteOrder"); len(calls) != 1 || calls[0].id != "5" {
			t.Fatalf("unexpected delete calls: %+v", calls)
		}
	})

	t.Run("declined", func(t *testing.T) {
		fc := &fakeClient{orders: orders}
		svc, st := newTestService(fc, Options{})
		if err := svc.DeleteOrder(context.Background(), "5", Answers{}); !errors.Is(err, ErrCancelled) {
			t.Fatalf("expected ErrCancelled, got %v", err)
		}
		if len(st.Orders()) != 1 {
			t.Fatalf("order removed without confirmation")
		}
		if fc.totalCalls() != 0 {
			t.Fatalf("gateway called without confirmation: %+v", fc.calls)
		}
	})

	t.Run("gateway failure", func(t *testing.T) {
		fc := &fakeClient{orders: orders, errs: map[string]error{"DeleteOrder": errBoom}}
		svc, st := newTestService(fc, Options{})
		if err := svc.DeleteOrder(context.Background(), "5", Answers{Confirmed: true}); !errors.Is(err, errBoom) {
			t.Fatalf("expected gateway error, got %v", err)
		}
		if len(st.Orders()) != 1 {
			t.Fatalf("order removed after failed delete")
		}
	})
}

func TestService_DeleteCrop(t *testing.T) {
	fc := &fakeClient{crops: []farm.Crop{{ID: "1", Name: "Wheat"}, {ID: "2", Name: "Rice"}}}
	svc, st := newTestService(fc, Options{})

	if err := svc.DeleteCrop(context.Background(), "2", Answers{Confirmed: true}); err != nil {
		t.Fatalf("DeleteCrop: %v", err)
	}
	if got := cropNames(st.Crops()); !reflect.DeepEqual(got, []string{"Wheat"}) {
		t.Fatalf("unexpected crops: %v", got)
	}
	if err := svc.DeleteCrop(context.Background(), "2", Answers{Confirmed: true}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_SetCropStatus_modes(t *testing.T) {
	tests := []struct {
		name       string
		mode       Mode
		gatewayErr error
		want       farm.CropStatus
	}{
		{name: "optimistic success", mode: Optimistic, want: farm.CropSoldOut},
		{name: "optimistic failure keeps local change", mode: Optimistic, gatewayErr: errBoom, want: farm.CropSoldOut},
		{name: "confirmed success", mode: Confirmed, want: farm.CropSoldOut},
		{name: "confirmed failure leaves store", mode: Confirmed, gatewayErr: errBoom, want: farm.CropAvailable},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{crops: []farm.Crop{{ID: "1", Name: "Wheat", Status: farm.CropAvailable}}}
			if tt.gatewayErr != nil {
				fc.errs = map[string]error{"UpdateCrop": tt.gatewayErr}
			}
			svc, st := newTestService(fc, Options{CropStatusMode: tt.mode})

			err := svc.SetCropStatus(context.Background(), "1", farm.CropSoldOut)
			if !errors.Is(err, tt.gatewayErr) {
				t.Fatalf("unexpected error: %v", err)
			}
			if got, _ := st.Crop("1"); got.Status != tt.want {
				t.Fatalf("status = %q, want %q", got.Status, tt.want)
			}
		})
	}
}

func TestService_SetCropStatus_localStatusSeenByGatewayCall(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		want farm.CropStatus
	}{
		{name: "optimistic sets it first", mode: Optimistic, want: farm.CropSoldOut},
		{name: "confirmed waits for the call", mode: Confirmed, want: farm.CropAvailable},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{crops: []farm.Crop{{ID: "1", Name: "Wheat", Status: farm.CropAvailable}}}
			var (
				st   *Store
				seen []farm.CropStatus
			)
			fc.beforeUpdateCrop = func(id farm.ID) {
				c, _ := st.Crop(id)
				seen = append(seen, c.Status)
			}
			var svc *Service
			svc, st = newTestService(fc, Options{CropStatusMode: tt.mode})

			if err := svc.SetCropStatus(context.Background(), "1", farm.CropSoldOut); err != nil {
				t.Fatalf("SetCropStatus: %v", err)
			}
			if len(seen) != 1 || seen[0] != tt.want {
				t.Fatalf("status during UpdateCrop = %v, want [%s]", seen, tt.want)
			}
			if c, _ := st.Crop("1"); c.Status != farm.CropSoldOut {
				t.Fatalf("final status = %q", c.Status)
			}
		})
	}
}

func TestService_SetOrderStatus(t *testing.T) {
	fc := &fakeClient{orders: []farm.Order{{ID: "3", Buyer: "a", Status: farm.OrderReceived}}}
	svc, st := newTestService(fc, Options{OrderStatusMode: Confirmed})

	if err := svc.SetOrderStatus(context.Background(), "3", farm.OrderDelivered); err != nil {
		t.Fatalf("SetOrderStatus: %v", err)
	}
	if o, _ := st.Order("3"); o.Status != farm.OrderDelivered {
		t.Fatalf("status not applied: %+v", o)
	}

	var ve *ValidationError
	if err := svc.SetOrderStatus(context.Background(), "3", "Lost"); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for unknown status, got %v", err)
	}
	if n := len(fc.callsTo("UpdateOrder")); n != 1 {
		t.Fatalf("expected 1 UpdateOrder call, got %d", n)
	}
}

func TestService_AddSampleOrder(t *testing.T) {
	t.Run("no crops", func(t *testing.T) {
		fc := &fakeClient{}
		svc, st := newTestService(fc, Options{})
		if _, err := svc.AddSampleOrder(context.Background()); !errors.Is(err, ErrNoCrops) {
			t.Fatalf("expected ErrNoCrops, got %v", err)
		}
		if fc.totalCalls() != 0 || len(st.Orders()) != 0 {
			t.Fatalf("expected no gateway call and no mutation")
		}
	})

	t.Run("picks an existing crop", func(t *testing.T) {
		fc := &fakeClient{
			crops:  []farm.Crop{{ID: "1", Name: "Wheat"}, {ID: "2", Name: "Rice"}},
			orders: []farm.Order{{ID: "old", Buyer: "x"}},
		}
		svc, st := newTestService(fc, Options{Rand: rand.New(rand.NewPCG(1, 2))})

		for i := 0; i < 20; i++ {
			o, err := svc.AddSampleOrder(context.Background())
			if err != nil {
				t.Fatalf("AddSampleOrder: %v", err)
			}
			if o.Product != "Wheat" && o.Product != "Rice" {
				t.Fatalf("product %q is not an existing crop", o.Product)
			}
			if o.Qty < SampleQtyMin || o.Qty > SampleQtyMax {
				t.Fatalf("qty %v out of range", o.Qty)
			}
			if o.Status != farm.OrderReceived || o.Buyer == "" {
				t.Fatalf("unexpected order: %+v", o)
			}
			if st.Orders()[0].ID != o.ID {
				t.Fatalf("new order not prepended")
			}
		}
	})
}

func TestService_ClearAll(t *testing.T) {
	crops := []farm.Crop{{ID: "1", Name: "Wheat"}, {ID: "2", Name: "Rice"}}
	orders := []farm.Order{{ID: "9", Buyer: "a"}}

	t.Run("deletes the pre-clear snapshot", func(t *testing.T) {
		fc := &fakeClient{crops: crops, orders: orders}
		svc, st := newTestService(fc, Options{})
		if err := svc.ClearAll(context.Background(), Answers{Confirmed: true}); err != nil {
			t.Fatalf("ClearAll: %v", err)
		}
		if len(fc.callsTo("DeleteCrop")) != 2 || len(fc.callsTo("DeleteOrder")) != 1 {
			t.Fatalf("expected a delete per entity, got %+v", fc.calls)
		}
		if len(st.Crops()) != 0 || len(st.Orders()) != 0 {
			t.Fatalf("mirror not cleared")
		}
	})

	t.Run("declined", func(t *testing.T) {
		fc := &fakeClient{crops: crops, orders: orders}
		svc, st := newTestService(fc, Options{})
		if err := svc.ClearAll(context.Background(), nil); !errors.Is(err, ErrCancelled) {
			t.Fatalf("expected ErrCancelled, got %v", err)
		}
		if fc.totalCalls() != 0 || len(st.Crops()) != 2 {
			t.Fatalf("declined clear touched data")
		}
	})

	t.Run("create during clear stays mirrored", func(t *testing.T) {
		fc := &fakeClient{crops: crops, orders: orders}
		bd := &blockingDeletes{fakeClient: fc, started: make(chan struct{}), release: make(chan struct{})}
		st := NewStore()
		st.ReplaceCrops(crops)
		st.ReplaceOrders(orders)
		svc := NewService(st, bd, Options{ClearConcurrency: 1, Logger: quietLogger()})

		done := make(chan error, 1)
		go func() { done <- svc.ClearAll(context.Background(), Answers{Confirmed: true}) }()

		<-bd.started
		if _, err := svc.CreateCrop(context.Background(), CropInput{Name: "Corn", Quantity: 1, Price: 1}); err != nil {
			t.Fatalf("CreateCrop: %v", err)
		}
		close(bd.release)
		if err := <-done; err != nil {
			t.Fatalf("ClearAll: %v", err)
		}

		if got := cropNames(st.Crops()); !reflect.DeepEqual(got, []string{"Corn"}) {
			t.Fatalf("expected only the new crop mirrored, got %v", got)
		}
		if len(st.Orders()) != 0 {
			t.Fatalf("deleted order still mirrored")
		}
	})

	t.Run("partial failure keeps failed entities", func(t *testing.T) {
		fc := &fakeClient{crops: crops, orders: orders, errs: map[string]error{"DeleteCrop:2": errBoom}}
		svc, st := newTestService(fc, Options{ClearConcurrency: 1})
		err := svc.ClearAll(context.Background(), Answers{Confirmed: true})
		if !errors.Is(err, errBoom) {
			t.Fatalf("expected joined gateway error, got %v", err)
		}
		if got := cropNames(st.Crops()); !reflect.DeepEqual(got, []string{"Rice"}) {
			t.Fatalf("expected only the failed crop left, got %v", got)
		}
		if len(st.Orders()) != 0 {
			t.Fatalf("deleted order still mirrored")
		}
	})
}

func TestService_ImportSampleData_replacesMirror(t *testing.T) {
	fc := &fakeClient{
		crops:  []farm.Crop{{ID: "1", Name: "Wheat"}},
		orders: []farm.Order{{ID: "9", Buyer: "a"}},
	}
	svc, st := newTestService(fc, Options{})
	st.PrependCrop(farm.Crop{ID: "local", Name: "Ghost"})

	fc.crops = []farm.Crop{{ID: "1", Name: "Wheat"}, {ID: "2", Name: "Apples"}}
	if err := svc.ImportSampleData(context.Background(), Answers{Confirmed: true}); err != nil {
		t.Fatalf("ImportSampleData: %v", err)
	}
	if got := cropNames(st.Crops()); !reflect.DeepEqual(got, []string{"Wheat", "Apples"}) {
		t.Fatalf("mirror not replaced: %v", got)
	}
	if len(fc.callsTo("ImportSampleData")) != 1 {
		t.Fatalf("expected one import call")
	}

	if err := svc.ImportSampleData(context.Background(), Answers{}); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestService_Load(t *testing.T) {
	fc := &fakeClient{crops: []farm.Crop{{ID: "1", Name: "Wheat"}}, errs: map[string]error{"ListOrders": errBoom}}
	svc, _ := newTestService(&fakeClient{}, Options{})
	svc.client = fc

	err := svc.Load(context.Background())
	if !errors.Is(err, ErrInit) || !errors.Is(err, errBoom) {
		t.Fatalf("expected init error wrapping gateway error, got %v", err)
	}
	if len(svc.Store().Crops()) != 0 {
		t.Fatalf("partial load reached the mirror")
	}

	fc.errs = nil
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(svc.Store().Crops()) != 1 {
		t.Fatalf("crops not loaded")
	}
}

func TestDispatcher(t *testing.T) {
	fc := &fakeClient{crops: []farm.Crop{{ID: "1", Name: "Wheat", Status: farm.CropAvailable}}}
	svc, st := newTestService(fc, Options{})
	d := svc.Dispatcher()

	if err := d.Dispatch(context.Background(), ActionCropStatus, Request{ID: "1", CropStatus: farm.CropSoldOut}); err != nil {
		t.Fatalf("dispatch crop.status: %v", err)
	}
	if c, _ := st.Crop("1"); c.Status != farm.CropSoldOut {
		t.Fatalf("crop.status not applied")
	}
	if err := d.Dispatch(context.Background(), ActionCreateCrop, Request{Crop: CropInput{Name: "Corn", Quantity: 1, Price: 1}}); err != nil {
		t.Fatalf("dispatch crop.create: %v", err)
	}
	if err := d.Dispatch(context.Background(), Action("crop.grow"), Request{}); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestParseCropInput(t *testing.T) {
	in, err := ParseCropInput(" Wheat ", "12.5", "3")
	if err != nil {
		t.Fatalf("ParseCropInput: %v", err)
	}
	if in != (CropInput{Name: "Wheat", Quantity: 12.5, Price: 3}) {
		t.Fatalf("unexpected input: %+v", in)
	}

	_, err = ParseCropInput("", "NaN", "-1")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := map[string]string{"name": "is required", "quantity": "must be a number", "price": "must be greater than 0"}
	if !reflect.DeepEqual(ve.Fields, want) {
		t.Fatalf("fields = %v, want %v", ve.Fields, want)
	}
}

// blockingDeletes holds the first DeleteCrop until release is closed.
type blockingDeletes struct {
	*fakeClient
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingDeletes) DeleteCrop(ctx context.Context, id farm.ID) error {
	b.once.Do(func() {
		close(b.started)
		<-b.release
	})
	return b.fakeClient.DeleteCrop(ctx, id)
}
