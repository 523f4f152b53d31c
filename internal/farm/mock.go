package farm

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MockClient is an in-memory stand-in for the farm API. It assigns ids and
// default statuses the way the server does, and is safe for concurrent use.
type MockClient struct {
	mu     sync.Mutex
	crops  []Crop
	orders []Order
}

func sampleCrops() []Crop {
	return []Crop{
		{Name: "Organic Apples", Quantity: 500, Price: 2.5, Status: CropAvailable, Note: "fresh from the orchard"},
		{Name: "Fresh Tomatoes", Quantity: 300, Price: 1.8, Status: CropAvailable, Note: "vine-ripened"},
		{Name: "Whole Wheat", Quantity: 1000, Price: 0.8, Status: CropAvailable, Note: "organic seed"},
		{Name: "Basmati Rice", Quantity: 50, Price: 3.2, Status: CropSoldOut},
	}
}

func sampleOrders() []Order {
	return []Order{
		{Buyer: "Fresh Market", Product: "Organic Apples", Qty: 40, Status: OrderProcessing},
		{Buyer: "Green Grocer", Product: "Whole Wheat", Qty: 120, Status: OrderReceived},
		{Buyer: "City Bakery", Product: "Whole Wheat", Qty: 80, Status: OrderDelivered},
	}
}

func NewMockClient() *MockClient {
	m := &MockClient{}
	m.seed()
	return m
}

func newID() ID { return ID(uuid.NewString()) }

// seed appends the sample records. Callers hold mu or own m exclusively.
func (m *MockClient) seed() {
	for _, c := range sampleCrops() {
		c.ID = newID()
		m.crops = append(m.crops, c)
	}
	for _, o := range sampleOrders() {
		o.ID = newID()
		m.orders = append(m.orders, o)
	}
}

func (m *MockClient) ListCrops(ctx context.Context) ([]Crop, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Crop, len(m.crops))
	copy(out, m.crops)
	return out, nil
}

func (m *MockClient) CreateCrop(ctx context.Context, in NewCrop) (Crop, error) {
	_ = ctx
	c := Crop{ID: newID(), Name: in.Name, Quantity: in.Quantity, Price: in.Price, Status: CropAvailable}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.crops = append([]Crop{c}, m.crops...)
	return c, nil
}

func (m *MockClient) UpdateCrop(ctx context.Context, id ID, patch CropPatch) (Crop, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.crops {
		if m.crops[i].ID == id {
			patch.Apply(&m.crops[i])
			return m.crops[i], nil
		}
	}
	return Crop{}, &GatewayError{Method: "PUT", Endpoint: "/crops/" + id.String(), Status: 404, Message: "crop not found"}
}

func (m *MockClient) DeleteCrop(ctx context.Context, id ID) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.crops {
		if m.crops[i].ID == id {
			m.crops = append(m.crops[:i], m.crops[i+1:]...)
			return nil
		}
	}
	return &GatewayError{Method: "DELETE", Endpoint: "/crops/" + id.String(), Status: 404, Message: "crop not found"}
}

func (m *MockClient) ListOrders(ctx context.Context) ([]Order, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Order, len(m.orders))
	copy(out, m.orders)
	return out, nil
}

func (m *MockClient) CreateOrder(ctx context.Context, in NewOrder) (Order, error) {
	_ = ctx
	status := in.Status
	if status == "" {
		status = OrderReceived
	}
	o := Order{ID: newID(), Buyer: in.Buyer, Product: in.Product, Qty: in.Qty, Status: status}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append([]Order{o}, m.orders...)
	return o, nil
}

func (m *MockClient) UpdateOrder(ctx context.Context, id ID, patch OrderPatch) (Order, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.orders {
		if m.orders[i].ID == id {
			patch.Apply(&m.orders[i])
			return m.orders[i], nil
		}
	}
	return Order{}, &GatewayError{Method: "PUT", Endpoint: "/orders/" + id.String(), Status: 404, Message: "order not found"}
}

func (m *MockClient) DeleteOrder(ctx context.Context, id ID) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.orders {
		if m.orders[i].ID == id {
			m.orders = append(m.orders[:i], m.orders[i+1:]...)
			return nil
		}
	}
	return &GatewayError{Method: "DELETE", Endpoint: "/orders/" + id.String(), Status: 404, Message: "order not found"}
}

func (m *MockClient) ImportSampleData(ctx context.Context) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seed()
	return nil
}

func (m *MockClient) Ping(ctx context.Context) error {
	_ = ctx
	return nil
}

// String is used for the footer's server label.
func (m *MockClient) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fmt.Sprintf("mock (%d crops, %d orders)", len(m.crops), len(m.orders))
}
