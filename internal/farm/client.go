package farm

import "context"

// Client is the interface the inventory handlers depend on.
//
// Keep it narrow: handlers shouldn't know about transport details.
type Client interface {
	ListCrops(ctx context.Context) ([]Crop, error)
	CreateCrop(ctx context.Context, in NewCrop) (Crop, error)
	UpdateCrop(ctx context.Context, id ID, patch CropPatch) (Crop, error)
	DeleteCrop(ctx context.Context, id ID) error

	ListOrders(ctx context.Context) ([]Order, error)
	CreateOrder(ctx context.Context, in NewOrder) (Order, error)
	UpdateOrder(ctx context.Context, id ID, patch OrderPatch) (Order, error)
	DeleteOrder(ctx context.Context, id ID) error

	// ImportSampleData asks the server to append its sample records.
	ImportSampleData(ctx context.Context) error
	Ping(ctx context.Context) error
}
