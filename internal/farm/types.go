package farm

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is a server-assigned identifier. The API is not consistent about
// whether ids travel as JSON numbers or strings, so both decode to the same
// textual form and ids are only ever compared as text.
type ID string

func (id ID) String() string { return string(id) }

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id %s", b)
	}
	*id = ID(n.String())
	return nil
}

type CropStatus string

const (
	CropAvailable CropStatus = "Available"
	CropSoldOut   CropStatus = "Sold Out"
)

// CropStatuses lists crop statuses in display order.
var CropStatuses = []CropStatus{CropAvailable, CropSoldOut}

func (s CropStatus) Valid() bool {
	return s == CropAvailable || s == CropSoldOut
}

// Next returns the status after s, wrapping around. Unknown values map to
// the first status.
func (s CropStatus) Next() CropStatus {
	for i, v := range CropStatuses {
		if v == s {
			return CropStatuses[(i+1)%len(CropStatuses)]
		}
	}
	return CropStatuses[0]
}

type OrderStatus string

const (
	OrderReceived   OrderStatus = "Received"
	OrderProcessing OrderStatus = "Processing"
	OrderDispatched OrderStatus = "Dispatched"
	OrderDelivered  OrderStatus = "Delivered"
)

// OrderStatuses lists order statuses in lifecycle order. The lifecycle is
// not enforced: any status may be set from any other.
var OrderStatuses = []OrderStatus{OrderReceived, OrderProcessing, OrderDispatched, OrderDelivered}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s OrderStatus) Next() OrderStatus {
	for i, v := range OrderStatuses {
		if v == s {
			return OrderStatuses[(i+1)%len(OrderStatuses)]
		}
	}
	return OrderStatuses[0]
}

// Crop is a stocked product. Quantity is in kilograms, Price per kilogram.
type Crop struct {
	ID       ID         `json:"id"`
	Name     string     `json:"name"`
	Quantity float64    `json:"quantity"`
	Price    float64    `json:"price"`
	Status   CropStatus `json:"status"`
	Note     string     `json:"note,omitempty"`
}

// NewCrop is the creation payload; the server assigns id and status.
type NewCrop struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
}

// CropPatch carries the fields of a partial crop update. Nil fields are left
// untouched.
type CropPatch struct {
	Name     *string     `json:"name,omitempty"`
	Quantity *float64    `json:"quantity,omitempty"`
	Price    *float64    `json:"price,omitempty"`
	Status   *CropStatus `json:"status,omitempty"`
	Note     *string     `json:"note,omitempty"`
}

func (p CropPatch) Apply(c *Crop) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Quantity != nil {
		c.Quantity = *p.Quantity
	}
	if p.Price != nil {
		c.Price = *p.Price
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Note != nil {
		c.Note = *p.Note
	}
}

// Order is a buyer order. Product names a crop but is not checked against
// the crop list.
type Order struct {
	ID      ID          `json:"id"`
	Buyer   string      `json:"buyer"`
	Product string      `json:"product"`
	Qty     float64     `json:"qty"`
	Status  OrderStatus `json:"status"`
}

type NewOrder struct {
	Buyer   string      `json:"buyer"`
	Product string      `json:"product"`
	Qty     float64     `json:"qty"`
	Status  OrderStatus `json:"status"`
}

type OrderPatch struct {
	Status *OrderStatus `json:"status,omitempty"`
}

func (p OrderPatch) Apply(o *Order) {
	if p.Status != nil {
		o.Status = *p.Status
	}
}
