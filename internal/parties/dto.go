package parties

// CreateCustomerRequest carries a new customer registration.
type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Phone   string `json:"phone" validate:"required,max=20"`
	Address string `json:"address,omitempty" validate:"omitempty,max=200"`
}

// CreateSupplierRequest carries a new supplier registration.
type CreateSupplierRequest struct {
	Name   string `json:"name" validate:"required,min=2,max=100"`
	Phone  string `json:"phone" validate:"required,max=20"`
	Region string `json:"region,omitempty" validate:"omitempty,max=200"`
}
