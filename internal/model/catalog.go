package model

// Branch is a gym location bookings are made at.
type Branch struct {
	ID      uint64  `json:"id"`      // branches.id
	Name    string  `json:"name"`    // branches.name
	Address *string `json:"address"` // branches.address (nullable)
}

// Service is a bookable kind of session (personal training, yoga, ...).
type Service struct {
	ID          uint64  `json:"id"`          // services.id
	Name        string  `json:"name"`        // services.name
	Description *string `json:"description"` // services.description (nullable)
}

// Trainer is the public view of a trainer; the account link stays private.
type Trainer struct {
	ID       uint64  `json:"id"`        // trainers.id
	FullName string  `json:"full_name"` // trainers.full_name
	BranchID *uint64 `json:"branch_id"` // trainers.branch_id (nullable)
}
