package models

import "time"

// ContractorProfile is the scheduling view of a contractor.
type ContractorProfile struct {
	ID           string                `bson:"id" json:"id"`
	UserID       string                `bson:"userId" json:"userId"`
	ManagerID    string                `bson:"managerId,omitempty" json:"managerId,omitempty"` // managing entity, empty for independents
	BusinessName string                `bson:"businessName" json:"businessName"`
	Timezone     string                `bson:"timezone,omitempty" json:"timezone,omitempty"` // IANA name
	WorkingHours map[string]WorkingDay `bson:"workingHours,omitempty" json:"workingHours,omitempty"`
	Breaks       []BreakWindow         `bson:"breaks,omitempty" json:"breaks,omitempty"`
	Address      Address               `bson:"address" json:"address"`
	CreatedAt    time.Time             `bson:"createdAt" json:"createdAt"`
}

// ServiceRequest is the member request a work order is fulfilling. Only the
// location is relevant to scheduling.
type ServiceRequest struct {
	ID       string  `bson:"id" json:"id"`
	MemberID string  `bson:"memberId" json:"memberId"`
	Title    string  `bson:"title" json:"title"`
	Address  Address `bson:"address" json:"address"`
}

// Address is a postal service location.
type Address struct {
	Street string `bson:"street" json:"street"`
	City   string `bson:"city" json:"city"`
	State  string `bson:"state,omitempty" json:"state,omitempty"`
	Zip    string `bson:"zip" json:"zip"`
}

// IsZero reports whether no location field is set.
func (a Address) IsZero() bool {
	return a.Street == "" && a.City == "" && a.Zip == ""
}
