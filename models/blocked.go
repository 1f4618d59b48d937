package models

import "time"

// BlockType tells why a manager closed a window.
type BlockType string

const (
	BlockBlackout    BlockType = "blackout"
	BlockTimeOff     BlockType = "time_off"
	BlockTraining    BlockType = "training"
	BlockMaintenance BlockType = "maintenance"
)

// ManagerTimeBlock is an explicit interval in which a manager's contractors may not be booked.
type ManagerTimeBlock struct {
	ID           string    `bson:"id" json:"id"`
	ManagerID    string    `bson:"managerId" json:"managerId"`
	ContractorID string    `bson:"contractorId,omitempty" json:"contractorId,omitempty"` // empty blocks every contractor of the manager
	BlockType    BlockType `bson:"blockType" json:"blockType"`
	StartTime    time.Time `bson:"startTime" json:"startTime"`
	EndTime      time.Time `bson:"endTime" json:"endTime"`
	Reason       string    `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

// AppliesTo reports whether the block covers the given contractor.
func (b ManagerTimeBlock) AppliesTo(contractorID string) bool {
	return b.ContractorID == "" || b.ContractorID == contractorID
}

// ManagerSettings is a manager's scheduling policy for their contractors.
type ManagerSettings struct {
	ManagerID             string    `bson:"managerId" json:"managerId"`
	MaxDailyJobs          int       `bson:"maxDailyJobs" json:"maxDailyJobs"`                     // 0 disables the cap
	ServiceWindowStart    string    `bson:"serviceWindowStart,omitempty" json:"serviceWindowStart"` // e.g. "08:00"
	ServiceWindowEnd      string    `bson:"serviceWindowEnd,omitempty" json:"serviceWindowEnd"`     // e.g. "18:00"
	TurnoverBufferMinutes int       `bson:"turnoverBufferMinutes" json:"turnoverBufferMinutes"`
	UpdatedAt             time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasServiceWindow reports whether both service window bounds are configured.
func (s *ManagerSettings) HasServiceWindow() bool {
	return s != nil && s.ServiceWindowStart != "" && s.ServiceWindowEnd != ""
}
