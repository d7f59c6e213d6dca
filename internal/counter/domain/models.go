// Package domain holds the usage event record and the query contracts used to
// build COUNTER reports.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	AccessTypeControlled = "Controlled"
	AccessTypeOAGold     = "OA_Gold"

	AccessMethodRegular = "Regular"
	AccessMethodTDM     = "TDM"
)

// UsageEvent is one recorded platform request. Rows are append-only and ids
// are snowflake ids, so id order is insertion order.
type UsageEvent struct {
	ID              snowflake.ID `gorm:"primaryKey"`
	InstitutionID   string       `gorm:"type:text;not null;index"`
	Noid            string       `gorm:"type:text;not null"`
	ParentNoid      string       `gorm:"type:text;not null;index"`
	Press           string       `gorm:"type:text;not null;index"`
	Session         string       `gorm:"type:text;not null"`
	AccessType      string       `gorm:"type:text;not null"`
	AccessMethod    string       `gorm:"type:text;not null"`
	Request         bool         `gorm:"not null;default:false"`
	Investigation   bool         `gorm:"not null;default:false"`
	Turnaway        string       `gorm:"type:text"`
	IsUniqueSession bool         `gorm:"not null;default:false"`
	CreatedAt       time.Time    `gorm:"not null;index"`
}

func (UsageEvent) TableName() string { return "counter_events" }

// Institution maps a subscriber identifier to its display name.
type Institution struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	Identifier string       `gorm:"type:text;not null;uniqueIndex"`
	Name       string       `gorm:"type:text;not null"`
}

func (Institution) TableName() string { return "institutions" }
