package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

const (
	RoleAdmin = "Admin"

	StatusActive   = 1
	StatusDisabled = 0

	DefaultReportState = "no asignado"
)

var ReportStates = []string{DefaultReportState, "asignado", "en proceso", "resuelto"}

// NormalizeRoleName is the lookup key for roles: "admin", "ADMIN" and "Admin" collide.
// A Caser keeps state, so one is built per call.
func NormalizeRoleName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

type Base struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *Base) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

type User struct {
	Base
	Username            string     `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email               string     `gorm:"uniqueIndex;size:256;not null" json:"email"`
	PasswordHash        string     `gorm:"not null"                     json:"-"`
	FirstName           string     `gorm:"size:100;not null"            json:"firstName"`
	LastName            string     `gorm:"size:100;not null"            json:"lastName"`
	Status              int        `gorm:"not null"                     json:"status"`
	RefreshTokenHash    *string    `gorm:"size:64;index"                json:"-"`
	RefreshTokenExpiry  *time.Time `json:"-"`
	PasswordResetToken  *string    `gorm:"size:16"                      json:"-"`
	PasswordResetExpiry *time.Time `json:"-"`
	Roles               []Role     `gorm:"many2many:user_roles;"        json:"roles,omitempty"`
}

func (u *User) RoleNames() []string {
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, r.Name)
	}
	return out
}

type Role struct {
	Base
	Name           string `gorm:"size:64;not null"             json:"name"`
	NormalizedName string `gorm:"uniqueIndex;size:64;not null" json:"-"`
}

func (r *Role) BeforeSave(*gorm.DB) error {
	r.NormalizedName = NormalizeRoleName(r.Name)
	return nil
}

type State struct {
	Base
	Name string `gorm:"uniqueIndex;size:64;not null" json:"name"`
}

type Report struct {
	Base
	Key         string    `gorm:"column:report_key;size:20" json:"key"`
	Name        string    `gorm:"size:150;not null"      json:"name"`
	DNI         string    `gorm:"size:13;not null"       json:"dni"`
	Cellphone   string    `gorm:"size:15"                json:"cellphone"`
	Date        time.Time `gorm:"not null"               json:"date"`
	Report      string    `gorm:"type:text;not null"     json:"report"`
	Direction   string    `gorm:"size:200"               json:"direction"`
	Observation string    `gorm:"size:500"               json:"observation"`
	StateID     string    `gorm:"size:36;index;not null" json:"stateId"`
	State       *State    `json:"state,omitempty"`
	PublicIDs   []string  `gorm:"serializer:json;type:text" json:"publicIds"`
	URLs        []string  `gorm:"serializer:json;type:text" json:"urls"`
}

type Communique struct {
	Base
	Title         string    `gorm:"size:200;not null"  json:"title"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	TypeStatement string    `gorm:"size:100;not null"  json:"typeStatement"`
	Date          time.Time `gorm:"not null"           json:"date"`
	UserID        string    `gorm:"size:36;index"      json:"userId"`
}

type Block struct {
	Base
	Name string `gorm:"size:150;not null" json:"name"`
}

type NeighborhoodColony struct {
	Base
	Name    string `gorm:"size:150;not null"      json:"name"`
	BlockID string `gorm:"size:36;index;not null" json:"blockId"`
	Block   *Block `json:"block,omitempty"`
}

type Line struct {
	Base
	Name                 string              `gorm:"size:150;not null"      json:"name"`
	NeighborhoodColonyID string              `gorm:"size:36;index;not null" json:"neighborhoodColonyId"`
	NeighborhoodColony   *NeighborhoodColony `json:"neighborhoodColony,omitempty"`
}

type DistrictPoint struct {
	Base
	Latitude             float64             `gorm:"not null"               json:"latitude"`
	Longitude            float64             `gorm:"not null"               json:"longitude"`
	NeighborhoodColonyID string              `gorm:"size:36;index;not null" json:"neighborhoodColonyId"`
	NeighborhoodColony   *NeighborhoodColony `json:"neighborhoodColony,omitempty"`
}

type WaterRegistration struct {
	Base
	Date          time.Time            `gorm:"not null"  json:"date"`
	Observations  string               `gorm:"size:1000" json:"observations"`
	Neighborhoods []NeighborhoodColony `gorm:"many2many:water_registration_neighborhoods;" json:"neighborhoods"`
}

func (w *WaterRegistration) NeighborhoodNames() []string {
	out := make([]string, 0, len(w.Neighborhoods))
	for _, n := range w.Neighborhoods {
		out = append(out, n.Name)
	}
	return out
}

// All lists every table for AutoMigrate.
func All() []any {
	return []any{
		&User{}, &Role{}, &State{}, &Report{}, &Communique{},
		&Block{}, &NeighborhoodColony{}, &Line{}, &DistrictPoint{}, &WaterRegistration{},
	}
}
