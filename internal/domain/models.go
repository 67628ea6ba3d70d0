// Package domain defines the persistence models for the three complaint
// families, job orders, and dashboard users. These types are mapped with
// GORM and form the core data layer of the triage backend.
//
// There are two physical stores. The complaint store holds the three family
// tables plus dashboard users; the job order store holds only the
// denormalized "converted" table. The stores share no transaction scope.
package domain

import (
	"time"
)

// OutageReport is a power interruption complaint (family "outage").
//
// Fields:
//   - ID: auto-increment primary key, unique within this family only.
//   - UserID: conversation or submitter identifier from the intake channel.
//   - JobOrderID: one-way link into the job order store; set at most once.
//   - Priority / Status: persisted at intake, with HIGH/NEW as the storage
//     defaults so legacy rows normalize cleanly at read time.
//   - Hidden: soft-delete marker; hidden rows are kept forever.
//   - IncidentType, AffectedArea, IncidentTime, Duration, Landmark: the
//     structured incident detail block collected by the public web form.
//   - Latitude/Longitude/Accuracy: optional device geolocation.
type OutageReport struct {
	ID            uint      `json:"report_id"      gorm:"primaryKey"`
	UserID        string    `json:"user_id"        gorm:"type:varchar(64);index"`
	FullName      string    `json:"full_name"      gorm:"type:varchar(128);not null"`
	Address       string    `json:"address"        gorm:"type:text;not null"`
	ContactNumber string    `json:"contact_number" gorm:"type:varchar(16);not null"`
	Email         string    `json:"email"          gorm:"type:varchar(128)"`
	AccountNumber string    `json:"account_number" gorm:"type:varchar(16)"`
	JobOrderID    string    `json:"job_order_id"   gorm:"type:varchar(32)"`
	IssueType     string    `json:"issue_type"     gorm:"type:varchar(32);default:'Power Outage'"`
	Details       string    `json:"details"        gorm:"type:text"`
	Landmark      string    `json:"landmark"       gorm:"type:varchar(128)"`
	IncidentType  string    `json:"incident_type"  gorm:"type:varchar(32)"`
	AffectedArea  string    `json:"affected_area"  gorm:"type:varchar(32)"`
	IncidentTime  string    `json:"incident_time"  gorm:"type:varchar(32)"`
	Duration      string    `json:"duration"       gorm:"type:varchar(32)"`
	Priority      string    `json:"priority"       gorm:"type:varchar(16);not null;default:'HIGH';index"`
	Status        string    `json:"status"         gorm:"type:varchar(16);not null;default:'NEW';index"`
	Source        string    `json:"source"         gorm:"type:varchar(32);not null;default:'Chatbot'"`
	Hidden        bool      `json:"hidden"         gorm:"not null;default:false;index"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	Accuracy      *float64  `json:"accuracy,omitempty"`
	CreatedAt     time.Time `json:"created_at"     gorm:"index"`
}

// TableName returns the database table name for OutageReport.
func (OutageReport) TableName() string { return "outage_reports" }

// MeterConcern is a metering or billing complaint (family "meter").
// AccountNo is the consumer account the concern is filed against.
type MeterConcern struct {
	ID            uint      `json:"id"             gorm:"primaryKey"`
	UserID        string    `json:"user_id"        gorm:"type:varchar(64);index"`
	AccountNo     string    `json:"account_no"     gorm:"type:varchar(16);not null"`
	Name          string    `json:"name"           gorm:"type:varchar(128);not null"`
	Address       string    `json:"address"        gorm:"type:text;not null"`
	ContactNumber string    `json:"contact_number" gorm:"type:varchar(16);not null"`
	Concern       string    `json:"concern"        gorm:"type:text;not null"`
	JobOrderID    string    `json:"job_order_id"   gorm:"type:varchar(32)"`
	Priority      string    `json:"priority"       gorm:"type:varchar(16);not null;default:'MEDIUM';index"`
	Status        string    `json:"status"         gorm:"type:varchar(16);not null;default:'NEW';index"`
	Source        string    `json:"source"         gorm:"type:varchar(32);not null;default:'Chatbot'"`
	Hidden        bool      `json:"hidden"         gorm:"not null;default:false;index"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	Accuracy      *float64  `json:"accuracy,omitempty"`
	CreatedAt     time.Time `json:"created_at"     gorm:"index"`
}

// TableName returns the database table name for MeterConcern.
func (MeterConcern) TableName() string { return "meter_concerns" }

// AgentQueueRequest is an escalation to a human agent (family "agent").
// Resumed marks requests whose conversation was handed back to the bot;
// they stay out of the triage view without being hidden.
type AgentQueueRequest struct {
	ID            uint      `json:"id"             gorm:"primaryKey"`
	UserID        string    `json:"user_id"        gorm:"type:varchar(64);index"`
	FullName      string    `json:"full_name"      gorm:"type:varchar(128);not null"`
	Concern       string    `json:"concern"        gorm:"type:text;not null"`
	ContactNumber string    `json:"contact_number" gorm:"type:varchar(16);not null"`
	JobOrderID    string    `json:"job_order_id"   gorm:"type:varchar(32)"`
	Priority      string    `json:"priority"       gorm:"type:varchar(16);not null;default:'LOW';index"`
	Status        string    `json:"status"         gorm:"type:varchar(16);not null;default:'NEW';index"`
	Source        string    `json:"source"         gorm:"type:varchar(32);not null;default:'Chatbot'"`
	Hidden        bool      `json:"hidden"         gorm:"not null;default:false;index"`
	Resumed       bool      `json:"resumed"        gorm:"not null;default:false"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	Accuracy      *float64  `json:"accuracy,omitempty"`
	CreatedAt     time.Time `json:"created_at"     gorm:"index"`
}

// TableName returns the database table name for AgentQueueRequest.
func (AgentQueueRequest) TableName() string { return "agent_queue" }

// JobOrder is the denormalized work-assignment record written to the
// separate job order store. The column set mirrors the crew dispatch sheet
// it feeds and is treated as an opaque payload beyond UniqueID; placeholder
// values ("Select Town", "Pending", ...) are part of the downstream
// system's contract.
type JobOrder struct {
	UniqueID    string `json:"unique_id"   gorm:"column:unique_id;primaryKey"`
	Creator     string `json:"creator"     gorm:"column:creator"`
	Created     string `json:"created"     gorm:"column:created"`
	Follower    string `json:"follower"    gorm:"column:follower"`
	Followed    string `json:"followed"    gorm:"column:followed"`
	Name        string `json:"name"        gorm:"column:name"`
	Spinners    string `json:"spinners"    gorm:"column:spinners"`
	Town0       string `json:"town0"       gorm:"column:town0"`
	Brgy0       string `json:"brgy0"       gorm:"column:brgy0"`
	Town        string `json:"town"        gorm:"column:town"`
	Brgy        string `json:"brgy"        gorm:"column:brgy"`
	Town2       string `json:"town2"       gorm:"column:town2"`
	Brgy2       string `json:"brgy2"       gorm:"column:brgy2"`
	AssignedTo  string `json:"assignedto"  gorm:"column:assignedto"`
	Status      string `json:"status"      gorm:"column:status"`
	Subs        string `json:"subs"        gorm:"column:subs"`
	Feeder      string `json:"feeder"      gorm:"column:feeder"`
	Section     string `json:"section"     gorm:"column:section"`
	Cause       string `json:"cause"       gorm:"column:cause"`
	Equip       string `json:"equip"       gorm:"column:equip"`
	Type        string `json:"type"        gorm:"column:type"`
	Notes       string `json:"notes"       gorm:"column:notes"`
	Landmark    string `json:"landmark"    gorm:"column:landmark"`
	Phone       string `json:"phone"       gorm:"column:phone"`
	Location    string `json:"location"    gorm:"column:location"`
	Latitude    string `json:"latitude"    gorm:"column:latitude"`
	Longitude   string `json:"longitude"   gorm:"column:longitude"`
	ActionTaken string `json:"actiontaken" gorm:"column:actiontaken"`
}

// TableName returns the database table name for JobOrder.
func (JobOrder) TableName() string { return "converted" }

// User is a dashboard operator account. Lockout state lives on the row so
// it survives restarts.
type User struct {
	ID             uint       `json:"id"       gorm:"primaryKey"`
	Username       string     `json:"username" gorm:"type:varchar(64);not null;uniqueIndex"`
	PasswordHash   string     `json:"-"        gorm:"type:varchar(128);not null"`
	Role           string     `json:"role"     gorm:"type:varchar(16);not null;default:'viewer'"`
	FailedAttempts int        `json:"-"        gorm:"not null;default:0"`
	LockedUntil    *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }
