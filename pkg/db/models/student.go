package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/hostelhub-backend/pkg/enums"
)

// Student is a hostel resident.
type Student struct {
	ID               uuid.UUID              `gorm:"type:uuid;primaryKey"`
	StudentCode      string                 `gorm:"column:student_code;not null;uniqueIndex"`
	Name             string                 `gorm:"column:name;not null"`
	Email            string                 `gorm:"column:email;not null;uniqueIndex"`
	Phone            string                 `gorm:"column:phone;not null"`
	Department       string                 `gorm:"column:department;not null"`
	Year             int                    `gorm:"column:year;not null"`
	RoomNumber       string                 `gorm:"column:room_number;not null"`
	RoomBlock        string                 `gorm:"column:room_block;not null"`
	AttendanceStatus enums.AttendanceStatus `gorm:"column:attendance_status;type:text;not null"`
	ParentContact    bool                   `gorm:"column:parent_contact;not null;default:false"`

	EmergencyContactName         string `gorm:"column:emergency_contact_name"`
	EmergencyContactRelationship string `gorm:"column:emergency_contact_relationship"`
	EmergencyContactPhone        string `gorm:"column:emergency_contact_phone"`
	EmergencyContactEmail        string `gorm:"column:emergency_contact_email"`

	JoinDate       time.Time  `gorm:"column:join_date;not null"`
	LastActivityAt *time.Time `gorm:"column:last_activity_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// HasEmergencyContact reports whether a parent or guardian can be reached.
func (s *Student) HasEmergencyContact() bool {
	return s.EmergencyContactName != "" || s.EmergencyContactPhone != ""
}
