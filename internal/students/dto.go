package students

import (
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/hostelhub-backend/pkg/db/models"
	"github.com/hostelhub/hostelhub-backend/pkg/enums"
)

// EmergencyContact is the person reached when the student cannot be.
type EmergencyContact struct {
	Name         string `json:"name" validate:"required,max=120"`
	Relationship string `json:"relationship" validate:"required,max=60"`
	Phone        string `json:"phone" validate:"required,min=7,max=20"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
}

// StudentDTO is the transport shape of a student record.
type StudentDTO struct {
	ID               uuid.UUID              `json:"id"`
	StudentCode      string                 `json:"studentId"`
	Name             string                 `json:"name"`
	Email            string                 `json:"email"`
	Phone            string                 `json:"phone"`
	Department       string                 `json:"department"`
	Year             int                    `json:"year"`
	RoomNumber       string                 `json:"roomNumber"`
	RoomBlock        string                 `json:"roomBlock"`
	AttendanceStatus enums.AttendanceStatus `json:"attendanceStatus"`
	ParentContact    bool                   `json:"parentContact"`
	EmergencyContact *EmergencyContact      `json:"emergencyContact,omitempty"`
	JoinDate         string                 `json:"joinDate"`
	LastActivityAt   *time.Time             `json:"lastActivity,omitempty"`
	CreatedAt        time.Time              `json:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt"`
}

// CreateStudentInput is the payload accepted when registering a student.
type CreateStudentInput struct {
	StudentCode      string            `json:"studentId" validate:"required,max=32"`
	Name             string            `json:"name" validate:"required,max=120"`
	Email            string            `json:"email" validate:"required,email"`
	Phone            string            `json:"phone" validate:"required,min=7,max=20"`
	Department       string            `json:"department" validate:"required,max=80"`
	Year             int               `json:"year" validate:"required,min=1,max=6"`
	RoomNumber       string            `json:"roomNumber" validate:"required,max=16"`
	RoomBlock        string            `json:"roomBlock" validate:"required,max=16"`
	AttendanceStatus string            `json:"attendanceStatus,omitempty"`
	ParentContact    bool              `json:"parentContact"`
	EmergencyContact *EmergencyContact `json:"emergencyContact,omitempty"`
	JoinDate         string            `json:"joinDate,omitempty"`
}

// UpdateStudentInput is a partial update. Nil fields keep their stored
// value; the merged record is validated like a new registration.
type UpdateStudentInput struct {
	StudentCode      *string           `json:"studentId"`
	Name             *string           `json:"name"`
	Email            *string           `json:"email"`
	Phone            *string           `json:"phone"`
	Department       *string           `json:"department"`
	Year             *int              `json:"year"`
	RoomNumber       *string           `json:"roomNumber"`
	RoomBlock        *string           `json:"roomBlock"`
	AttendanceStatus *string           `json:"attendanceStatus"`
	ParentContact    *bool             `json:"parentContact"`
	EmergencyContact *EmergencyContact `json:"emergencyContact"`
	JoinDate         *string           `json:"joinDate"`
}

func (u UpdateStudentInput) empty() bool {
	return u.StudentCode == nil && u.Name == nil && u.Email == nil && u.Phone == nil &&
		u.Department == nil && u.Year == nil && u.RoomNumber == nil && u.RoomBlock == nil &&
		u.AttendanceStatus == nil && u.ParentContact == nil && u.EmergencyContact == nil && u.JoinDate == nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (u UpdateStudentInput) applyTo(in *CreateStudentInput) {
	setIf(&in.StudentCode, u.StudentCode)
	setIf(&in.Name, u.Name)
	setIf(&in.Email, u.Email)
	setIf(&in.Phone, u.Phone)
	setIf(&in.Department, u.Department)
	setIf(&in.Year, u.Year)
	setIf(&in.RoomNumber, u.RoomNumber)
	setIf(&in.RoomBlock, u.RoomBlock)
	setIf(&in.AttendanceStatus, u.AttendanceStatus)
	setIf(&in.ParentContact, u.ParentContact)
	setIf(&in.JoinDate, u.JoinDate)
	if u.EmergencyContact != nil {
		ec := *u.EmergencyContact
		in.EmergencyContact = &ec
	}
}

// ListFilter narrows the directory listing. Empty fields are ignored.
type ListFilter struct {
	Search           string
	Department       string
	Year             int
	RoomBlock        string
	AttendanceStatus *enums.AttendanceStatus
}

const joinDateLayout = "2006-01-02"

// inputFromModel is the registration payload that would recreate m.
func inputFromModel(m *models.Student) CreateStudentInput {
	dto := FromModel(m)
	return CreateStudentInput{
		StudentCode:      dto.StudentCode,
		Name:             dto.Name,
		Email:            dto.Email,
		Phone:            dto.Phone,
		Department:       dto.Department,
		Year:             dto.Year,
		RoomNumber:       dto.RoomNumber,
		RoomBlock:        dto.RoomBlock,
		AttendanceStatus: string(dto.AttendanceStatus),
		ParentContact:    dto.ParentContact,
		EmergencyContact: dto.EmergencyContact,
		JoinDate:         dto.JoinDate,
	}
}

// FromModel maps a persisted student to its DTO.
func FromModel(m *models.Student) *StudentDTO {
	if m == nil {
		return nil
	}
	dto := &StudentDTO{
		ID:               m.ID,
		StudentCode:      m.StudentCode,
		Name:             m.Name,
		Email:            m.Email,
		Phone:            m.Phone,
		Department:       m.Department,
		Year:             m.Year,
		RoomNumber:       m.RoomNumber,
		RoomBlock:        m.RoomBlock,
		AttendanceStatus: m.AttendanceStatus,
		ParentContact:    m.ParentContact,
		JoinDate:         m.JoinDate.UTC().Format(joinDateLayout),
		LastActivityAt:   m.LastActivityAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if m.EmergencyContactName != "" {
		dto.EmergencyContact = &EmergencyContact{
			Name:         m.EmergencyContactName,
			Relationship: m.EmergencyContactRelationship,
			Phone:        m.EmergencyContactPhone,
			Email:        m.EmergencyContactEmail,
		}
	}
	return dto
}
