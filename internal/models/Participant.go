package models

type ParticipantRole string

const (
	RoleClient       ParticipantRole = "client"
	RoleGuideCaptain ParticipantRole = "guide-captain"
	RoleGuideTail    ParticipantRole = "guide-tail"
	RoleStaff        ParticipantRole = "staff"
)

// IsClient reports whether the role references a client rather than staff.
func (r ParticipantRole) IsClient() bool { return r == RoleClient }

func (r ParticipantRole) Valid() bool {
	switch r {
	case RoleClient, RoleGuideCaptain, RoleGuideTail, RoleStaff:
		return true
	}
	return false
}

// RouteParticipant is a client or staff member on a route. An empty
// SegmentIDs means the participant is on no specific segment; it never
// means "every segment".
type RouteParticipant struct {
	Base
	RouteID  string          `json:"route_id" gorm:"type:varchar(36);index;not null"`
	Role     ParticipantRole `json:"role" gorm:"type:varchar(16);not null"`
	ClientID *string         `json:"client_id" gorm:"type:varchar(36)"`
	GuideID  *string         `json:"guide_id" gorm:"type:varchar(36)"`
	Notes    string          `json:"notes"`

	SegmentIDs []string `json:"segment_ids" gorm:"-"`
}

type ParticipantSegment struct {
	ParticipantID string `gorm:"type:varchar(36);primaryKey"`
	SegmentID     string `gorm:"type:varchar(36);primaryKey;index"`
}
