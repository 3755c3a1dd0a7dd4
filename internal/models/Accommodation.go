package models

type GroupType string

const (
	GroupClient GroupType = "client"
	GroupStaff  GroupType = "staff"
)

type RoomType string

const (
	RoomSingle RoomType = "single"
	RoomDouble RoomType = "double"
	RoomTwin   RoomType = "twin"
	RoomTriple RoomType = "triple"
)

func (t RoomType) Valid() bool {
	switch t {
	case RoomSingle, RoomDouble, RoomTwin, RoomTriple:
		return true
	}
	return false
}

// RouteSegmentAccommodation is a hotel booking for one group on one segment.
type RouteSegmentAccommodation struct {
	Base
	SegmentID string    `json:"segment_id" gorm:"type:varchar(36);index;not null"`
	HotelID   string    `json:"hotel_id" gorm:"type:varchar(36);not null"`
	GroupType GroupType `json:"group_type" gorm:"type:varchar(8);not null"`
	Notes     string    `json:"notes"`

	Rooms []Room `json:"rooms" gorm:"-"`
}

type Room struct {
	Base
	AccommodationID string   `json:"accommodation_id" gorm:"type:varchar(36);index;not null"`
	RoomType        RoomType `json:"room_type" gorm:"type:varchar(8);not null"`
	RoomLabel       string   `json:"room_label"`
	IsCouple        bool     `json:"is_couple"`
	Notes           string   `json:"notes"`

	ParticipantIDs []string `json:"participant_ids" gorm:"-"`
}

// RoomOccupant links a route participant to a room.
type RoomOccupant struct {
	RoomID        string `gorm:"type:varchar(36);primaryKey"`
	ParticipantID string `gorm:"type:varchar(36);primaryKey;index"`
}
