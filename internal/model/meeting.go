package model

import (
	"database/sql/driver"
	"time"
)

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "HADIR"
	AttendanceExcused AttendanceStatus = "IZIN"
	AttendanceAbsent  AttendanceStatus = "ALPHA"
)

type MeetingAttendance struct {
	Name   string           `json:"name" validate:"notblank"`
	Status AttendanceStatus `json:"status" validate:"oneof=HADIR IZIN ALPHA"`
}

type MeetingAttendances []MeetingAttendance

func (a MeetingAttendances) Value() (driver.Value, error) {
	return jsonValue(a, a == nil)
}

func (a *MeetingAttendances) Scan(value any) error {
	return scanJSON(value, a)
}

// Meeting minutes
type Meeting struct {
	ID         string             `gorm:"type:varchar(32);primaryKey" json:"id"`
	Title      string             `gorm:"type:varchar(255);not null" json:"title" validate:"notblank"`
	Location   string             `gorm:"type:varchar(255)" json:"location" validate:"notblank"`
	StartAt    time.Time          `gorm:"not null;index" json:"startAt" validate:"time_set"`
	EndAt      *time.Time         `json:"endAt,omitempty"`
	Activities string             `gorm:"type:text" json:"activities,omitempty"`
	Attendance MeetingAttendances `gorm:"type:text" json:"attendance" validate:"min=1,dive"`
	Notes      string             `gorm:"type:text" json:"notes,omitempty"`
	Timestamps
}

type MeetingPatch struct {
	Title      *string             `json:"title,omitempty"`
	Location   *string             `json:"location,omitempty"`
	StartAt    *time.Time          `json:"startAt,omitempty"`
	EndAt      *time.Time          `json:"endAt,omitempty"`
	Activities *string             `json:"activities,omitempty"`
	Attendance *MeetingAttendances `json:"attendance,omitempty"`
	Notes      *string             `json:"notes,omitempty"`
}
