package model

import "time"

// ClassStatus 课程审核状态
type ClassStatus string

const (
	ClassStatusPending  ClassStatus = "pending"
	ClassStatusApproved ClassStatus = "approved"
	ClassStatusDenied   ClassStatus = "denied"
)

// Valid 状态是否合法
func (s ClassStatus) Valid() bool {
	switch s {
	case ClassStatusPending, ClassStatusApproved, ClassStatusDenied:
		return true
	}
	return false
}

// Class 课程
//
// 讲师创建后默认 pending，由管理员审核为 approved 或 denied
// （denied 时附带 Feedback）。只有 approved 的课程进入公开目录。
// EnrolledCount 在每次购买成功后递增，驱动热门课程排序。
type Class struct {
	ID              string      `json:"id" bson:"_id"`
	Name            string      `json:"name" bson:"name"`
	Image           string      `json:"image,omitempty" bson:"image,omitempty"`
	InstructorName  string      `json:"instructorName" bson:"instructor_name"`
	InstructorEmail string      `json:"instructorEmail" bson:"instructor_email"`
	AvailableSeats  int         `json:"availableSeats" bson:"available_seats"`
	Price           float64     `json:"price" bson:"price"`
	Status          ClassStatus `json:"status" bson:"status"`
	Feedback        string      `json:"feedback,omitempty" bson:"feedback,omitempty"`
	EnrolledCount   int         `json:"enrolledCount" bson:"enrolled_count"`
	CreatedAt       time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" bson:"updated_at"`
}
