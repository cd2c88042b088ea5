package model

import "time"

// EnrolledClass 购买记录
//
// 归属 StudentEmail，仅本人可读。每次成功购买恰好写入一条，
// 之后不可变更（append-only）。Date 为购买时间，列表按其倒序。
type EnrolledClass struct {
	ID           string    `json:"id" bson:"_id"`
	StudentEmail string    `json:"studentEmail" bson:"student_email"`
	ClassID      string    `json:"classId" bson:"class_id"`
	ClassName    string    `json:"className" bson:"class_name"`
	Image        string    `json:"image,omitempty" bson:"image,omitempty"`
	Price        float64   `json:"price" bson:"price"`
	Date         time.Time `json:"date" bson:"date"`
}
