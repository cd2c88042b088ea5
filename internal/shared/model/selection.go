package model

import "time"

// Selection 选课记录（购物车条目）
//
// 归属 StudentEmail，仅本人可读写。加入购物车时创建，
// 结算或显式移除时删除——四个实体中唯一会被硬删除的。
// 课程名/图片/价格为写入时的快照，购物车展示不再回查课程。
type Selection struct {
	ID           string    `json:"id" bson:"_id"`
	StudentEmail string    `json:"studentEmail" bson:"student_email"`
	ClassID      string    `json:"classId" bson:"class_id"`
	ClassName    string    `json:"className" bson:"class_name"`
	Image        string    `json:"image,omitempty" bson:"image,omitempty"`
	Price        float64   `json:"price" bson:"price"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}
