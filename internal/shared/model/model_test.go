package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRole_Valid(t *testing.T) {
	tests := []struct {
		role UserRole
		want bool
	}{
		{UserRoleStudent, true},
		{UserRoleInstructor, true},
		{UserRoleAdmin, true},
		{UserRole(""), false},
		{UserRole("superuser"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.role.Valid(), "role %q", tt.role)
	}
}

func TestClassStatus_Valid(t *testing.T) {
	assert.True(t, ClassStatusPending.Valid())
	assert.True(t, ClassStatusApproved.Valid())
	assert.True(t, ClassStatusDenied.Valid())
	assert.False(t, ClassStatus("rejected").Valid())
	assert.False(t, ClassStatus("").Valid())
}

// TestClass_JSONFieldNames 前端依赖的字段名（camelCase）不能被改动
func TestClass_JSONFieldNames(t *testing.T) {
	c := Class{
		ID:              "cls-000000000001",
		Name:            "Jazz Piano",
		InstructorName:  "Ann",
		InstructorEmail: "ann@example.com",
		AvailableSeats:  12,
		Price:           19.99,
		Status:          ClassStatusPending,
		EnrolledCount:   3,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))

	for _, key := range []string{"instructorEmail", "instructorName", "availableSeats", "enrolledCount", "status", "price"} {
		assert.Contains(t, m, key)
	}
	assert.Equal(t, "pending", m["status"])
}

// TestSelection_Snapshot 购物车条目保留写入时的课程快照
func TestSelection_Snapshot(t *testing.T) {
	sel := Selection{
		ID:           "sel-000000000001",
		StudentEmail: "stu@example.com",
		ClassID:      "cls-000000000001",
		ClassName:    "Jazz Piano",
		Price:        19.99,
		CreatedAt:    time.Now(),
	}

	data, err := json.Marshal(sel)
	require.NoError(t, err)

	var got Selection
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, sel.StudentEmail, got.StudentEmail)
	assert.Equal(t, sel.ClassID, got.ClassID)
	assert.Equal(t, sel.Price, got.Price)
}
