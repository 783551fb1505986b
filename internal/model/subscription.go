package model

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus enumerates subscription request states.
type SubscriptionStatus string

const (
	SubscriptionPending  SubscriptionStatus = "pending"
	SubscriptionApproved SubscriptionStatus = "approved"
	SubscriptionRejected SubscriptionStatus = "rejected"
)

// SubscriptionRequest is a student's request for paid course access, backed by
// an uploaded payment receipt. Approval creates the access grant.
type SubscriptionRequest struct {
	ID          uuid.UUID          `json:"id"`
	UserID      int64              `json:"user_id"`
	UserName    string             `json:"user_name,omitempty"`
	CourseID    uuid.UUID          `json:"course_id"`
	CourseTitle string             `json:"course_title,omitempty"`
	ReceiptPath string             `json:"receipt_path"`
	Status      SubscriptionStatus `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	DecidedAt   *time.Time         `json:"decided_at,omitempty"`
}
