package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between account roles
type Role string

const (
	RoleTrainer Role = "trainer"
	RoleMember  Role = "member"
)

// Account represents a login identity in the system. Trainers and members
// share one login-id namespace; role-specific data for members lives in
// MemberProfile, keyed by the account id.
type Account struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LoginID      string             `bson:"loginId" json:"loginId"` // Unique across all accounts
	PasswordHash string             `bson:"passwordHash" json:"-"`  // Never expose this via JSON
	Name         string             `bson:"name" json:"name"`
	Role         Role               `bson:"role" json:"role"`
	IsActive     bool               `bson:"isActive" json:"isActive"` // Inactive accounts cannot log in
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (a *Account) IsTrainer() bool {
	return a.Role == RoleTrainer
}

func (a *Account) IsMember() bool {
	return a.Role == RoleMember
}
