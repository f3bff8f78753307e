// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// UserStatus is the review lifecycle state of an agent registration.
type UserStatus string

// Agent lifecycle states. Only an administrator moves a user out of Pending.
const (
	UserPending  UserStatus = "Pending"
	UserApproved UserStatus = "Approved"
	UserRejected UserStatus = "Rejected"
)

// User is a registered (or registering) agent. Email is unique
// case-insensitively for login purposes. The password is stored only as an
// argon2id hash; the hash is never serialized to clients.
type User struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	BusinessName  string     `json:"businessName,omitempty"`
	State         string     `json:"state,omitempty"`
	PasswordHash  string     `json:"-"`
	PassportURL   string     `json:"passportUrl,omitempty"`
	Status        UserStatus `json:"status"`
	DateRequested int64      `json:"dateRequested"` // epoch millis
}

// CanPublish reports whether the agent may publish listings.
func (u *User) CanPublish() bool {
	return u.Status == UserApproved
}
