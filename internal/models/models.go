// Package models holds the domain types shared across the service.
package models

import "time"

// Roles assigned to identities. A request without a valid session is a visitor.
const (
	RoleVisitor    = "visitor"
	RoleUser       = "user"
	RoleSuperadmin = "superadmin"
)

// Identity is the resolved caller of a request, immutable for its duration.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"userRole"`
}

// Visitor is the identity used when no session is present.
func Visitor() Identity {
	return Identity{Role: RoleVisitor}
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type Chat struct {
	ID        int64  `json:"id"`
	CreatedBy int64  `json:"createdBy"`
	Subject   string `json:"subject"`
}

// ChatSummary is a chat row decorated with activity timestamps for listings.
type ChatSummary struct {
	Chat
	LastMessageAt    *time.Time `json:"lastMessageTimestamp"`
	OwnLastMessageAt *time.Time `json:"userLatestMessageTimestamp"`
}

// ChatMember is a member as shown to other members of the same chat.
type ChatMember struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Banned   bool   `json:"banned"`
}

type Message struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chatId"`
	FromID    int64     `json:"fromId"`
	From      string    `json:"from,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
