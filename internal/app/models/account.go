package models

import (
	"strings"
	"time"
)

// Profile is the view shape of a user_profile row joined with its role.
type Profile struct {
	ProfileID   int64       `json:"profile_id"`
	UserID      int64       `json:"user_id"`
	FirstName   string      `json:"firstname"`
	LastName    string      `json:"lastname"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	Address     string      `json:"address"`
	Role        Role        `json:"role"`
	DateCreated time.Time   `json:"date_created"`
	DateUpdated time.Time   `json:"date_updated"`
	Preferences Preferences `json:"preferences"`
}

// FullName joins first and last name.
func (p Profile) FullName() string {
	return joinName(p.FirstName, p.LastName)
}

// Initials returns up to two upper-case letters for the avatar.
func (p Profile) Initials() string {
	out := ""
	for _, s := range []string{p.FirstName, p.LastName} {
		for _, r := range s {
			out += string(r)
			break
		}
	}
	return strings.ToUpper(out)
}

// ProfileUpdate carries the editable profile fields submitted by the form.
type ProfileUpdate struct {
	FirstName string `form:"firstname" json:"firstname" binding:"required,max=100"`
	LastName  string `form:"lastname" json:"lastname" binding:"required,max=100"`
	Email     string `form:"email" json:"email" binding:"account_email"`
	Phone     string `form:"phone" json:"phone" binding:"account_phone"`
	Address   string `form:"address" json:"address" binding:"max=255"`
}

// Preferences are the contact preferences stored as jsonb on the profile.
type Preferences struct {
	EmailNotifications     bool `json:"emailNotifications" form:"emailNotifications"`
	SMSNotifications       bool `json:"smsNotifications" form:"smsNotifications"`
	MailNotifications      bool `json:"mailNotifications" form:"mailNotifications"`
	MarketingEmails        bool `json:"marketingEmails" form:"marketingEmails"`
	EventReminders         bool `json:"eventReminders" form:"eventReminders"`
	NewsletterSubscription bool `json:"newsletterSubscription" form:"newsletterSubscription"`
}

// DefaultPreferences is used when a profile has no stored preferences.
func DefaultPreferences() Preferences {
	return Preferences{
		EmailNotifications:     true,
		SMSNotifications:       false,
		MailNotifications:      false,
		MarketingEmails:        true,
		EventReminders:         true,
		NewsletterSubscription: true,
	}
}

// UserSummary is one entry of the user lists.
type UserSummary struct {
	UserID    int64  `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `json:"role"`
}

func (u UserSummary) Name() string {
	return joinName(u.FirstName, u.LastName)
}

// UserRef is an entry of the full user list. UserID is the account id every
// selection and query keys on; ProfileID only identifies the profile row.
type UserRef struct {
	ProfileID int64  `json:"profile_id"`
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
}

// Activity is one row of the activity log.
type Activity struct {
	ActivityID  int64     `json:"activity_id"`
	UserID      int64     `json:"user_id"`
	Type        string    `json:"activity_type"`
	Description string    `json:"activity_description"`
	Date        time.Time `json:"activity_date"`
	UserName    string    `json:"userName"`
}

// HistoryEntry is one row of the purchase and interaction history.
type HistoryEntry struct {
	HistoryID    int64     `json:"history_id"`
	UserID       int64     `json:"user_id"`
	Type         string    `json:"activity_type"`
	Description  string    `json:"activity_description"`
	Date         time.Time `json:"activity_date"`
	PurchaseCost float64   `json:"purchase_cost"`
}

// Ticket is a support ticket with the submitter's display name.
type Ticket struct {
	TicketID  int64     `json:"ticket_id"`
	UserID    int64     `json:"user_id"`
	Subject   string    `json:"subject"`
	Status    string    `json:"status"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
	UserName  string    `json:"userName"`
}

// RewardEntry is one earn or redeem event.
type RewardEntry struct {
	RewardID       int64     `json:"reward_id"`
	UserID         int64     `json:"user_id"`
	Description    string    `json:"reward_description"`
	PointsEarned   int64     `json:"points_earned"`
	PointsRedeemed int64     `json:"points_redeemed"`
	CreatedAt      time.Time `json:"created_at"`
}

// IsEarned reports whether the entry added points.
func (r RewardEntry) IsEarned() bool {
	return r.PointsEarned > 0
}

// RewardTierSize is the number of points per rewards tier.
const RewardTierSize = 1000

// RewardsSummary is the rewards history plus its running totals.
type RewardsSummary struct {
	History             []RewardEntry `json:"history"`
	TotalPointsEarned   int64         `json:"totalPointsEarned"`
	TotalPointsRedeemed int64         `json:"totalPointsRedeemed"`
	TotalPoints         int64         `json:"totalPoints"`
}

// TierProgress is the percentage toward the next tier, capped to [0, 100].
func (s RewardsSummary) TierProgress() float64 {
	p := float64(s.TotalPoints) / RewardTierSize * 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}
