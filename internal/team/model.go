package team

import (
	"time"

	"zignasa/internal/track"

	"github.com/uptrace/bun"
)

type PaymentStatus string

const (
	StatusPending   PaymentStatus = "Pending"
	StatusInitiated PaymentStatus = "Initiated"
	StatusCompleted PaymentStatus = "Completed"
	StatusFailed    PaymentStatus = "Failed"
	StatusRefunded  PaymentStatus = "Refunded"
)

type Role string

const (
	RoleLead   Role = "Team Lead"
	RoleMember Role = "Member"
)

// RoleFor returns the role of the member at position i of a submission.
func RoleFor(i int) Role {
	if i == 0 {
		return RoleLead
	}
	return RoleMember
}

type Team struct {
	bun.BaseModel `bun:"table:teams,alias:t"`

	ID                 int64         `bun:"id,pk,autoincrement" json:"id"`
	TeamName           string        `bun:"team_name,notnull" json:"teamName"`
	Domain             track.Track   `bun:"domain,notnull" json:"domain"`
	PaymentStatus      PaymentStatus `bun:"payment_status,notnull" json:"paymentStatus"`
	TeamSize           int           `bun:"team_size,notnull" json:"teamSize"`
	RazorpayOrderID    *string       `bun:"razorpay_order_id" json:"razorpayOrderId,omitempty"`
	RazorpayPaymentID  *string       `bun:"razorpay_payment_id" json:"razorpayPaymentId,omitempty"`
	AmountInPaise      *int64        `bun:"amount_in_paise" json:"amountInPaise,omitempty"`
	PaymentInitiatedAt *time.Time    `bun:"payment_initiated_at" json:"paymentInitiatedAt,omitempty"`
	PaymentVerifiedAt  *time.Time    `bun:"payment_verified_at" json:"paymentVerifiedAt,omitempty"`
	CreatedAt          time.Time     `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt          time.Time     `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// Registration is one team member.
type Registration struct {
	bun.BaseModel `bun:"table:registrations,alias:r"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	TeamID     int64     `bun:"team_id,notnull" json:"teamId"`
	Name       string    `bun:"name,notnull" json:"name"`
	Email      string    `bun:"email,notnull" json:"email"`
	Phone      string    `bun:"phone,notnull" json:"phone"`
	College    string    `bun:"college,notnull" json:"college"`
	RollNumber string    `bun:"roll_number,notnull" json:"rollNumber"`
	Role       Role      `bun:"role,notnull" json:"role"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

// Models lists the tables owned by this package, parents first.
func Models() []interface{} {
	return []interface{}{(*Team)(nil), (*Registration)(nil)}
}

// MigrationStatements adds the constraints bun's CREATE TABLE cannot express.
// Team names are unique case-insensitively among teams that have not failed,
// so a compensated (Failed) submission frees its name. A payment id completes
// at most one team.
func MigrationStatements() []string {
	return []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS teams_team_name_active_key
			ON teams (lower(team_name)) WHERE payment_status <> 'Failed'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS teams_razorpay_payment_id_key
			ON teams (razorpay_payment_id) WHERE razorpay_payment_id IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS registrations_team_id_idx ON registrations (team_id)`,
		`DO $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'registrations_team_id_fkey') THEN
				ALTER TABLE registrations
					ADD CONSTRAINT registrations_team_id_fkey FOREIGN KEY (team_id) REFERENCES teams (id);
			END IF;
		END $$`,
	}
}
