package domain

import "time"

// CareLink associates a caregiver with an elderly account. Links are
// established by redeeming a linking PIN issued by the elderly user.
type CareLink struct {
	ID          string
	CaregiverID string
	ElderlyID   string
	CreatedAt   time.Time
}
