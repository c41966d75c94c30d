package model

type TeamMember struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	TeamID        string `json:"team_id"`
	WeeklyTarget  int    `json:"weekly_target"`
	MonthlyTarget int    `json:"monthly_target"`
}

// MemberPatch carries a partial update; nil fields are left untouched.
type MemberPatch struct {
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	TeamID        *string `json:"team_id"`
	WeeklyTarget  *int    `json:"weekly_target"`
	MonthlyTarget *int    `json:"monthly_target"`
}

// ReassignResult distinguishes an actual move from the "already in this
// team" case, which is a success variant rather than an error.
type ReassignResult struct {
	Member  *TeamMember `json:"member"`
	Changed bool        `json:"changed"`
}
