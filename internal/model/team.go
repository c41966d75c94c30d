package model

type Team struct {
	ID   string `json:"id"`
	Name string `json:"team_name"`
}

// TeamWithMembers is the overview shape: every team with its members,
// ordered by member name. Teams without members keep an empty slice.
type TeamWithMembers struct {
	ID      string        `json:"id"`
	Name    string        `json:"team_name"`
	Members []*TeamMember `json:"members"`
}
