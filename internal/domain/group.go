package domain

// GroupView is a read-only picture of one group.
type GroupView struct {
	Name    string   `json:"name"`
	Admin   string   `json:"admin"`
	Members []Member `json:"members"`
}

// Directory is a read-only picture of the coordinator tables.
type Directory struct {
	Online []string    `json:"online"`
	Groups []GroupView `json:"groups"`
}
