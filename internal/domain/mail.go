package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type PlanPublishedMailData struct {
	FullName       string   `json:"fullName"`
	PlacedCount    int      `json:"placedCount"`
	UnplacedCount  int      `json:"unplacedCount"`
	UnplacedTitles []string `json:"unplacedTitles"`
}
