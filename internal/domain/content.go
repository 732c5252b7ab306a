package domain

import "time"

type Message struct {
	ID         string    `json:"id"`
	SenderName string    `json:"senderName"`
	Subject    string    `json:"subject"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Project struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	GitRepoLink   string   `json:"gitRepoLink"`
	ProjectLink   string   `json:"projectLink"`
	Technologies  []string `json:"technologies"`
	Stack         []string `json:"stack"`
	Deployed      bool     `json:"deployed"`
	ProjectBanner Asset    `json:"projectBanner"`
}

type Skill struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Proficiency string `json:"proficiency"`
	SVG         Asset  `json:"svg"`
}

type SoftwareApplication struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SVG       Asset     `json:"svg"`
	CreatedAt time.Time `json:"createdAt"`
}

type TimelineEntry struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to"`
	CreatedAt   time.Time  `json:"createdAt"`
}
