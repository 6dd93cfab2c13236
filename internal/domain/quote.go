package domain

type Quote struct {
	ID       int64   `db:"id" json:"id"`
	Text     string  `db:"text" json:"text"`
	Source   string  `db:"source" json:"source"`
	Chapter  *string `db:"chapter" json:"chapter"`
	Verse    *string `db:"verse" json:"verse"`
	IsActive bool    `db:"is_active" json:"isActive"`
}
