package main

// --- Categories ---

type Category struct {
	ID   int    `gorm:"primaryKey" json:"id"`
	Type string `gorm:"not null" json:"type"`
}

// --- Questions ---

type Question struct {
	ID         int    `gorm:"primaryKey" json:"id"`
	Question   string `gorm:"not null" json:"question"`
	Answer     string `gorm:"not null" json:"answer"`
	Category   int    `gorm:"index;not null" json:"category"` // references categories.id, not enforced
	Difficulty int    `gorm:"not null" json:"difficulty"`
}
