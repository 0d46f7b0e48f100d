package entity

// Question представляет вопрос в банке вопросов
type Question struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Question string `gorm:"column:question;not null" json:"question"`
	Answer   string `gorm:"column:answer;not null" json:"answer"`
	// Category хранится строкой (varchar), как и в существующей схеме.
	// Сравнивается только как строка, числовой порядок не предполагается.
	Category   string `gorm:"column:category;size:32;not null;index" json:"category"`
	Difficulty int    `gorm:"column:difficulty;not null;check:difficulty > 0" json:"difficulty"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}
