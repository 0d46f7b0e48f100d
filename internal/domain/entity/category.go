package entity

// AllCategoriesID - зарезервированный идентификатор "все категории"
const AllCategoriesID = "0"

// Category представляет категорию вопросов.
// Справочник только для чтения, заполняется снаружи (миграцией или вручную).
type Category struct {
	ID   string `gorm:"primaryKey;size:32" json:"id"`
	Type string `gorm:"column:type;not null" json:"type"`
}

// TableName определяет имя таблицы для GORM
func (Category) TableName() string {
	return "categories"
}

// IsAllCategories сообщает, означает ли идентификатор отсутствие фильтра по категории
func IsAllCategories(categoryID string) bool {
	return categoryID == "" || categoryID == AllCategoriesID
}

// CategoryNames возвращает отображаемые имена категорий в исходном порядке
func CategoryNames(categories []Category) []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Type
	}
	return names
}
