package model

// DefaultPriority is applied when a payload carries no priority
const DefaultPriority = "Low"

// Task represents a single to-do item
type Task struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Title       string  `gorm:"not null" json:"title"`
	Description *string `gorm:"type:text" json:"description"`
	Priority    string  `gorm:"not null" json:"priority"`
	DueDate     *string `gorm:"type:text" json:"due_date"`
	Completed   bool    `gorm:"not null;index" json:"completed"`
}

// TableName specifies the table name for Task
func (Task) TableName() string {
	return "tasks"
}
