package entity

// Gadget represents the gadget table. Looked up by Code rather than ID.
type Gadget struct {
	ID    uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Code  string `gorm:"column:code;type:varchar(32);uniqueIndex;not null" json:"code"`
	Label string `gorm:"column:label;type:varchar(255)" json:"label"`
}

func (Gadget) TableName() string {
	return "gadget"
}
