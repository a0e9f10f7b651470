package model

// ChatLog is one loaded transcript turn. The five context slots are flat
// columns so the table stays easy to review and correct by hand.
type ChatLog struct {
	Id                 int64  `gorm:"primaryKey;autoIncrement"`
	Timestamp          string `gorm:"type:text"`
	UserQuery          string `gorm:"type:text"`
	ContextText1       string `gorm:"column:context_text_1;type:text"`
	ContextPageNumber1 string `gorm:"column:context_page_number_1;type:text"`
	Resource1          string `gorm:"column:resource_1;type:text"`
	ContextText2       string `gorm:"column:context_text_2;type:text"`
	ContextPageNumber2 string `gorm:"column:context_page_number_2;type:text"`
	Resource2          string `gorm:"column:resource_2;type:text"`
	ContextText3       string `gorm:"column:context_text_3;type:text"`
	ContextPageNumber3 string `gorm:"column:context_page_number_3;type:text"`
	Resource3          string `gorm:"column:resource_3;type:text"`
	ContextText4       string `gorm:"column:context_text_4;type:text"`
	ContextPageNumber4 string `gorm:"column:context_page_number_4;type:text"`
	Resource4          string `gorm:"column:resource_4;type:text"`
	ContextText5       string `gorm:"column:context_text_5;type:text"`
	ContextPageNumber5 string `gorm:"column:context_page_number_5;type:text"`
	Resource5          string `gorm:"column:resource_5;type:text"`
	GeneratedResponse  string `gorm:"type:text"`
	IsDefault          bool   `gorm:"default:true"`
	CorrectedResponse  string `gorm:"type:text;default:''"`
	SessionKey         string `gorm:"type:text;index"`
	BatchId            string `gorm:"type:text;index"`
}

func (ChatLog) TableName() string {
	return "chat_logs"
}
