package entity

const ChatLogContextSlots = 5

type ChatLogContext struct {
	Text       string
	PageNumber string
	Resource   string
}

type ChatLog struct {
	Id                int64
	Timestamp         string
	UserQuery         string
	Contexts          [ChatLogContextSlots]ChatLogContext
	GeneratedResponse string
	IsDefault         bool
	CorrectedResponse string
	SessionKey        string
	BatchId           string
}
