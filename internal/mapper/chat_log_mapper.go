package mapper

import (
	"jyotchat-be/internal/entity"
	"jyotchat-be/internal/model"
	"jyotchat-be/pkg/transcript"
)

type ChatLogMapper struct{}

func NewChatLogMapper() *ChatLogMapper {
	return &ChatLogMapper{}
}

func (m *ChatLogMapper) ToEntity(c *model.ChatLog) *entity.ChatLog {
	if c == nil {
		return nil
	}
	return &entity.ChatLog{
		Id:        c.Id,
		Timestamp: c.Timestamp,
		UserQuery: c.UserQuery,
		Contexts: [entity.ChatLogContextSlots]entity.ChatLogContext{
			{Text: c.ContextText1, PageNumber: c.ContextPageNumber1, Resource: c.Resource1},
			{Text: c.ContextText2, PageNumber: c.ContextPageNumber2, Resource: c.Resource2},
			{Text: c.ContextText3, PageNumber: c.ContextPageNumber3, Resource: c.Resource3},
			{Text: c.ContextText4, PageNumber: c.ContextPageNumber4, Resource: c.Resource4},
			{Text: c.ContextText5, PageNumber: c.ContextPageNumber5, Resource: c.Resource5},
		},
		GeneratedResponse: c.GeneratedResponse,
		IsDefault:         c.IsDefault,
		CorrectedResponse: c.CorrectedResponse,
		SessionKey:        c.SessionKey,
		BatchId:           c.BatchId,
	}
}

func (m *ChatLogMapper) ToModel(c *entity.ChatLog) *model.ChatLog {
	if c == nil {
		return nil
	}
	s := c.Contexts
	return &model.ChatLog{
		Id:                 c.Id,
		Timestamp:          c.Timestamp,
		UserQuery:          c.UserQuery,
		ContextText1:       s[0].Text,
		ContextPageNumber1: s[0].PageNumber,
		Resource1:          s[0].Resource,
		ContextText2:       s[1].Text,
		ContextPageNumber2: s[1].PageNumber,
		Resource2:          s[1].Resource,
		ContextText3:       s[2].Text,
		ContextPageNumber3: s[2].PageNumber,
		Resource3:          s[2].Resource,
		ContextText4:       s[3].Text,
		ContextPageNumber4: s[3].PageNumber,
		Resource4:          s[3].Resource,
		ContextText5:       s[4].Text,
		ContextPageNumber5: s[4].PageNumber,
		Resource5:          s[4].Resource,
		GeneratedResponse:  c.GeneratedResponse,
		IsDefault:          c.IsDefault,
		CorrectedResponse:  c.CorrectedResponse,
		SessionKey:         c.SessionKey,
		BatchId:            c.BatchId,
	}
}

// RecordToEntity turns a parsed transcript record into a row of the given
// session and batch. Missing slots stay empty.
func (m *ChatLogMapper) RecordToEntity(r transcript.Record, sessionKey, batchId string) *entity.ChatLog {
	log := &entity.ChatLog{
		Timestamp:         r.Timestamp,
		UserQuery:         r.Query,
		GeneratedResponse: r.Response,
		IsDefault:         true,
		SessionKey:        sessionKey,
		BatchId:           batchId,
	}
	for i, c := range r.Slots() {
		log.Contexts[i] = entity.ChatLogContext{
			Text:       c.Text,
			PageNumber: c.Page,
			Resource:   c.Resource,
		}
	}
	return log
}
