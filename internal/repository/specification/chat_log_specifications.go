package specification

import "gorm.io/gorm"

type BySessionKey struct {
	SessionKey string
}

func (s BySessionKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_key = ?", s.SessionKey)
}

// ByBatchID matches the rows loaded from one claimed transcript batch.
type ByBatchID struct {
	BatchID string
}

func (s ByBatchID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("batch_id = ?", s.BatchID)
}
