package record

import "time"

// TableName is the name of the single table backing the service.
const TableName = "keyvalue_store"

// Record is the only entity persisted by the service.
// A Record is created by the first store of its Key and mutated in place
// (Value and UpdatedAt) by every later store of the same Key.
type Record struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Key       string    `gorm:"column:key_name;size:255;uniqueIndex;not null" json:"key_name"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the gorm table name.
func (Record) TableName() string {
	return TableName
}

// StoreRequest is the body accepted by the store endpoint.
// Pointers distinguish a missing field from an empty one.
type StoreRequest struct {
	Key   *string `json:"key"`
	Value *string `json:"value"`
}

// Valid reports whether both Key and Value are present and non-empty.
func (r StoreRequest) Valid() bool {
	return r.Key != nil && *r.Key != "" && r.Value != nil && *r.Value != ""
}

// New returns a Record for key and value stamped with now.
func New(key, value string, now time.Time) *Record {
	return &Record{
		Key:       key,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Less orders records newest first, falling back to ID so ties stay stable.
func Less(a, b *Record) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

