package entity

import "time"

// 序列号状态（全生命周期）
const (
	SerialStatusCreated         = "created"
	SerialStatusInWarehouse     = "in_warehouse"
	SerialStatusInTransit       = "in_transit"
	SerialStatusInStore         = "in_store"
	SerialStatusReserved        = "reserved"
	SerialStatusSold            = "sold"
	SerialStatusActivated       = "activated"
	SerialStatusReturnRequested = "return_requested"
	SerialStatusReturnInTransit = "return_in_transit"
	SerialStatusReturnReceived  = "return_received"
	SerialStatusRepairing       = "repairing"
	SerialStatusRepaired        = "repaired"
	SerialStatusRecycling       = "recycling"
	SerialStatusScrapped        = "scrapped"
)

var SerialStatuses = []string{
	SerialStatusCreated,
	SerialStatusInWarehouse,
	SerialStatusInTransit,
	SerialStatusInStore,
	SerialStatusReserved,
	SerialStatusSold,
	SerialStatusActivated,
	SerialStatusReturnRequested,
	SerialStatusReturnInTransit,
	SerialStatusReturnReceived,
	SerialStatusRepairing,
	SerialStatusRepaired,
	SerialStatusRecycling,
	SerialStatusScrapped,
}

// SellableStatuses 可售库存口径：created / in_warehouse / in_store 计入可售
var SellableStatuses = []string{
	SerialStatusCreated,
	SerialStatusInWarehouse,
	SerialStatusInStore,
}

func IsValidSerialStatus(s string) bool {
	for _, v := range SerialStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// StatusChange 状态流转记录（追加式，不可修改）
type StatusChange struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Operator  string    `json:"operator"`
	Note      string    `json:"note"`
}

type StatusHistory []StatusChange

// SerialNumber 单件实物的唯一序列号
type SerialNumber struct {
	ID    string `json:"id" gorm:"primaryKey;size:32"`
	Code  string `json:"code" gorm:"size:120;not null;uniqueIndex"`
	SKUID string `json:"sku_id" gorm:"column:sku_id;size:32;not null;index"`
	Index int    `json:"index" gorm:"column:seq_index;not null"`

	Status        string        `json:"status" gorm:"size:24;not null;default:created;index"`
	StatusNote    string        `json:"status_note,omitempty" gorm:"size:200"`
	StatusHistory StatusHistory `json:"status_history" gorm:"type:jsonb;serializer:json"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SKU *SKU `json:"sku,omitempty" gorm:"foreignKey:SKUID"`
}

func (SerialNumber) TableName() string {
	return "serial_numbers"
}
