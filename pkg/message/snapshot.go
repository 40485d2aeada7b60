package message

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"quoteboard/pkg/dashboard"
	"quoteboard/pkg/quote"

	"github.com/google/uuid"
)

// 错误定义
var (
	ErrInvalidChecksum = errors.New("消息校验和不匹配")
	ErrInvalidFormat   = errors.New("消息格式无效")
)

// DataTypeSnapshot 看板快照消息类型
const DataTypeSnapshot = "quote_snapshot"

// MessageHeader 消息头部信息
type MessageHeader struct {
	MessageID   string `json:"messageId"`
	Timestamp   int64  `json:"timestamp"`
	Version     string `json:"version"`
	Producer    string `json:"producer"`
	ContentType string `json:"contentType"`
}

// MessageMetadata 消息元数据
type MessageMetadata struct {
	Provider       string `json:"provider"`
	DataType       string `json:"dataType"`
	BatchSize      int    `json:"batchSize"`
	TradingSession string `json:"tradingSession,omitempty"`
}

// SnapshotPayload 一轮刷新的行情
type SnapshotPayload struct {
	Cycle     int64          `json:"cycle"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Indices   []quote.Record `json:"indices"`
	Watchlist []quote.Record `json:"watchlist"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// MessageFormat 标准消息格式
type MessageFormat struct {
	Header   MessageHeader   `json:"header"`
	Metadata MessageMetadata `json:"metadata"`
	Payload  SnapshotPayload `json:"payload"`
	Checksum string          `json:"checksum"`
}

// NewSnapshotMessage 把看板快照封装为消息
func NewSnapshotMessage(producer, provider string, snap dashboard.Snapshot) *MessageFormat {
	msg := &MessageFormat{
		Header: MessageHeader{
			MessageID:   uuid.New().String(),
			Timestamp:   time.Now().Unix(),
			Version:     "1.0",
			Producer:    producer,
			ContentType: "application/json",
		},
		Metadata: MessageMetadata{
			Provider:       provider,
			DataType:       DataTypeSnapshot,
			BatchSize:      len(snap.Indices) + len(snap.Watch),
			TradingSession: string(snap.Session),
		},
		Payload: SnapshotPayload{
			Cycle:     snap.Cycle,
			UpdatedAt: snap.UpdatedAt,
			Indices:   snap.Indices,
			Watchlist: snap.Watch,
			Warnings:  snap.Warnings,
		},
	}
	msg.Checksum = msg.calculateChecksum()
	return msg
}

// calculateChecksum 计算除 checksum 外的内容摘要
func (m *MessageFormat) calculateChecksum() string {
	temp := MessageFormat{
		Header:   m.Header,
		Metadata: m.Metadata,
		Payload:  m.Payload,
	}

	data, err := json.Marshal(temp)
	if err != nil {
		return ""
	}

	hash := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(hash[:])
}

// Validate 验证消息完整性
func (m *MessageFormat) Validate() error {
	if m.Header.MessageID == "" || m.Metadata.DataType == "" {
		return ErrInvalidFormat
	}
	if m.Checksum != m.calculateChecksum() {
		return ErrInvalidChecksum
	}
	return nil
}

// ToJSON 将消息转换为 JSON 字符串
func (m *MessageFormat) ToJSON() (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FromJSON 从 JSON 字符串解析消息
func FromJSON(jsonStr string) (*MessageFormat, error) {
	var msg MessageFormat
	if err := json.Unmarshal([]byte(jsonStr), &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetStreamName 根据数据类型获取 Redis Stream 名称
func GetStreamName(dataType string) string {
	switch dataType {
	case DataTypeSnapshot:
		return "stream:quote:snapshot"
	default:
		return "stream:unknown"
	}
}
