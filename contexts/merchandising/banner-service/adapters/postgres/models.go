package postgresadapter

import (
	"time"

	"vitrine/contexts/merchandising/banner-service/domain/entities"
)

type recordModel struct {
	Slot          string    `gorm:"column:slot;primaryKey"`
	ImageRef      string    `gorm:"column:image_ref"`
	MIMEType      string    `gorm:"column:mime_type"`
	NaturalWidth  int       `gorm:"column:natural_width"`
	NaturalHeight int       `gorm:"column:natural_height"`
	GeometryMode  string    `gorm:"column:geometry_mode"`
	Scale         float64   `gorm:"column:scale"`
	TranslateX    float64   `gorm:"column:translate_x"`
	TranslateY    float64   `gorm:"column:translate_y"`
	CropX         float64   `gorm:"column:crop_x"`
	CropY         float64   `gorm:"column:crop_y"`
	CropWidth     float64   `gorm:"column:crop_width"`
	CropHeight    float64   `gorm:"column:crop_height"`
	Rotation      float64   `gorm:"column:rotation"`
	Version       int64     `gorm:"column:version"`
	Published     bool      `gorm:"column:published"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (recordModel) TableName() string { return "banner_records" }

type outboxModel struct {
	ID        string     `gorm:"column:id;primaryKey"`
	EventType string     `gorm:"column:event_type"`
	Payload   string     `gorm:"column:payload"`
	Status    string     `gorm:"column:status"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	SentAt    *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string { return "banner_outbox" }

func recordModelFromEntity(record entities.Record) recordModel {
	return recordModel{
		Slot:          string(record.Slot),
		ImageRef:      record.ImageRef,
		MIMEType:      record.MIMEType,
		NaturalWidth:  record.NaturalWidth,
		NaturalHeight: record.NaturalHeight,
		GeometryMode:  string(record.Geometry.Mode),
		Scale:         record.Geometry.Scale,
		TranslateX:    record.Geometry.TranslateX,
		TranslateY:    record.Geometry.TranslateY,
		CropX:         record.Geometry.CropX,
		CropY:         record.Geometry.CropY,
		CropWidth:     record.Geometry.CropWidth,
		CropHeight:    record.Geometry.CropHeight,
		Rotation:      record.Geometry.Rotation,
		Version:       record.Version,
		Published:     record.Published,
		UpdatedAt:     record.UpdatedAt.UTC(),
	}
}

func (m recordModel) toEntity() entities.Record {
	return entities.Record{
		Slot:          entities.Slot(m.Slot),
		ImageRef:      m.ImageRef,
		MIMEType:      m.MIMEType,
		NaturalWidth:  m.NaturalWidth,
		NaturalHeight: m.NaturalHeight,
		Geometry: entities.Geometry{
			Mode:       entities.GeometryMode(m.GeometryMode),
			Scale:      m.Scale,
			TranslateX: m.TranslateX,
			TranslateY: m.TranslateY,
			CropX:      m.CropX,
			CropY:      m.CropY,
			CropWidth:  m.CropWidth,
			CropHeight: m.CropHeight,
			Rotation:   m.Rotation,
		},
		Version:   m.Version,
		Published: m.Published,
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}
