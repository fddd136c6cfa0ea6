package repository

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"audio-vectorize/internal/model"
)

var uuidType = reflect.TypeOf(uuid.UUID{})

// uuidColumnType is a native uuid on postgres and the 36-char text form elsewhere.
func uuidColumnType(dialect string) schema.DataType {
	if dialect == "postgres" {
		return "uuid"
	}
	return "char(36)"
}

// useUUIDColumns rewrites the cached schema of each model so uuid.UUID fields
// migrate to uuidColumnType instead of a byte column.
func useUUIDColumns(db *gorm.DB, models ...interface{}) error {
	dataType := uuidColumnType(db.Dialector.Name())
	for _, m := range models {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return fmt.Errorf("parse %T failed: %w", m, err)
		}
		for _, field := range stmt.Schema.Fields {
			if field.FieldType == uuidType {
				field.DataType = dataType
			}
		}
	}
	return nil
}

// Migrate creates or updates the relational tables.
func Migrate(db *gorm.DB) error {
	models := []interface{}{&model.User{}, &model.Database{}, &model.Collection{}, &model.File{}}
	if err := useUUIDColumns(db, models...); err != nil {
		return err
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return nil
}
