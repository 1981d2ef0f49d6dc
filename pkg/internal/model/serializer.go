package model

import (
	"context"
	"fmt"
	"reflect"

	"github.com/bytedance/sonic"
	"gorm.io/gorm/schema"
)

// SonicSerializer 使用 sonic 在文本列中存取 JSON，字段标签写作 serializer:sonic.
type SonicSerializer struct{}

func init() {
	schema.RegisterSerializer("sonic", SonicSerializer{})
}

// Scan 实现 schema.SerializerInterface.
func (SonicSerializer) Scan(ctx context.Context, field *schema.Field, dst reflect.Value, dbValue any) error {
	fieldValue := reflect.New(field.FieldType)

	if dbValue != nil {
		var bytes []byte

		switch v := dbValue.(type) {
		case []byte:
			bytes = v
		case string:
			bytes = []byte(v)
		default:
			return fmt.Errorf("failed to unmarshal JSONB value: %#v", dbValue)
		}

		if len(bytes) > 0 {
			if err := sonic.Unmarshal(bytes, fieldValue.Interface()); err != nil {
				return err
			}
		}
	}

	field.ReflectValueOf(ctx, dst).Set(fieldValue.Elem())

	return nil
}

// Value 实现 schema.SerializerInterface.
func (SonicSerializer) Value(_ context.Context, _ *schema.Field, _ reflect.Value, fieldValue any) (any, error) {
	b, err := sonic.Marshal(fieldValue)
	if err != nil {
		return nil, err
	}

	return string(b), nil
}
