// Package mapper copies between domain models and transport shapes.
package mapper

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type Mapper struct {
	opt copier.Option
}

func New() *Mapper {
	return &Mapper{
		opt: copier.Option{
			Converters: []copier.TypeConverter{
				{
					SrcType: uuid.UUID{},
					DstType: copier.String,
					Fn: func(src interface{}) (interface{}, error) {
						id, ok := src.(uuid.UUID)
						if !ok {
							return nil, fmt.Errorf("expected uuid.UUID, got %T", src)
						}
						return id.String(), nil
					},
				},
			},
		},
	}
}

// Map copies src into dst field by field. Methods on src named like a dst field fill it
// too, which is how computed values such as TemperatureF reach responses.
func (m *Mapper) Map(dst, src interface{}) error {
	if err := copier.CopyWithOption(dst, src, m.opt); err != nil {
		return fmt.Errorf("map %T to %T: %w", src, dst, err)
	}
	return nil
}

func MapSlice[D any, S any](m *Mapper, src []S) ([]D, error) {
	out := make([]D, len(src))
	for i := range src {
		if err := m.Map(&out[i], src[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
