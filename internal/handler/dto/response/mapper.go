package response

import (
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

var copyOptions = copier.Option{
	Converters: []copier.TypeConverter{
		{
			SrcType: uuid.UUID{},
			DstType: copier.String,
			Fn: func(src any) (any, error) {
				return src.(uuid.UUID).String(), nil
			},
		},
	},
}

func mapInto(dst, src any) error {
	return copier.CopyWithOption(dst, src, copyOptions)
}
