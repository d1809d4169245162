package codec

import (
	"encoding/json"

	"github.com/stardustagi/TopRelay/utils"
)

type ICodec[T any] interface {
	// Decode 解码
	Decode(data []byte) (*T, error)
	// Encode 编码
	Encode(v *T) ([]byte, error)
}

type JsonCodec[T any] struct {
}

func NewJsonCodec[T any]() ICodec[T] {
	return &JsonCodec[T]{}
}

func (c *JsonCodec[T]) Decode(data []byte) (*T, error) {
	v, err := utils.Bytes2Struct[T](data)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *JsonCodec[T]) Encode(v *T) ([]byte, error) {
	return json.Marshal(v)
}
