package milvus

import (
	"fmt"
	"strings"

	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
)

// IndexType 向量索引类型
type IndexType string

const (
	IndexTypeAuto    IndexType = "AUTOINDEX"
	IndexTypeFlat    IndexType = "FLAT"
	IndexTypeIVFFlat IndexType = "IVF_FLAT"
	IndexTypeHNSW    IndexType = "HNSW"
)

// MetricType 向量距离度量
type MetricType string

const (
	MetricTypeL2     MetricType = "L2"
	MetricTypeIP     MetricType = "IP"
	MetricTypeCosine MetricType = "COSINE"
)

// ParseIndexType 解析配置中的索引类型，空值为 AUTOINDEX
func ParseIndexType(s string) (IndexType, error) {
	switch t := IndexType(strings.ToUpper(strings.TrimSpace(s))); t {
	case "":
		return IndexTypeAuto, nil
	case IndexTypeAuto, IndexTypeFlat, IndexTypeIVFFlat, IndexTypeHNSW:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidIndexType, s)
	}
}

// NewIndex 构建索引参数，IVF/HNSW 使用常用默认参数
func NewIndex(indexType IndexType, metric MetricType) (index.Index, error) {
	mt := toEntityMetricType(metric)
	switch indexType {
	case IndexTypeAuto, "":
		return index.NewAutoIndex(mt), nil
	case IndexTypeFlat:
		return index.NewFlatIndex(mt), nil
	case IndexTypeIVFFlat:
		return index.NewIvfFlatIndex(mt, 128), nil
	case IndexTypeHNSW:
		return index.NewHNSWIndex(mt, 16, 200), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidIndexType, indexType)
	}
}

func toEntityMetricType(mt MetricType) entity.MetricType {
	switch MetricType(strings.ToUpper(string(mt))) {
	case MetricTypeIP:
		return entity.IP
	case MetricTypeL2:
		return entity.L2
	default:
		return entity.COSINE
	}
}
