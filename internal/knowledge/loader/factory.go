package loader

import (
	"context"
	"fmt"
	"io"
	"sort"

	kbtypes "github.com/lk2023060901/doc-qa-backend/internal/knowledge/types"
)

// LoaderFactory Loader 工厂接口
type LoaderFactory interface {
	// CreateLoader 根据文件类型创建 Loader
	CreateLoader(fileType kbtypes.FileType) (Loader, error)

	// SupportedTypes 返回所有支持的文件类型
	SupportedTypes() []kbtypes.FileType
}

// Factory Loader 工厂
type Factory struct {
	loaders map[kbtypes.FileType]Loader
}

// NewFactory 创建注册了全部内置加载器的工厂
func NewFactory() *Factory {
	f := &Factory{loaders: make(map[kbtypes.FileType]Loader)}
	f.Register(NewTextLoader())
	f.Register(NewMarkdownLoader())
	f.Register(NewPDFLoader())
	f.Register(NewDOCXLoader())
	f.Register(NewJSONLoader())
	return f
}

// Register 注册 Loader，同类型后注册的覆盖先注册的
func (f *Factory) Register(l Loader) {
	for _, ft := range l.SupportedTypes() {
		f.loaders[ft] = l
	}
}

// CreateLoader 根据文件类型创建 Loader
func (f *Factory) CreateLoader(fileType kbtypes.FileType) (Loader, error) {
	l, ok := f.loaders[fileType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, fileType)
	}
	return l, nil
}

// SupportedTypes 返回所有支持的文件类型（已排序）
func (f *Factory) SupportedTypes() []kbtypes.FileType {
	out := make([]kbtypes.FileType, 0, len(f.loaders))
	for ft := range f.loaders {
		out = append(out, ft)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Load 选择加载器并读取内容
func (f *Factory) Load(ctx context.Context, fileType kbtypes.FileType, r io.Reader) (*Document, error) {
	l, err := f.CreateLoader(fileType)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, r)
}
