package storage

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/peterbourgon/diskv/v3"
)

// DiskvGateway keeps one document per workspace in a diskv store.
type DiskvGateway struct {
	d   *diskv.Diskv
	key string
}

func NewDiskvGateway(basePath, workspace string) *DiskvGateway {
	if workspace == "" {
		workspace = "default"
	}
	return &DiskvGateway{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			TempDir:      filepath.Join(basePath, ".tmp"),
			CacheSizeMax: 1024 * 1024, // 1MB
		}),
		key: workspace,
	}
}

func (g *DiskvGateway) String() string {
	return "diskv:" + filepath.Join(g.d.BasePath, g.key)
}

func (g *DiskvGateway) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := g.d.Read(g.key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}
	return data, err
}

func (g *DiskvGateway) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return g.d.Write(g.key, data)
}
