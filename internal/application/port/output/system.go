package output

import (
	"context"

	"desktop-agent/internal/domain/entity"
)

type SystemPort interface {
	StartProgram(ctx context.Context, name string) error
	CloseProgram(ctx context.Context, name string) error
	MinimizeWindow(ctx context.Context, name string) error
	MaximizeWindow(ctx context.Context, name string) error
	Power(ctx context.Context, action entity.CommandAction) error
}

type FilePort interface {
	Open(ctx context.Context, path string) error
	Create(ctx context.Context, path string) error
	Delete(ctx context.Context, path string) error
	Copy(ctx context.Context, src, dst string) error
	Move(ctx context.Context, src, dst string) error
}

type WebPort interface {
	OpenURL(ctx context.Context, url string) error
}
