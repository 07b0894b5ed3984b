package ports

import (
	"context"

	"github.com/bnema/volmix/internal/domain"
)

type GameCatalog interface {
	Load(ctx context.Context) (domain.GameSet, error)
}
