package member

import (
	"context"
	"fmt"

	"github.com/pawfeed/pawfeed-server/cmd/models"
	"gorm.io/gorm"
)

// GormBlocklistGateway implements the community module's
// BlocklistGateway port over the blocks table.
type GormBlocklistGateway struct {
	db *gorm.DB
}

func NewGormBlocklistGateway(db *gorm.DB) *GormBlocklistGateway {
	return &GormBlocklistGateway{db: db}
}

func (g *GormBlocklistGateway) BlockedAuthorIDs(ctx context.Context, actorID uint) ([]uint, error) {
	var ids []uint
	err := g.db.WithContext(ctx).Model(&models.Block{}).
		Where("blocker_id = ?", actorID).
		Pluck("blocked_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("loading blocklist for member %d: %w", actorID, err)
	}
	return ids, nil
}
