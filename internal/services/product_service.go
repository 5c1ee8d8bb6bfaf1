package services

import (
	"context"
	"errors"

	"github.com/ahmetkoprulu/rtqb/common/data"
	"github.com/ahmetkoprulu/rtqb/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrProductNotFound       = errors.New("product_not_found")
	ErrInventoryItemNotFound = errors.New("inventory_item_not_found")
	ErrItemNotActivatable    = errors.New("item_not_activatable")
)

// ProductService is the store and inventory surface: purchasing
// products, handing out reward items, and activating boost items into
// the effect ledger.
type ProductService struct {
	db            *data.PgDbContext
	playerService *PlayerService
	effectService *EffectService
}

func NewProductService(db *data.PgDbContext, playerService *PlayerService, effectService *EffectService) *ProductService {
	return &ProductService{db: db, playerService: playerService, effectService: effectService}
}

func (s *ProductService) GetProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, item, price FROM products ORDER BY price`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Item, &p.Price); err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

// PurchaseProduct debits the price (flat, never multiplied) and places
// the item into the player's inventory. A balance that cannot cover
// the price rejects the purchase without mutation.
func (s *ProductService) PurchaseProduct(ctx context.Context, playerID, productID string) (*models.InventoryItem, error) {
	var product models.Product
	err := s.db.QueryRow(ctx, `SELECT id, name, item, price FROM products WHERE id = $1`, productID).
		Scan(&product.ID, &product.Name, &product.Item, &product.Price)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	entry := &models.InventoryItem{
		ID:        uuid.New().String(),
		PlayerID:  playerID,
		ProductID: product.ID,
		Name:      product.Name,
		Item:      product.Item,
	}

	// Debit and inventory insert commit or roll back together; a
	// failed insert must return the coins.
	err = s.db.WithTransaction(ctx, func(tx data.QueryRunner) error {
		if err := s.playerService.DebitCoinsTx(ctx, tx, playerID, product.Price); err != nil {
			return err
		}

		query := `
			INSERT INTO player_inventory (id, player_id, product_id, name, item, equipped, acquired_at)
			VALUES ($1, $2, $3, $4, $5, false, NOW())
		`

		_, err := tx.Exec(ctx, query, entry.ID, entry.PlayerID, entry.ProductID, entry.Name, entry.Item)
		return err
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// GiveRewardToPlayer applies a bundle of reward items: currency items
// credit directly, everything else lands in the inventory.
func (s *ProductService) GiveRewardToPlayer(ctx context.Context, items []models.Item, playerID string) error {
	for _, item := range items {
		switch item.Type {
		case models.ItemTypeCoins:
			if _, err := s.playerService.GrantCoins(ctx, playerID, item.Amount, CoinSourceEarn); err != nil {
				return err
			}
		case models.ItemTypeXP:
			if _, _, err := s.playerService.GrantXP(ctx, playerID, item.Amount, "reward"); err != nil {
				return err
			}
		default:
			query := `
				INSERT INTO player_inventory (id, player_id, product_id, name, item, equipped, acquired_at)
				VALUES ($1, $2, '', $3, $4, false, NOW())
			`

			if _, err := s.db.Exec(ctx, query, uuid.New().String(), playerID, "reward item", item); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *ProductService) GetInventory(ctx context.Context, playerID string) ([]models.InventoryItem, error) {
	query := `
		SELECT id, player_id, product_id, name, item, equipped, acquired_at
		FROM player_inventory
		WHERE player_id = $1
		ORDER BY acquired_at DESC
	`

	rows, err := s.db.Query(ctx, query, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inventory []models.InventoryItem
	for rows.Next() {
		var entry models.InventoryItem
		err := rows.Scan(&entry.ID, &entry.PlayerID, &entry.ProductID, &entry.Name, &entry.Item, &entry.Equipped, &entry.AcquiredAt)
		if err != nil {
			return nil, err
		}
		inventory = append(inventory, entry)
	}

	return inventory, rows.Err()
}

// ActivateItem consumes a boost item from the inventory and activates
// its effect on the player's ledger. The effect and the new multipliers
// are persisted so they survive a restart.
func (s *ProductService) ActivateItem(ctx context.Context, playerID, inventoryID string) (*models.Effect, error) {
	var entry models.InventoryItem
	query := `
		SELECT id, player_id, product_id, name, item
		FROM player_inventory
		WHERE id = $1 AND player_id = $2
	`

	err := s.db.QueryRow(ctx, query, inventoryID, playerID).
		Scan(&entry.ID, &entry.PlayerID, &entry.ProductID, &entry.Name, &entry.Item)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrInventoryItemNotFound
		}
		return nil, err
	}

	effectType := entry.Item.EffectType()
	if effectType == "" {
		return nil, ErrItemNotActivatable
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM player_inventory WHERE id = $1 AND player_id = $2`, inventoryID, playerID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrInventoryItemNotFound
	}

	return s.effectService.ActivateEffect(ctx, playerID, &models.Effect{
		Type: effectType,
		SourceItem: models.EffectSource{
			ItemID: entry.ID,
			Name:   entry.Name,
		},
	})
}
