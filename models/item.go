package models

import "time"

type ItemType int16

const (
	ItemTypeCoins      ItemType = 0
	ItemTypeXP         ItemType = 1
	ItemTypeXPBoost    ItemType = 10
	ItemTypeCoinBoost  ItemType = 11
	ItemTypeScoreBoost ItemType = 12
	ItemTypeTimeBoost  ItemType = 13
	ItemTypeCosmetic   ItemType = 99
)

type ItemRarity string

const (
	RarityCommon    ItemRarity = "common"
	RarityRare      ItemRarity = "rare"
	RarityLegendary ItemRarity = "legendary"
)

type Item struct {
	Type     ItemType       `json:"type"`
	Amount   int            `json:"amount"`
	Rarity   ItemRarity     `json:"rarity,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// EffectType maps boost items to the effect they activate. Non-boost
// items return an empty type.
func (i Item) EffectType() EffectType {
	switch i.Type {
	case ItemTypeXPBoost:
		return EffectXPBoost
	case ItemTypeCoinBoost:
		return EffectCoinBoost
	case ItemTypeScoreBoost:
		return EffectScoreBoost
	case ItemTypeTimeBoost:
		return EffectTimeBoost
	}

	return ""
}

type Product struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Item  Item   `json:"item"`
	Price int    `json:"price"`
}

type InventoryItem struct {
	ID         string    `json:"id"`
	PlayerID   string    `json:"player_id"`
	ProductID  string    `json:"product_id"`
	Name       string    `json:"name"`
	Item       Item      `json:"item"`
	Equipped   bool      `json:"equipped"`
	AcquiredAt time.Time `json:"acquired_at"`
}
