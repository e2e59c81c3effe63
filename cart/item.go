package cart

import "github.com/shopspring/decimal"

// 購物車內的單一商品及其數量
type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
}

// 小計 = 單價 x 數量
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// 加入購物車時由商品頁面提供的資料
type Candidate struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Image string
}

// Snapshot 是某一時間點購物車內容的唯讀副本
type Snapshot struct {
	Items   []Item
	Total   decimal.Decimal
	Version uint64
}

// 購物車商品總數量(標頭徽章使用)
func (s Snapshot) Count() int {
	count := 0
	for _, item := range s.Items {
		count += item.Quantity
	}
	return count
}

func (s Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

// 依ID查詢商品
func (s Snapshot) Find(id string) (Item, bool) {
	for _, item := range s.Items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}
