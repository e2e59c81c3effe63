package handlers

import (
	"FoodieHub/cart"
	"FoodieHub/middleware"
	"FoodieHub/session"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"io"
	"net/http"
)

const placeholderImage = "/placeholder.svg"

// 取得目前工作階段，失敗時直接回應錯誤
func currentSession(c *gin.Context) (*session.Session, bool) {
	current, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "無法取得購物車",
		})
		return nil, false
	}
	return current, true
}

// 購物車回應格式，金額固定兩位小數
func cartView(snapshot cart.Snapshot) gin.H {
	items := make([]gin.H, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		items = append(items, gin.H{
			"id":        item.ID,
			"name":      item.Name,
			"price":     item.Price.StringFixed(2),
			"image":     item.Image,
			"quantity":  item.Quantity,
			"lineTotal": item.LineTotal().StringFixed(2),
		})
	}
	return gin.H{
		"items":   items,
		"total":   snapshot.Total.StringFixed(2),
		"count":   snapshot.Count(),
		"version": snapshot.Version,
	}
}

// 查詢購物車
func GetCartHandler(c *gin.Context) {
	current, ok := currentSession(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "成功查詢購物車",
		"cart":    cartView(current.Cart.Snapshot()),
	})
}

// 新增商品至購物車
func AddToCartHandler(c *gin.Context) {
	var cartItemReq struct {
		ID    string           `json:"id" binding:"required"`
		Name  string           `json:"name" binding:"required"`
		Price *decimal.Decimal `json:"price" binding:"required"`
		Image string           `json:"image"`
	}
	if err := c.ShouldBindJSON(&cartItemReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}
	if cartItemReq.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "商品價格不得小於0",
		})
		return
	}
	if cartItemReq.Image == "" {
		cartItemReq.Image = placeholderImage
	}

	current, ok := currentSession(c)
	if !ok {
		return
	}

	current.Cart.AddItem(cart.Candidate{
		ID:    cartItemReq.ID,
		Name:  cartItemReq.Name,
		Price: cartItemReq.Price.Round(2),
		Image: cartItemReq.Image,
	})

	snapshot := current.Cart.Snapshot()
	item, _ := snapshot.Find(cartItemReq.ID)
	c.JSON(http.StatusOK, gin.H{
		"message":  "成功新增物品至購物車",
		"id":       item.ID,
		"quantity": item.Quantity,
		"cart":     cartView(snapshot),
	})
}

// 更新購物車商品數量，數量小於等於0時刪除商品
func UpdateCartItemQuantityHandler(c *gin.Context) {
	var cartItemReq struct {
		ID       string `json:"id" binding:"required"`
		Quantity *int   `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&cartItemReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	current, ok := currentSession(c)
	if !ok {
		return
	}

	current.Cart.UpdateQuantity(cartItemReq.ID, *cartItemReq.Quantity)
	c.JSON(http.StatusOK, gin.H{
		"message": "成功更新購物車物品數量",
		"cart":    cartView(current.Cart.Snapshot()),
	})
}

// 刪除購物車商品，商品不存在也視為成功
func DeleteCartItemHandler(c *gin.Context) {
	itemID := c.Param("itemID")

	current, ok := currentSession(c)
	if !ok {
		return
	}

	current.Cart.RemoveItem(itemID)
	c.JSON(http.StatusOK, gin.H{
		"message": "成功刪除購物車物品",
		"id":      itemID,
		"cart":    cartView(current.Cart.Snapshot()),
	})
}

// 清空購物車
func ClearCartHandler(c *gin.Context) {
	current, ok := currentSession(c)
	if !ok {
		return
	}

	current.Cart.Clear()
	c.JSON(http.StatusOK, gin.H{
		"message": "成功清空購物車",
		"cart":    cartView(current.Cart.Snapshot()),
	})
}

// 訂閱購物車變動，通道只保留版本最新的快照，讀取較慢時會略過舊版本
func subscribeLatest(store *cart.Store) (<-chan cart.Snapshot, func()) {
	updates := make(chan cart.Snapshot, 1)
	cancel := store.Subscribe(func(snapshot cart.Snapshot) {
		for {
			select {
			case updates <- snapshot:
				return
			case pending := <-updates:
				if pending.Version > snapshot.Version {
					snapshot = pending
				}
			}
		}
	})
	return updates, cancel
}

// 以Server-Sent Events推送購物車變動，連線中斷時取消訂閱
func CartEventsHandler(c *gin.Context) {
	current, ok := currentSession(c)
	if !ok {
		return
	}

	updates, cancel := subscribeLatest(current.Cart)
	defer cancel()

	initial := current.Cart.Snapshot()
	lastVersion := initial.Version
	c.SSEvent("cart", cartView(initial))
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case snapshot := <-updates:
			if snapshot.Version <= lastVersion {
				return true
			}
			lastVersion = snapshot.Version
			c.SSEvent("cart", cartView(snapshot))
			return true
		}
	})
}
