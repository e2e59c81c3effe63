package handlers

import (
	"FoodieHub/models"
	"errors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"net/http"
)

// 查詢訂單列表，新訂單在前
func GetOrderListHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	var orders []models.Order
	err := db.
		Where("user_id = ?", userID).
		Preload("OrderItems").
		Order("created_at DESC").
		Find(&orders).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢訂單列表失敗",
			"error":   err.Error(),
		})
		return
	}

	orderList := make([]gin.H, 0, len(orders))
	for _, order := range orders {
		itemCount := 0
		for _, orderItem := range order.OrderItems {
			itemCount += orderItem.Quantity
		}
		orderList = append(orderList, gin.H{
			"OrderID":   order.ID,
			"OrderTime": order.CreatedAt,
			"ItemCount": itemCount,
			"Total":     order.Total.StringFixed(2),
			"Status":    order.Status,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "成功查詢訂單列表",
		"orderList": orderList,
	})
}

// 查詢訂單詳細資訊
func GetOrderDataHandler(c *gin.Context, db *gorm.DB) {
	orderID := c.Param("orderID")
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	var order models.Order
	err := db.
		Where("id = ? AND user_id = ?", orderID, userID).
		Preload("OrderItems").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "查無此訂單",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢訂單失敗",
			"error":   err.Error(),
		})
		return
	}

	orderItemsData := make([]gin.H, 0, len(order.OrderItems))
	for _, orderItem := range order.OrderItems {
		orderItemsData = append(orderItemsData, gin.H{
			"ProductID": orderItem.ProductID,
			"Name":      orderItem.Name,
			"Price":     orderItem.Price.StringFixed(2),
			"ImageURL":  orderItem.ImageURL,
			"Quantity":  orderItem.Quantity,
			"LineTotal": orderItem.LineTotal().StringFixed(2),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "成功查詢訂單",
		"OrderID":        order.ID,
		"Name":           order.Name,
		"Address":        order.Address,
		"Phone":          order.Phone,
		"Total":          order.Total.StringFixed(2),
		"OrderTime":      order.CreatedAt,
		"Status":         order.Status,
		"orderItemsData": orderItemsData,
	})
}
