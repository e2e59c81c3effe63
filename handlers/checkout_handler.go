package handlers

import (
	"FoodieHub/cart"
	"FoodieHub/models"
	"FoodieHub/session"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"net/http"
)

// 結帳頁面的訂單摘要，不修改購物車
func GetCheckoutHandler(c *gin.Context) {
	current, ok := currentSession(c)
	if !ok {
		return
	}

	response := gin.H{
		"message": "成功查詢訂單摘要",
		"cart":    cartView(current.Cart.Snapshot()),
	}
	if delivery, ok := current.Delivery(); ok {
		response["delivery"] = delivery
	}
	c.JSON(http.StatusOK, response)
}

// 填寫配送資料
func SubmitCheckoutHandler(c *gin.Context) {
	var deliveryReq struct {
		Name    string `json:"name" binding:"required"`
		Address string `json:"address" binding:"required"`
		Phone   string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&deliveryReq); err != nil {
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

	snapshot := current.Cart.Snapshot()
	if snapshot.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "購物車是空的",
		})
		return
	}

	current.SetDelivery(session.Delivery{
		Name:    deliveryReq.Name,
		Address: deliveryReq.Address,
		Phone:   deliveryReq.Phone,
	})
	c.JSON(http.StatusOK, gin.H{
		"message": "成功填寫配送資料，請繼續付款",
		"cart":    cartView(snapshot),
	})
}

// 由購物車快照建立訂單
func buildOrder(userID uint, delivery session.Delivery, snapshot cart.Snapshot) models.Order {
	orderItems := make([]models.OrderItem, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		orderItems = append(orderItems, models.OrderItem{
			ProductID: item.ID,
			Name:      item.Name,
			Price:     item.Price,
			ImageURL:  item.Image,
			Quantity:  item.Quantity,
		})
	}

	return models.Order{
		UserID:     userID,
		OrderItems: orderItems,
		Total:      snapshot.Total,
		Name:       delivery.Name,
		Address:    delivery.Address,
		Phone:      delivery.Phone,
		Status:     models.OrderStatusPending,
	}
}

// 付款並送出訂單，成功後移除已下單的商品
func PaymentHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	//卡片資料只檢查是否填寫，不實際扣款
	var paymentReq struct {
		CardNumber string `json:"cardNumber" binding:"required"`
		Expiry     string `json:"expiry" binding:"required"`
		CVV        string `json:"cvv" binding:"required"`
	}
	if err := c.ShouldBindJSON(&paymentReq); err != nil {
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

	if !current.BeginOrder() {
		c.JSON(http.StatusConflict, gin.H{
			"message": "訂單處理中",
		})
		return
	}
	defer current.EndOrder()

	delivery, ok := current.Delivery()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "尚未填寫配送資料",
		})
		return
	}

	snapshot := current.Cart.Snapshot()
	if snapshot.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "購物車是空的",
		})
		return
	}

	newOrder := buildOrder(userID.(uint), delivery, snapshot)
	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&newOrder).Error
	})
	if err != nil {
		logrus.WithError(err).WithField("userID", userID).Error("提交訂單失敗")
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "提交訂單失敗",
			"error":   err.Error(),
		})
		return
	}

	current.ClearDelivery()
	if current.Cart.ClearOrdered(snapshot) {
		logrus.WithFields(logrus.Fields{
			"orderID": newOrder.ID,
			"userID":  userID,
			"total":   newOrder.Total.StringFixed(2),
		}).Info("訂單已送出")

		c.JSON(http.StatusOK, gin.H{
			"message": "訂單已送出，感謝您的訂購",
			"orderID": newOrder.ID,
			"paid":    newOrder.Total.StringFixed(2),
		})
		return
	}

	//付款期間購物車有變動，保留未下單的商品
	remaining := current.Cart.Snapshot()
	logrus.WithFields(logrus.Fields{
		"orderID":   newOrder.ID,
		"userID":    userID,
		"total":     newOrder.Total.StringFixed(2),
		"remaining": remaining.Count(),
	}).Warn("訂單已送出，購物車在付款期間有變動")

	c.JSON(http.StatusOK, gin.H{
		"message": "訂單已送出，付款期間加入的商品仍保留在購物車",
		"orderID": newOrder.ID,
		"paid":    newOrder.Total.StringFixed(2),
		"cart":    cartView(remaining),
	})
}
