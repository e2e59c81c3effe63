package handlers

import (
	"FoodieHub/models"
	"errors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"net/http"
	"strconv"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
	allCuisines     = "All"
)

// 解析分頁參數，限制最高查詢數量為50
func parsePage(c *gin.Context) (offset, limit int, err error) {
	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 {
		return 0, 0, errors.New("查詢數量輸入錯誤")
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		return 0, 0, errors.New("offset輸入錯誤")
	}
	return offset, limit, nil
}

func productSummary(product models.Product) gin.H {
	categories := make([]string, 0, len(product.Categories))
	for _, category := range product.Categories {
		categories = append(categories, category.Name)
	}
	return gin.H{
		"id":           strconv.FormatUint(uint64(product.ID), 10),
		"restaurantID": product.RestaurantID,
		"name":         product.Name,
		"price":        product.Price.StringFixed(2),
		"image":        productImage(product),
		"categories":   categories,
	}
}

func productImage(product models.Product) string {
	if product.ImageURL == "" {
		return placeholderImage
	}
	return product.ImageURL
}

// 查詢商品列表
func GetProductListHandler(c *gin.Context, cache *ProductCache) {
	offset, limit, err := parsePage(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": err.Error(),
		})
		return
	}

	products, total, err := cache.List(c.Request.Context(), offset, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法讀取商品列表",
			"error":   err.Error(),
		})
		return
	}

	productsData := make([]gin.H, 0, len(products))
	for _, product := range products {
		productsData = append(productsData, productSummary(product))
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "成功讀取商品列表",
		"products":   productsData,
		"totalCount": total,
	})
}

// 查詢商品詳細資料
func GetProductDataHandler(c *gin.Context, db *gorm.DB) {
	productID := c.Param("productID")

	var product models.Product
	err := db.Preload("Categories").First(&product, "id = ?", productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "查無此商品",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢商品資料失敗",
			"error":   err.Error(),
		})
		return
	}

	detail := productSummary(product)
	detail["description"] = product.Description
	detail["ingredients"] = product.Ingredients
	detail["nutritionalInfo"] = product.NutritionalInfo

	c.JSON(http.StatusOK, gin.H{
		"message": "成功查詢商品資料",
		"product": detail,
	})
}

// 查詢餐廳列表，可依料理類型篩選
func GetRestaurantListHandler(c *gin.Context, db *gorm.DB) {
	query := db.Model(&models.Restaurant{})
	if cuisine := c.Query("cuisine"); cuisine != "" && cuisine != allCuisines {
		query = query.Where("cuisine = ?", cuisine)
	}

	var restaurants []models.Restaurant
	if err := query.Order("rating DESC").Find(&restaurants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法讀取餐廳列表",
			"error":   err.Error(),
		})
		return
	}

	restaurantsData := make([]gin.H, 0, len(restaurants))
	for _, restaurant := range restaurants {
		restaurantsData = append(restaurantsData, gin.H{
			"id":           restaurant.ID,
			"name":         restaurant.Name,
			"image":        restaurant.ImageURL,
			"cuisine":      restaurant.Cuisine,
			"rating":       restaurant.Rating.StringFixed(1),
			"deliveryTime": restaurant.DeliveryTime,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "成功讀取餐廳列表",
		"restaurants": restaurantsData,
	})
}

// 查詢餐廳菜單
func GetRestaurantMenuHandler(c *gin.Context, db *gorm.DB) {
	restaurantID := c.Param("restaurantID")

	var restaurant models.Restaurant
	err := db.
		Preload("Products").
		Preload("Products.Categories").
		First(&restaurant, "id = ?", restaurantID).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "查無此餐廳",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢餐廳菜單失敗",
			"error":   err.Error(),
		})
		return
	}

	productsData := make([]gin.H, 0, len(restaurant.Products))
	for _, product := range restaurant.Products {
		productsData = append(productsData, productSummary(product))
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "成功讀取餐廳菜單",
		"restaurant": restaurant.Name,
		"products":   productsData,
	})
}

// 查詢商品標籤列表
func GetCategoryListHandler(c *gin.Context, db *gorm.DB) {
	var categories []struct {
		ID   uint
		Name string
	}
	err := db.
		Model(&models.Category{}).
		Select("id", "name").
		Find(&categories).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法讀取商品標籤列表",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "成功讀取商品標籤列表",
		"categories": categories,
	})
}
