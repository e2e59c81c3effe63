package handlers

import (
	"FoodieHub/models"
	"errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var allowImageExtensions = []string{".jpg", ".jpeg", ".png", ".svg", ".webp"}

func isValidImageExtensions(file *multipart.FileHeader) bool {
	fileExt := strings.ToLower(filepath.Ext(file.Filename))
	for _, allowExt := range allowImageExtensions {
		if fileExt == allowExt {
			return true
		}
	}
	return false
}

func makeUniqueFileName(file *multipart.FileHeader) string {
	return uuid.New().String() + strings.ToLower(filepath.Ext(file.Filename))
}

// 查詢或建立標籤
func findOrCreateCategories(tx *gorm.DB, names []string) ([]models.Category, error) {
	categories := make([]models.Category, 0, len(names))
	for _, name := range names {
		var category models.Category
		if err := tx.Where(models.Category{Name: name}).FirstOrCreate(&category).Error; err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, nil
}

// 商品異動後清除快取，失敗只記錄
func invalidateProducts(c *gin.Context, cache *ProductCache) {
	if err := cache.Invalidate(c.Request.Context()); err != nil {
		logrus.WithError(err).Warn("清除商品快取失敗")
	}
}

// 查詢使用者列表
func GetUserListHandler(c *gin.Context, db *gorm.DB) {
	var userList []struct {
		ID       uint
		Username string
		Role     string
	}
	err := db.
		Model(&models.User{}).
		Select("id", "username", "role").
		Find(&userList).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法獲取使用者列表",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "成功獲取使用者列表",
		"userList": userList,
	})
}

// 上傳商品圖片
func UploadImageHandler(c *gin.Context, uploadsDir string) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定圖片失敗",
			"error":   err.Error(),
		})
		return
	}

	if !isValidImageExtensions(file) {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "圖片檔案格式錯誤",
		})
		return
	}

	if err := os.MkdirAll(uploadsDir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "建立uploads資料夾失敗",
			"error":   err.Error(),
		})
		return
	}

	imageName := makeUniqueFileName(file)
	if err := c.SaveUploadedFile(file, filepath.Join(uploadsDir, imageName)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "儲存圖片失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "成功上傳圖片",
		"imagePath": "/uploads/" + imageName,
	})
}

// 新增餐廳
func CreateRestaurantHandler(c *gin.Context, db *gorm.DB) {
	var restaurantReq struct {
		Name         string          `json:"name" binding:"required"`
		ImageURL     string          `json:"imageURL"`
		Cuisine      string          `json:"cuisine" binding:"required"`
		Rating       decimal.Decimal `json:"rating"`
		DeliveryTime string          `json:"deliveryTime"`
	}
	if err := c.ShouldBindJSON(&restaurantReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	restaurant := models.Restaurant{
		Name:         restaurantReq.Name,
		ImageURL:     restaurantReq.ImageURL,
		Cuisine:      restaurantReq.Cuisine,
		Rating:       restaurantReq.Rating.Round(1),
		DeliveryTime: restaurantReq.DeliveryTime,
	}
	if err := db.Create(&restaurant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "新增餐廳失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "成功新增餐廳",
		"id":      restaurant.ID,
	})
}

// 新增商品
func CreateProductHandler(c *gin.Context, db *gorm.DB, cache *ProductCache) {
	var newProduct struct {
		RestaurantID    uint                   `json:"restaurantID" binding:"required"`
		Name            string                 `json:"name" binding:"required"`
		Price           *decimal.Decimal       `json:"price" binding:"required"`
		ImageURL        string                 `json:"imageURL"`
		Description     string                 `json:"description"`
		Ingredients     []string               `json:"ingredients"`
		NutritionalInfo models.NutritionalInfo `json:"nutritionalInfo"`
		Categories      []string               `json:"categories"`
	}
	if err := c.ShouldBindJSON(&newProduct); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}
	if newProduct.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "商品價格不得小於0",
		})
		return
	}

	product := models.Product{
		RestaurantID:    newProduct.RestaurantID,
		Name:            newProduct.Name,
		Price:           newProduct.Price.Round(2),
		ImageURL:        newProduct.ImageURL,
		Description:     newProduct.Description,
		Ingredients:     newProduct.Ingredients,
		NutritionalInfo: newProduct.NutritionalInfo,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		categories, err := findOrCreateCategories(tx, newProduct.Categories)
		if err != nil {
			return err
		}
		product.Categories = categories
		return tx.Create(&product).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "新增商品失敗",
			"error":   err.Error(),
		})
		return
	}

	invalidateProducts(c, cache)
	c.JSON(http.StatusCreated, gin.H{
		"message": "成功新增商品",
		"product": productSummary(product),
	})
}

// 修改商品，只覆蓋有提供的欄位
func UpdateProductHandler(c *gin.Context, db *gorm.DB, cache *ProductCache) {
	productID := c.Param("productID")

	var productDataReq struct {
		Name            *string                 `json:"name"`
		Price           *decimal.Decimal        `json:"price"`
		ImageURL        *string                 `json:"imageURL"`
		Description     *string                 `json:"description"`
		Ingredients     []string                `json:"ingredients"`
		NutritionalInfo *models.NutritionalInfo `json:"nutritionalInfo"`
		Categories      []string                `json:"categories"`
	}
	if err := c.ShouldBindJSON(&productDataReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}
	if productDataReq.Price != nil && productDataReq.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "商品價格不得小於0",
		})
		return
	}

	var product models.Product
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, "id = ?", productID).Error; err != nil {
			return err
		}

		if productDataReq.Categories != nil {
			categories, err := findOrCreateCategories(tx, productDataReq.Categories)
			if err != nil {
				return err
			}
			if err := tx.Model(&product).Association("Categories").Replace(categories); err != nil {
				return err
			}
		}

		if productDataReq.Name != nil {
			product.Name = *productDataReq.Name
		}
		if productDataReq.Price != nil {
			product.Price = productDataReq.Price.Round(2)
		}
		if productDataReq.ImageURL != nil {
			product.ImageURL = *productDataReq.ImageURL
		}
		if productDataReq.Description != nil {
			product.Description = *productDataReq.Description
		}
		if productDataReq.Ingredients != nil {
			product.Ingredients = productDataReq.Ingredients
		}
		if productDataReq.NutritionalInfo != nil {
			product.NutritionalInfo = *productDataReq.NutritionalInfo
		}

		return tx.Omit("Categories").Save(&product).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "查無此商品",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "修改商品失敗",
			"error":   err.Error(),
		})
		return
	}

	invalidateProducts(c, cache)
	c.JSON(http.StatusOK, gin.H{
		"message": "成功修改商品資料",
	})
}

// 刪除商品
func DeleteProductHandler(c *gin.Context, db *gorm.DB, cache *ProductCache) {
	productID := c.Param("productID")

	err := db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "id = ?", productID).Error; err != nil {
			return err
		}
		if err := tx.Model(&product).Association("Categories").Clear(); err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "查無此商品",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "刪除商品失敗",
			"error":   err.Error(),
		})
		return
	}

	invalidateProducts(c, cache)
	c.JSON(http.StatusOK, gin.H{
		"message": "成功刪除商品",
	})
}

// 刪除商品標籤
func DeleteCategoryHandler(c *gin.Context, db *gorm.DB, cache *ProductCache) {
	categoryID := c.Param("categoryID")

	err := db.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, "id = ?", categoryID).Error; err != nil {
			return err
		}
		if err := tx.Model(&category).Association("Products").Clear(); err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "查無此標籤",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "刪除標籤失敗",
			"error":   err.Error(),
		})
		return
	}

	invalidateProducts(c, cache)
	c.JSON(http.StatusOK, gin.H{
		"message": "成功刪除標籤",
	})
}
