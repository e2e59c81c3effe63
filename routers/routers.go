package routers

import (
	"FoodieHub/config"
	"FoodieHub/handlers"
	"FoodieHub/jwt"
	"FoodieHub/middleware"
	"FoodieHub/session"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"net/http"
)

type Dependencies struct {
	Config   config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	Keys     *jwt.Keys
	Sessions *session.Registry
}

func SetupRouters(deps Dependencies) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Authorization")
		c.Next()
	})
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	db := deps.DB
	cache := handlers.NewProductCache(deps.Redis, db)

	//商品圖片靜態資源路徑
	router.Static("/uploads", deps.Config.Server.UploadsDir)

	router.OPTIONS("/*path", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	api := router.Group("/api/v1")
	api.Use(
		middleware.SessionMiddleware(deps.Sessions, middleware.SessionCookie{
			Name:   deps.Config.Session.CookieName,
			MaxAge: deps.Config.Session.IdleTimeout,
			Secure: deps.Config.Session.SecureCookie,
		}),
		middleware.AuthMiddleware(db, deps.Keys),
	)
	{
		//餐廳及商品
		api.GET("/restaurants", func(c *gin.Context) {
			handlers.GetRestaurantListHandler(c, db)
		})
		api.GET("/restaurants/:restaurantID/products", func(c *gin.Context) {
			handlers.GetRestaurantMenuHandler(c, db)
		})
		api.GET("/products", func(c *gin.Context) {
			handlers.GetProductListHandler(c, cache)
		})
		api.GET("/products/:productID", func(c *gin.Context) {
			handlers.GetProductDataHandler(c, db)
		})
		api.GET("/categories", func(c *gin.Context) {
			handlers.GetCategoryListHandler(c, db)
		})

		//註冊及登入
		api.POST("/register", func(c *gin.Context) {
			handlers.RegisterHandler(c, db)
		})
		api.POST("/login", func(c *gin.Context) {
			handlers.LoginHandler(c, db, deps.Keys, deps.Config.JWT.TTL)
		})

		//購物車，不須登入
		registerCartRoutes(api)

		//結帳
		api.GET("/checkout", handlers.GetCheckoutHandler)
		api.POST("/checkout", handlers.SubmitCheckoutHandler)

		////需要登入
		loginRequired := api.Group("/user")
		loginRequired.Use(middleware.CheckLoginMiddleware())
		{
			loginRequired.GET("/profile", func(c *gin.Context) {
				handlers.GetUserProfileHandler(c, db)
			})
			loginRequired.PATCH("/profile/edit", func(c *gin.Context) {
				handlers.UpdateUserProfileHandler(c, db)
			})
			//付款並送出訂單，成功後清空購物車
			loginRequired.POST("/payment", func(c *gin.Context) {
				handlers.PaymentHandler(c, db)
			})
			loginRequired.GET("/orders", func(c *gin.Context) {
				handlers.GetOrderListHandler(c, db)
			})
			loginRequired.GET("/orders/:orderID", func(c *gin.Context) {
				handlers.GetOrderDataHandler(c, db)
			})
			loginRequired.POST("/logout", func(c *gin.Context) {
				handlers.LogOutHandler(c, db, deps.Sessions)
			})
		}

		////需要admin身分
		adminRequired := api.Group("/admin")
		adminRequired.Use(middleware.CheckLoginMiddleware(), middleware.CheckAdminPermissionMiddleware())
		{
			adminRequired.GET("/users", func(c *gin.Context) {
				handlers.GetUserListHandler(c, db)
			})
			adminRequired.POST("/image", func(c *gin.Context) {
				handlers.UploadImageHandler(c, deps.Config.Server.UploadsDir)
			})
			adminRequired.POST("/restaurants", func(c *gin.Context) {
				handlers.CreateRestaurantHandler(c, db)
			})
			adminRequired.POST("/products", func(c *gin.Context) {
				handlers.CreateProductHandler(c, db, cache)
			})
			adminRequired.PATCH("/products/:productID", func(c *gin.Context) {
				handlers.UpdateProductHandler(c, db, cache)
			})
			adminRequired.DELETE("/products/:productID", func(c *gin.Context) {
				handlers.DeleteProductHandler(c, db, cache)
			})
			adminRequired.DELETE("/categories/:categoryID", func(c *gin.Context) {
				handlers.DeleteCategoryHandler(c, db, cache)
			})
		}
	}

	return router, nil
}

// 購物車路由只依賴工作階段
func registerCartRoutes(group *gin.RouterGroup) {
	carts := group.Group("/cart")
	carts.GET("", handlers.GetCartHandler)
	carts.GET("/events", handlers.CartEventsHandler)
	carts.POST("/add", handlers.AddToCartHandler)
	carts.POST("/update", handlers.UpdateCartItemQuantityHandler)
	carts.DELETE("/:itemID", handlers.DeleteCartItemHandler)
	carts.DELETE("", handlers.ClearCartHandler)
}
