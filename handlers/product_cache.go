package handlers

import (
	"FoodieHub/models"
	"context"
	"encoding/json"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"time"
)

const productsKey = "products"

// 商品列表快取，Redis以商品ID為分數的有序集合保存商品JSON。
// Redis連續失敗時斷路器開啟，改由MySQL直接查詢。
type ProductCache struct {
	rdb *redis.Client
	db  *gorm.DB
	cb  *gobreaker.CircuitBreaker
	sf  singleflight.Group
}

func NewProductCache(rdb *redis.Client, db *gorm.DB) *ProductCache {
	st := gobreaker.Settings{
		Name:        "redis-products",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logrus.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	}

	return &ProductCache{
		rdb: rdb,
		db:  db,
		cb:  gobreaker.NewCircuitBreaker(st),
	}
}

// 分頁查詢商品列表，回傳商品及總數
func (p *ProductCache) List(ctx context.Context, offset, limit int) ([]models.Product, int64, error) {
	result, err := p.cb.Execute(func() (interface{}, error) {
		return p.listFromRedis(ctx, offset, limit)
	})
	if err == nil {
		page := result.(productPage)
		return page.products, page.total, nil
	}

	logrus.WithError(err).Warn("無法從Redis讀取商品列表，改從資料庫讀取")
	return p.listFromDB(offset, limit)
}

type productPage struct {
	products []models.Product
	total    int64
}

func (p *ProductCache) listFromRedis(ctx context.Context, offset, limit int) (productPage, error) {
	total, err := p.rdb.ZCard(ctx, productsKey).Result()
	if err != nil {
		return productPage{}, errors.Wrap(err, "zcard products")
	}

	//快取為空時從資料庫載入，同時間只載入一次
	if total == 0 {
		v, err, _ := p.sf.Do(productsKey, func() (interface{}, error) {
			return p.refresh(ctx)
		})
		if err != nil {
			return productPage{}, err
		}
		total = v.(int64)
	}

	members, err := p.rdb.ZRange(ctx, productsKey, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return productPage{}, errors.Wrap(err, "zrange products")
	}

	products := make([]models.Product, 0, len(members))
	for _, member := range members {
		var product models.Product
		if err := json.Unmarshal([]byte(member), &product); err != nil {
			logrus.WithError(err).Warn("無法反序列化商品資料")
			continue
		}
		products = append(products, product)
	}

	return productPage{products: products, total: total}, nil
}

func (p *ProductCache) listFromDB(offset, limit int) ([]models.Product, int64, error) {
	var total int64
	if err := p.db.Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count products")
	}

	var products []models.Product
	err := p.db.
		Preload("Categories").
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&products).
		Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "query products")
	}
	return products, total, nil
}

// 從資料庫重新載入全部商品至Redis
func (p *ProductCache) refresh(ctx context.Context) (int64, error) {
	var products []models.Product
	if err := p.db.Preload("Categories").Find(&products).Error; err != nil {
		return 0, errors.Wrap(err, "load products")
	}

	members := make([]redis.Z, 0, len(products))
	for _, product := range products {
		productJSON, err := json.Marshal(product)
		if err != nil {
			logrus.WithError(err).WithField("productID", product.ID).Warn("無法序列化商品資料")
			continue
		}
		members = append(members, redis.Z{
			Score:  float64(product.ID),
			Member: productJSON,
		})
	}

	pipe := p.rdb.TxPipeline()
	pipe.Del(ctx, productsKey)
	if len(members) > 0 {
		pipe.ZAdd(ctx, productsKey, members...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, errors.Wrap(err, "write products cache")
	}

	return int64(len(members)), nil
}

// 商品異動後清除快取，下次查詢時重新載入
func (p *ProductCache) Invalidate(ctx context.Context) error {
	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.rdb.Del(ctx, productsKey).Err()
	})
	if err != nil {
		return errors.Wrap(err, "invalidate products cache")
	}
	return nil
}
