package jwt

import (
	"FoodieHub/models"
	"crypto/rsa"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"os"
	"time"
)

var ErrTokenRevoked = errors.New("token revoked")

// 簽發與驗證用的RSA金鑰
type Keys struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
}

// 使用者身分
type Claims struct {
	UserID uint
	Role   string
}

func NewKeys(privateKey *rsa.PrivateKey) *Keys {
	return &Keys{
		privateKey: privateKey,
		publicKey:  &privateKey.PublicKey,
	}
}

// 從PEM檔案讀取金鑰，啟動時讀取一次
func LoadKeys(privateKeyPath, publicKeyPath string) (*Keys, error) {
	keyBytes, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, errors.Wrap(err, "read private key")
	}
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(keyBytes)
	if err != nil {
		return nil, errors.Wrap(err, "parse private key")
	}

	keyBytes, err = os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, errors.Wrap(err, "read public key")
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(keyBytes)
	if err != nil {
		return nil, errors.Wrap(err, "parse public key")
	}

	return &Keys{privateKey: privateKey, publicKey: publicKey}, nil
}

// 生成JWT Token
func (k *Keys) GenerateToken(userID uint, role string, expTime time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"userID": userID,
		"role":   role,
		"exp":    expTime.Unix(),
	})

	tokenString, err := token.SignedString(k.privateKey)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return tokenString, nil
}

// 驗證簽章與期限並取出使用者身分
func (k *Keys) ParseToken(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return k.publicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil {
		return Claims{}, err
	}

	if !token.Valid {
		return Claims{}, jwt.ErrTokenSignatureInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, jwt.ErrTokenInvalidClaims
	}
	userID, ok := claims["userID"].(float64)
	if !ok {
		return Claims{}, jwt.ErrTokenInvalidClaims
	}
	role, _ := claims["role"].(string)

	return Claims{UserID: uint(userID), Role: role}, nil
}

// 驗證JWT Token並確認資料庫內尚未登出
func (k *Keys) VerifyToken(tokenString string, db *gorm.DB) (Claims, error) {
	claims, err := k.ParseToken(tokenString)
	if err != nil {
		return Claims{}, err
	}

	var loginToken models.LoginToken
	err = db.Where("token = ?", tokenString).First(&loginToken).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Claims{}, ErrTokenRevoked
		}
		return Claims{}, errors.Wrap(err, "query login token")
	}

	return claims, nil
}
