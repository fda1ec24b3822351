package utils

import (
	"time"

	"go-erp/internal/workflow"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var jwtSecret = []byte("secret")

// SetSecret allows injecting the secret from config
func SetSecret(secret string) {
	jwtSecret = []byte(secret)
}

const UserClaimsKey = "user_claims"

type UserClaims struct {
	UserID       string        `json:"user_id"`
	Role         workflow.Role `json:"role"`
	DepartmentID string        `json:"department_id,omitempty"`
	jwt.RegisteredClaims
}

// Actor converts the validated claims into the workflow principal.
func (c *UserClaims) Actor() (workflow.Actor, error) {
	id, err := primitive.ObjectIDFromHex(c.UserID)
	if err != nil {
		return workflow.Actor{}, err
	}
	return workflow.Actor{ID: id, Role: c.Role}, nil
}

func GenerateToken(userID primitive.ObjectID, role workflow.Role, departmentID string) (string, error) {
	claims := UserClaims{
		UserID:       userID.Hex(),
		Role:         role,
		DepartmentID: departmentID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrTokenSignatureInvalid
}
