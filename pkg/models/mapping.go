package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LocationMapping overrides the parsed name and number for one external code.
type LocationMapping struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ExternalCode   string             `json:"externalCode" bson:"externalCode" validate:"required"`
	InternalName   string             `json:"internalName" bson:"internalName" validate:"required"`
	InternalNumber string             `json:"internalNumber" bson:"internalNumber" validate:"required"`
	Setor          string             `json:"setor" bson:"setor"`
	Type           string             `json:"type" bson:"type"`
	IsActive       bool               `json:"isActive" bson:"isActive"`
	LocationID     string             `json:"locationId" bson:"locationId"`
	QRCodeURL      string             `json:"qrCodeUrl" bson:"qrCodeUrl"`
	ShortCode      string             `json:"shortCode" bson:"shortCode"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}
