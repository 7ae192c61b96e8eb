package utils

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a 24-char hex ObjectID. Every store uses the same id format,
// so a client never needs to know which driver is behind the API.
func NewID() string { return primitive.NewObjectID().Hex() }

// IsValidID reports whether s is a well-formed ObjectID hex string.
func IsValidID(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}
