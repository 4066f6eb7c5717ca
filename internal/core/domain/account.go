package domain

import "time"

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// Profile is the kind-specific part of an account. Exactly one implementation
// exists per Kind.
type Profile interface {
	Kind() Kind
}

type AdminProfile struct{}

func (AdminProfile) Kind() Kind { return KindAdmin }

type AdvertiserProfile struct {
	CompanyName string `json:"companyName,omitempty"`
}

func (AdvertiserProfile) Kind() Kind { return KindAdvertiser }

// VehicleDetails describes the vehicle a publisher carries ads on.
type VehicleDetails struct {
	VehicleType        string `json:"vehicleType,omitempty"`
	Model              string `json:"model,omitempty"`
	RegistrationNumber string `json:"registrationNumber"`
}

type PublisherProfile struct {
	VehicleDetails VehicleDetails `json:"vehicleDetails"`
}

func (PublisherProfile) Kind() Kind { return KindPublisher }

type BodyShopProfile struct {
	Address string `json:"address,omitempty"`
}

func (BodyShopProfile) Kind() Kind { return KindBodyShop }

// Account is a credential record stored in the collection of its Kind.
type Account struct {
	ID            string    `json:"id"`
	Kind          Kind      `json:"type"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	ContactNumber string    `json:"contactNumber,omitempty"`
	Profile       Profile   `json:"profile,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Identity is the caller identity carried by a verified session token.
type Identity struct {
	SubjectID string `json:"id"`
	Kind      Kind   `json:"type"`
}
